// Package errors provides the structured error type shared by stagekit
// packages. Every AppError carries a machine-readable code, so callers can
// tell a rejected topology apart from a failed stage without string matching.
//
//	if err := p.Run(ctx); err != nil {
//	    if errors.HasCode(err, errors.ErrCodeAlreadyRunning) {
//	        // build a fresh pipeline
//	    }
//	}
package errors
