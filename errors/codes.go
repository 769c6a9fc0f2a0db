package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Topology/configuration errors, raised synchronously from Pipeline.Run
// before any stage starts.
const (
	// ErrCodeInvalidTopology indicates the stage sequence is not Source, Transform*, Sink.
	ErrCodeInvalidTopology ErrorCode = "INVALID_TOPOLOGY"
	// ErrCodeTypeMismatch indicates adjacent stages disagree on the element type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
	// ErrCodeAlreadyRunning indicates Run was called on a pipeline that already ran.
	ErrCodeAlreadyRunning ErrorCode = "ALREADY_RUNNING"
)

// Stage execution errors, fatal to the failing stage only.
const (
	// ErrCodeStageFailed indicates a component operation returned an error.
	ErrCodeStageFailed ErrorCode = "STAGE_FAILED"
	// ErrCodeStagePanic indicates a component operation panicked.
	ErrCodeStagePanic ErrorCode = "STAGE_PANIC"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Availability errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeServiceUnavailable indicates the service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeInvalidTopology:    false,
	ErrCodeTypeMismatch:       false,
	ErrCodeAlreadyRunning:     false,
	ErrCodeStageFailed:        false,
	ErrCodeStagePanic:         false,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
