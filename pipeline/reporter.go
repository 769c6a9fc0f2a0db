package pipeline

import (
	"context"
	"time"

	"github.com/kbukum/stagekit/logger"
)

// DefaultReportInterval is the reporter period used when none is configured.
const DefaultReportInterval = time.Second

// Reporter periodically logs a pipeline's topology line and connector
// depths. A stalled counter in its output is the passive sign of a dead
// stage.
type Reporter struct {
	pipeline *Pipeline
	interval time.Duration
	log      *logger.Logger
}

// NewReporter creates a reporter for p. A non-positive interval selects
// DefaultReportInterval; a nil log selects the "reporter" logger.
func NewReporter(p *Pipeline, interval time.Duration, log *logger.Logger) *Reporter {
	if interval <= 0 {
		interval = DefaultReportInterval
	}
	if log == nil {
		log = logger.Get("reporter")
	}
	return &Reporter{
		pipeline: p,
		interval: interval,
		log:      log,
	}
}

// Run reports every interval until ctx ends or every stage has exited, in
// which case a final report is written.
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.pipeline.Done():
			r.Report()
			return
		case <-ticker.C:
			r.Report()
		}
	}
}

// Report writes one status line.
func (r *Reporter) Report() {
	r.log.Info("Pipeline status", logger.Fields(
		logger.FieldPipeline, r.pipeline.Name(),
		logger.FieldTopology, r.pipeline.String(),
		"endpoints", r.pipeline.EndpointSizes(),
	))
}
