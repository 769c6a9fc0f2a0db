package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/kbukum/stagekit/component"
	"github.com/kbukum/stagekit/pipeline"
)

const instrumentationName = "github.com/kbukum/stagekit/pipeline"

var (
	_ component.Component   = (*PipelineComponent)(nil)
	_ component.Describable = (*PipelineComponent)(nil)
)

// PipelineComponent adapts a pipeline to the component lifecycle: Start
// runs it and Stop stops it and waits for its stages.
type PipelineComponent struct {
	pipeline *pipeline.Pipeline
}

// NewPipelineComponent wraps p.
func NewPipelineComponent(p *pipeline.Pipeline) *PipelineComponent {
	return &PipelineComponent{pipeline: p}
}

func (pc *PipelineComponent) Name() string { return "pipeline" }

// Start validates and runs the pipeline. ctx bounds the stages' lifetime.
func (pc *PipelineComponent) Start(ctx context.Context) error {
	return pc.pipeline.Run(ctx)
}

// Stop stops every stage and waits for the stage goroutines until ctx
// ends. Stage failures are not stop errors; they are reported by Health and
// by App.Run.
func (pc *PipelineComponent) Stop(ctx context.Context) error {
	var errs []error
	if err := pc.pipeline.Stop(); err != nil {
		errs = append(errs, err)
	}
	if err := pc.pipeline.Wait(ctx); err != nil && ctx.Err() != nil {
		errs = append(errs, fmt.Errorf("waiting for stages: %w", ctx.Err()))
	}
	return stderrors.Join(errs...)
}

// Health is healthy while every stage runs, degraded once some stage has
// failed and unhealthy when all have failed or the pipeline is not running.
func (pc *PipelineComponent) Health(_ context.Context) component.Health {
	h := component.Health{Name: pc.Name()}
	if !pc.pipeline.Running() {
		h.Status = component.StatusUnhealthy
		h.Message = "pipeline not running"
		return h
	}

	var failed []string
	stopped := 0
	stages := pc.pipeline.Stages()
	for _, s := range stages {
		switch s.State {
		case pipeline.StateFailed.String():
			failed = append(failed, fmt.Sprintf("%d:%s", s.Index, s.Tag))
		case pipeline.StateStopped.String():
			stopped++
		}
	}

	switch {
	case len(failed) == len(stages):
		h.Status = component.StatusUnhealthy
		h.Message = "all stages failed"
	case len(failed) > 0:
		h.Status = component.StatusDegraded
		h.Message = "failed stages: " + strings.Join(failed, ", ")
	case stopped == len(stages):
		h.Status = component.StatusUnhealthy
		h.Message = "pipeline stopped"
	default:
		h.Status = component.StatusHealthy
	}
	return h
}

func (pc *PipelineComponent) Describe() component.Description {
	return component.Description{
		Name:    "Pipeline " + pc.pipeline.Name(),
		Type:    "pipeline",
		Details: pc.pipeline.String(),
	}
}
