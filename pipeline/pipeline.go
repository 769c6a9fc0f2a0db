package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/stagekit/errors"
	"github.com/kbukum/stagekit/logger"
	"github.com/kbukum/stagekit/observability"
)

// Pipeline is an ordered sequence of stages joined by connectors. Stages
// are added before Run; a pipeline runs at most once.
type Pipeline struct {
	id       string
	name     string
	capacity int
	log      *logger.Logger
	meter    metric.Meter
	tracer   trace.Tracer

	stages []*Stage
	run    atomic.Pointer[runState]
	wg     sync.WaitGroup
	done   chan struct{}
}

// runState exists once Run has succeeded; its presence is the running flag.
type runState struct {
	failures chan *StageError
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithName sets the name used in logs, metrics and spans.
func WithName(name string) Option {
	return func(p *Pipeline) { p.name = name }
}

// WithCapacity sets the capacity of every connector the pipeline allocates.
func WithCapacity(n int) Option {
	return func(p *Pipeline) { p.capacity = n }
}

// WithLogger sets the logger for lifecycle messages.
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithMeter enables stage and connector metrics on meter.
func WithMeter(m metric.Meter) Option {
	return func(p *Pipeline) { p.meter = m }
}

// WithTracer sets the tracer for Run and Stop spans.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// New creates an empty pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		id:       uuid.NewString(),
		name:     "pipeline",
		capacity: DefaultCapacity,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.capacity <= 0 {
		p.capacity = DefaultCapacity
	}
	if p.log == nil {
		p.log = logger.Get("pipeline")
	}
	if p.tracer == nil {
		p.tracer = observability.Tracer("github.com/kbukum/stagekit/pipeline")
	}
	p.log = p.log.WithFields(logger.Fields(
		logger.FieldPipeline, p.name,
		logger.FieldPipelineID, p.id,
	))
	return p
}

// ID returns the pipeline instance id.
func (p *Pipeline) ID() string { return p.id }

// Name returns the pipeline name.
func (p *Pipeline) Name() string { return p.name }

// Len returns the number of stages.
func (p *Pipeline) Len() int { return len(p.stages) }

// Running reports whether Run has succeeded.
func (p *Pipeline) Running() bool { return p.run.Load() != nil }

// AddComponent appends a stage wrapping c. When a previous stage exists a
// new connector is allocated between the two. Components cannot be added
// once the pipeline runs.
func (p *Pipeline) AddComponent(c Component) error {
	if p.Running() {
		return errors.AlreadyRunning()
	}
	stage := newStage(len(p.stages), c)
	if n := len(p.stages); n > 0 {
		conn := NewConnector[item](p.capacity)
		p.stages[n-1].outbound = conn
		stage.inbound = conn
	}
	p.stages = append(p.stages, stage)
	return nil
}

// Run validates the topology and starts every stage in order. It returns
// without waiting for the stages. A rejected topology starts nothing and
// leaves the pipeline fixable; a second Run always fails.
//
// ctx bounds the stages' lifetime: cancelling it has the same effect on
// the stages as Stop, without running the stop hooks.
func (p *Pipeline) Run(ctx context.Context) error {
	ctx, span := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(p.spanAttributes()...))
	defer span.End()

	if p.Running() {
		err := errors.AlreadyRunning()
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if err := p.validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	rs := &runState{failures: make(chan *StageError, len(p.stages))}
	if !p.run.CompareAndSwap(nil, rs) {
		err := errors.AlreadyRunning()
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	metrics, reg := p.instrument()
	log := p.log.WithContext(ctx)

	for _, s := range p.stages {
		s.metrics = metrics
		s.attrs = observability.StageAttrs{
			Pipeline: p.name,
			Index:    s.index,
			Tag:      s.component.Tag(),
			Role:     s.component.role.String(),
		}
		log.Info("Starting stage", logger.StageFields(s.index, s.component.Tag(), s.component.role.String()))
		s.start(ctx, &p.wg, rs.failures)
	}

	go func() {
		p.wg.Wait()
		if reg != nil {
			if err := reg.Unregister(); err != nil {
				p.log.Warn("Unregistering depth gauge failed", logger.Fields(logger.FieldError, err.Error()))
			}
		}
		close(rs.failures)
		close(p.done)
	}()

	span.SetStatus(codes.Ok, "")
	return nil
}

// instrument creates the metric instruments when a meter is configured.
// Metrics are diagnostic, so instrument errors are logged and ignored.
func (p *Pipeline) instrument() (*observability.PipelineMetrics, metric.Registration) {
	if p.meter == nil {
		return nil, nil
	}
	metrics, err := observability.NewPipelineMetrics(p.meter)
	if err != nil {
		p.log.Warn("Pipeline metrics disabled", logger.Fields(logger.FieldError, err.Error()))
		return nil, nil
	}
	reg, err := metrics.ObserveDepth(p.connectorDepths)
	if err != nil {
		p.log.Warn("Connector depth gauge disabled", logger.Fields(logger.FieldError, err.Error()))
		return metrics, nil
	}
	return metrics, reg
}

func (p *Pipeline) connectorDepths() []observability.ConnectorDepth {
	depths := make([]observability.ConnectorDepth, 0, len(p.stages))
	for i, s := range p.stages {
		if s.outbound == nil || i+1 >= len(p.stages) {
			continue
		}
		depths = append(depths, observability.ConnectorDepth{
			Pipeline: p.name,
			Index:    i,
			From:     s.component.Tag(),
			To:       p.stages[i+1].component.Tag(),
			Depth:    int64(s.outbound.Len()),
			Capacity: int64(s.outbound.Cap()),
		})
	}
	return depths
}

func (p *Pipeline) validate() error {
	n := len(p.stages)
	if n < 2 {
		return errors.InvalidTopology(fmt.Sprintf("pipeline should have at least two components (got: %d)", n))
	}
	if r := p.stages[0].component.role; r != RoleSource {
		return errors.InvalidTopology(fmt.Sprintf("first component should be a source (got: %s)", r))
	}
	if r := p.stages[n-1].component.role; r != RoleSink {
		return errors.InvalidTopology(fmt.Sprintf("last component should be a sink (got: %s)", r))
	}
	for _, s := range p.stages[1 : n-1] {
		if r := s.component.role; r != RoleTransform {
			return errors.InvalidTopology(fmt.Sprintf("stage %d should be a transform (got: %s)", s.index, r))
		}
	}
	for i := 0; i < n-1; i++ {
		out, in := p.stages[i].component.out, p.stages[i+1].component.in
		if !compatible(out, in) {
			return errors.TypeMismatch(i, typeName(out), typeName(in))
		}
	}
	return nil
}

// Stop stops every stage in order and returns the stop hooks' errors. It
// never blocks on a stage; use Wait to observe the goroutines exiting.
func (p *Pipeline) Stop() error {
	_, span := p.tracer.Start(context.Background(), "pipeline.stop", trace.WithAttributes(p.spanAttributes()...))
	defer span.End()

	p.log.Info("Stopping pipeline")
	var errs []error
	for _, s := range p.stages {
		if err := s.Stop(); err != nil {
			p.log.Warn("Component stop hook failed", logger.MergeWithError(
				logger.StageFields(s.index, s.component.Tag(), s.component.role.String()), err))
			errs = append(errs, fmt.Errorf("stage %d (%s): %w", s.index, s.component.Tag(), err))
		}
	}
	err := stderrors.Join(errs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Done is closed once every stage goroutine has exited. It is never closed
// for a pipeline that did not run.
func (p *Pipeline) Done() <-chan struct{} { return p.done }

// Failures delivers each stage failure once and is closed after every
// stage goroutine has exited. It is nil before Run succeeds.
func (p *Pipeline) Failures() <-chan *StageError {
	rs := p.run.Load()
	if rs == nil {
		return nil
	}
	return rs.failures
}

// Wait blocks until every stage goroutine has exited or ctx ends, and
// returns the stage failures joined. It returns nil at once for a pipeline
// that did not run.
func (p *Pipeline) Wait(ctx context.Context) error {
	if !p.Running() {
		return nil
	}
	select {
	case <-p.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	var errs []error
	for _, s := range p.stages {
		if f := s.Err(); f != nil {
			errs = append(errs, f)
		}
	}
	return stderrors.Join(errs...)
}

// Stage returns the stage at index i.
func (p *Pipeline) Stage(i int) *Stage { return p.stages[i] }

// EndpointSizes returns the [inbound, outbound] connector depth of every
// stage, NoConnector for the absent ends.
func (p *Pipeline) EndpointSizes() [][2]int {
	sizes := make([][2]int, len(p.stages))
	for i, s := range p.stages {
		in, out := s.EndpointSizes()
		sizes[i] = [2]int{in, out}
	}
	return sizes
}

// StageInfo is a point-in-time view of one stage.
type StageInfo struct {
	Index     int    `json:"index"`
	Tag       string `json:"tag"`
	Role      string `json:"role"`
	State     string `json:"state"`
	Inbound   int    `json:"inbound"`
	Outbound  int    `json:"outbound"`
	Processed int64  `json:"processed"`
	Error     string `json:"error,omitempty"`
}

// Stages returns a snapshot of every stage.
func (p *Pipeline) Stages() []StageInfo {
	infos := make([]StageInfo, len(p.stages))
	for i, s := range p.stages {
		in, out := s.EndpointSizes()
		info := StageInfo{
			Index:     s.index,
			Tag:       s.component.Tag(),
			Role:      s.component.role.String(),
			State:     s.State().String(),
			Inbound:   in,
			Outbound:  out,
			Processed: s.Processed(),
		}
		if f := s.Err(); f != nil {
			info.Error = f.Error()
		}
		infos[i] = info
	}
	return infos
}

// String renders the topology with live connector depths, for example
// "SUP -[2]-> MAP -[0]-> CON".
func (p *Pipeline) String() string {
	var b strings.Builder
	for i, s := range p.stages {
		b.WriteString(s.component.Tag())
		if i < len(p.stages)-1 {
			depth := 0
			if s.outbound != nil {
				depth = s.outbound.Len()
			}
			fmt.Fprintf(&b, " -[%d]-> ", depth)
		}
	}
	return b.String()
}

func (p *Pipeline) spanAttributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("pipeline.name", p.name),
		attribute.String("pipeline.id", p.id),
		attribute.Int("pipeline.stages", len(p.stages)),
	}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<none>"
	}
	return t.String()
}
