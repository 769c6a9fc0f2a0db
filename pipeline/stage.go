package pipeline

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"

	"github.com/kbukum/stagekit/errors"
	"github.com/kbukum/stagekit/observability"
)

// NoConnector is reported by EndpointSizes for the absent inbound end of a
// source and outbound end of a sink.
const NoConnector = -1

// State is the lifecycle state of a stage.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StageError reports the failure that ended one stage.
type StageError struct {
	Index int
	Tag   string
	Role  Role
	Err   *errors.AppError
}

func (e *StageError) Error() string { return e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// Stage drives one component on its own goroutine, moving one value per
// iteration between its connectors.
type Stage struct {
	index     int
	component Component
	inbound   *Connector[item]
	outbound  *Connector[item]

	metrics *observability.PipelineMetrics
	attrs   observability.StageAttrs

	// stopCtx is cancelled by Stop; it is created with the stage so Stop
	// can race with start without a lock.
	stopCtx    context.Context
	stopCancel context.CancelFunc
	stopOnce   sync.Once
	stopErr    error

	state     atomic.Int32
	processed atomic.Int64
	failure   atomic.Pointer[StageError]
}

func newStage(index int, c Component) *Stage {
	stopCtx, stopCancel := context.WithCancel(context.Background())
	return &Stage{
		index:      index,
		component:  c,
		stopCtx:    stopCtx,
		stopCancel: stopCancel,
	}
}

// Index returns the stage position in its pipeline.
func (s *Stage) Index() int { return s.index }

// Component returns the wrapped component.
func (s *Stage) Component() Component { return s.component }

// State returns the current lifecycle state.
func (s *Stage) State() State { return State(s.state.Load()) }

// Processed returns how many values the stage has completed.
func (s *Stage) Processed() int64 { return s.processed.Load() }

// Err returns the failure that ended the stage, or nil.
func (s *Stage) Err() *StageError { return s.failure.Load() }

// EndpointSizes returns the depth of the inbound and outbound connectors,
// NoConnector for an absent end.
func (s *Stage) EndpointSizes() (inbound, outbound int) {
	inbound, outbound = NoConnector, NoConnector
	if s.inbound != nil {
		inbound = s.inbound.Len()
	}
	if s.outbound != nil {
		outbound = s.outbound.Len()
	}
	return inbound, outbound
}

// Stop cancels the stage and then runs the component's stop hook. Only the
// first call has an effect. Stop does not wait for the stage goroutine: a
// component operation that ignores its context may still be running when
// Stop returns.
func (s *Stage) Stop() error {
	s.stopOnce.Do(func() {
		s.stopCancel()
		if s.component.stop != nil {
			s.stopErr = s.runStopHook()
		}
	})
	return s.stopErr
}

// runStopHook calls the component's stop hook, reporting a panic as a
// STAGE_PANIC error.
func (s *Stage) runStopHook() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.StagePanic(s.index, s.component.Tag(), r)
		}
	}()
	return s.component.stop()
}

// start launches the stage goroutine. wg is released when the goroutine
// exits; a failure is sent on failures, which must have room for it.
func (s *Stage) start(parent context.Context, wg *sync.WaitGroup, failures chan<- *StageError) {
	ctx, cancel := context.WithCancel(parent)
	release := context.AfterFunc(s.stopCtx, cancel)
	if s.stopCtx.Err() != nil {
		cancel()
	}

	s.state.Store(int32(StateRunning))
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		defer release()

		err := s.loop(ctx)
		s.finish(ctx, err, failures)
	}()
}

func (s *Stage) loop(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.StagePanic(s.index, s.component.Tag(), r)
		}
	}()

	step := s.step()
	for ctx.Err() == nil {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// step resolves the per-iteration operation once, from the role fixed at
// construction.
func (s *Stage) step() func(context.Context) error {
	switch s.component.role {
	case RoleSource:
		return s.supplyOnce
	case RoleTransform:
		return s.transformOnce
	default:
		return s.consumeOnce
	}
}

func (s *Stage) supplyOnce(ctx context.Context) error {
	v, err := s.component.supply(ctx)
	if err != nil {
		return s.wrap(err)
	}
	if err := s.outbound.PutContext(ctx, v); err != nil {
		return err
	}
	s.done(ctx)
	return nil
}

func (s *Stage) transformOnce(ctx context.Context) error {
	in, err := s.inbound.GetContext(ctx)
	if err != nil {
		return err
	}
	out, err := s.component.transform(ctx, in)
	if err != nil {
		return s.wrap(err)
	}
	if err := s.outbound.PutContext(ctx, out); err != nil {
		return err
	}
	s.done(ctx)
	return nil
}

func (s *Stage) consumeOnce(ctx context.Context) error {
	in, err := s.inbound.GetContext(ctx)
	if err != nil {
		return err
	}
	if err := s.component.consume(ctx, in); err != nil {
		return s.wrap(err)
	}
	s.done(ctx)
	return nil
}

func (s *Stage) done(ctx context.Context) {
	s.processed.Add(1)
	s.metrics.RecordItem(ctx, s.attrs)
}

func (s *Stage) wrap(err error) error {
	return errors.StageFailed(s.index, s.component.Tag(), err)
}

// finish records how the stage ended. Anything returned after the stage
// context was cancelled counts as a stop, not a failure.
func (s *Stage) finish(ctx context.Context, err error, failures chan<- *StageError) {
	if err == nil || ctx.Err() != nil {
		s.state.Store(int32(StateStopped))
		return
	}

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.StageFailed(s.index, s.component.Tag(), err)
	}
	failure := &StageError{
		Index: s.index,
		Tag:   s.component.Tag(),
		Role:  s.component.role,
		Err:   appErr,
	}
	s.failure.Store(failure)
	s.state.Store(int32(StateFailed))
	s.metrics.RecordFailure(context.WithoutCancel(ctx), s.attrs, string(appErr.Code))
	failures <- failure
}
