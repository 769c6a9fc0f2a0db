package resilience

import (
	"context"

	"github.com/kbukum/stagekit/pipeline"
)

// wrapped forwards the optional Tagger and Stopper capabilities of the
// component it decorates.
type wrapped struct {
	inner any
}

func (w wrapped) Tag() string {
	if t, ok := w.inner.(pipeline.Tagger); ok {
		return t.Tag()
	}
	return ""
}

func (w wrapped) Stop() error {
	if s, ok := w.inner.(pipeline.Stopper); ok {
		return s.Stop()
	}
	return nil
}

type retrySource[T any] struct {
	wrapped
	src pipeline.Source[T]
	cfg RetryConfig
}

// RetrySource retries a failing Supply according to cfg before the error
// reaches the stage.
func RetrySource[T any](src pipeline.Source[T], cfg RetryConfig) pipeline.Source[T] {
	return &retrySource[T]{wrapped: wrapped{src}, src: src, cfg: cfg}
}

func (r *retrySource[T]) Supply(ctx context.Context) (pipeline.Optional[T], error) {
	return Retry(ctx, r.cfg, r.src.Supply)
}

type retryTransform[I, O any] struct {
	wrapped
	t   pipeline.Transform[I, O]
	cfg RetryConfig
}

// RetryTransform retries a failing Map with the same input according to
// cfg.
func RetryTransform[I, O any](t pipeline.Transform[I, O], cfg RetryConfig) pipeline.Transform[I, O] {
	return &retryTransform[I, O]{wrapped: wrapped{t}, t: t, cfg: cfg}
}

func (r *retryTransform[I, O]) Map(ctx context.Context, in pipeline.Optional[I]) (pipeline.Optional[O], error) {
	return Retry(ctx, r.cfg, func(ctx context.Context) (pipeline.Optional[O], error) {
		return r.t.Map(ctx, in)
	})
}

type retrySink[T any] struct {
	wrapped
	sink pipeline.Sink[T]
	cfg  RetryConfig
}

// RetrySink retries a failing Consume with the same input according to cfg.
func RetrySink[T any](sink pipeline.Sink[T], cfg RetryConfig) pipeline.Sink[T] {
	return &retrySink[T]{wrapped: wrapped{sink}, sink: sink, cfg: cfg}
}

func (r *retrySink[T]) Consume(ctx context.Context, in pipeline.Optional[T]) error {
	return RetryFunc(ctx, r.cfg, func(ctx context.Context) error {
		return r.sink.Consume(ctx, in)
	})
}
