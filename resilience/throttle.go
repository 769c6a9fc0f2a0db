package resilience

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/kbukum/stagekit/pipeline"
)

type throttledSource[T any] struct {
	wrapped
	src     pipeline.Source[T]
	limiter *rate.Limiter
}

// Throttle caps how often src is asked to Supply at perSecond calls per
// second, allowing bursts of up to burst calls. A burst below one is
// treated as one.
func Throttle[T any](src pipeline.Source[T], perSecond float64, burst int) pipeline.Source[T] {
	if burst < 1 {
		burst = 1
	}
	return &throttledSource[T]{
		wrapped: wrapped{src},
		src:     src,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (t *throttledSource[T]) Supply(ctx context.Context) (pipeline.Optional[T], error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return pipeline.None[T](), err
	}
	return t.src.Supply(ctx)
}
