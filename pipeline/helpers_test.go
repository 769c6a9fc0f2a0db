package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/stagekit/logger"
)

// quiet prepends a no-op logger to opts.
func quiet(opts ...Option) []Option {
	return append([]Option{WithLogger(logger.Nop())}, opts...)
}

// countingSource emits 0..n-1, then parks until its stage is cancelled.
func countingSource(n int) SourceFunc[int] {
	next := 0
	return func(ctx context.Context) (Optional[int], error) {
		if next < n {
			v := next
			next++
			return Some(v), nil
		}
		<-ctx.Done()
		return None[int](), ctx.Err()
	}
}

// endlessSource emits 1 forever.
func endlessSource() SourceFunc[int] {
	return func(context.Context) (Optional[int], error) {
		return Some(1), nil
	}
}

func identity[T any]() TransformFunc[T, T] {
	return func(_ context.Context, in Optional[T]) (Optional[T], error) {
		return in, nil
	}
}

// collector records every value it consumes and closes done once it has
// seen want of them.
type collector[T any] struct {
	mu    sync.Mutex
	items []Optional[T]
	want  int
	done  chan struct{}
	once  sync.Once
}

func newCollector[T any](want int) *collector[T] {
	c := &collector[T]{want: want, done: make(chan struct{})}
	if want == 0 {
		close(c.done)
	}
	return c
}

func (c *collector[T]) Consume(_ context.Context, in Optional[T]) error {
	c.mu.Lock()
	c.items = append(c.items, in)
	n := len(c.items)
	c.mu.Unlock()
	if n >= c.want {
		c.once.Do(func() { close(c.done) })
	}
	return nil
}

func (c *collector[T]) Items() []Optional[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Optional[T](nil), c.items...)
}

// parkedSink blocks in Consume until its stage is cancelled. entered is
// closed on the first call.
type parkedSink struct {
	entered chan struct{}
	once    sync.Once
}

func newParkedSink() *parkedSink {
	return &parkedSink{entered: make(chan struct{})}
}

func (s *parkedSink) Consume(ctx context.Context, _ Optional[int]) error {
	s.once.Do(func() { close(s.entered) })
	<-ctx.Done()
	return ctx.Err()
}

func waitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func eventually(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// stopAndWait stops p and waits for every stage goroutine to exit,
// returning Wait's error.
func stopAndWait(t *testing.T, p *Pipeline) error {
	t.Helper()
	if err := p.Stop(); err != nil {
		t.Errorf("Stop() = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := p.Wait(ctx)
	if ctx.Err() != nil {
		t.Fatal("stages did not exit after Stop")
	}
	return err
}

func threeStage(t *testing.T, src Source[int], sink Sink[int], opts ...Option) *Pipeline {
	t.Helper()
	p, err := NewBuilder(quiet(opts...)...).
		Add(FromSource[int](src)).
		Add(FromTransform[int, int](identity[int]())).
		Add(FromSink[int](sink)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return p
}
