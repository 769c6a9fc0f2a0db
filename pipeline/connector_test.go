package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewConnectorCapacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		want     int
	}{
		{"explicit", 2, 2},
		{"zero selects default", 0, DefaultCapacity},
		{"negative selects default", -3, DefaultCapacity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewConnector[int](tc.capacity)
			if c.Cap() != tc.want {
				t.Errorf("Cap() = %d, want %d", c.Cap(), tc.want)
			}
			if c.Len() != 0 {
				t.Errorf("Len() = %d, want 0", c.Len())
			}
		})
	}
}

func TestConnectorFIFO(t *testing.T) {
	c := NewConnector[int](4)
	for i := 0; i < 4; i++ {
		c.Put(i)
	}
	if c.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", c.Len())
	}
	for i := 0; i < 4; i++ {
		if got := c.Get(); got != i {
			t.Errorf("Get() = %d, want %d", got, i)
		}
	}
}

func TestConnectorPutBlocksWhenFull(t *testing.T) {
	c := NewConnector[int](1)
	c.Put(1)

	put := make(chan struct{})
	go func() {
		c.Put(2)
		close(put)
	}()

	select {
	case <-put:
		t.Fatal("Put on a full connector returned")
	case <-time.After(50 * time.Millisecond):
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 while full", c.Len())
	}

	if got := c.Get(); got != 1 {
		t.Errorf("Get() = %d, want 1", got)
	}
	select {
	case <-put:
	case <-time.After(time.Second):
		t.Fatal("Put did not resume after a slot was freed")
	}
	if got := c.Get(); got != 2 {
		t.Errorf("Get() = %d, want 2", got)
	}
}

func TestConnectorPutContextCancelled(t *testing.T) {
	c := NewConnector[int](1)
	c.Put(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.PutContext(ctx, 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("PutContext error = %v, want context.Canceled", err)
	}
	if c.Len() != 1 {
		t.Errorf("value enqueued despite cancellation, Len() = %d", c.Len())
	}
}

func TestConnectorGetContext(t *testing.T) {
	c := NewConnector[string](2)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.GetContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("GetContext on empty = %v, want deadline exceeded", err)
	}

	if err := c.PutContext(context.Background(), "a"); err != nil {
		t.Fatalf("PutContext failed: %v", err)
	}
	got, err := c.GetContext(context.Background())
	if err != nil || got != "a" {
		t.Errorf("GetContext = %q, %v", got, err)
	}
}
