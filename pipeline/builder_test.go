package pipeline

import (
	"context"
	"testing"

	"github.com/kbukum/stagekit/errors"
)

func TestBuilderBuild(t *testing.T) {
	p, err := NewBuilder(quiet(WithName("audio"), WithCapacity(8))...).
		Add(FromSource[int](countingSource(0))).
		Add(FromSink[int](newCollector[int](0))).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if p.Name() != "audio" || p.Len() != 2 || p.Stage(0).outbound.Cap() != 8 {
		t.Errorf("unexpected pipeline: name=%s len=%d", p.Name(), p.Len())
	}
}

func TestBuilderDoesNotValidate(t *testing.T) {
	p, err := NewBuilder(quiet()...).Add(FromSink[int](newCollector[int](0))).Build()
	if err != nil {
		t.Fatalf("Build should leave validation to Run: %v", err)
	}
	if err := p.Run(context.Background()); !errors.HasCode(err, errors.ErrCodeInvalidTopology) {
		t.Errorf("Run() = %v, want INVALID_TOPOLOGY", err)
	}
}

func TestBuilderAfterRun(t *testing.T) {
	b := NewBuilder(quiet()...).
		Add(FromSource[int](countingSource(0))).
		Add(FromSink[int](newCollector[int](0)))
	p := b.MustBuild()
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	defer stopAndWait(t, p)

	_, err := b.Add(FromSink[int](newCollector[int](0))).Build()
	if !errors.HasCode(err, errors.ErrCodeAlreadyRunning) {
		t.Errorf("Build() = %v, want ALREADY_RUNNING", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustBuild should panic")
		}
	}()
	b.MustBuild()
}
