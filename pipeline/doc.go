// Package pipeline runs a chain of stages connected by bounded buffers.
//
// Each stage wraps one component and runs it on a dedicated goroutine.
// A component plays exactly one role:
//
//   - Source: produces a value with no input (Supply)
//   - Transform: consumes one value and produces one value (Map)
//   - Sink: consumes a value and produces nothing (Consume)
//
// Consecutive stages are joined by a Connector, a FIFO with a fixed
// capacity (DefaultCapacity unless configured). Putting into a full
// connector blocks, so a slow sink stalls its upstream transforms, which in
// turn stall the source. That blocking is the only flow control: nothing is
// dropped and nothing grows without bound.
//
// Components exchange Optional values. None means "nothing this cycle"; it
// travels like any other value and sinks are invoked with it.
//
// # Usage
//
//	p, err := pipeline.NewBuilder(pipeline.WithName("camera")).
//	    Add(pipeline.FromSource(frames)).
//	    Add(pipeline.FromTransform(detector)).
//	    Add(pipeline.FromSink(broadcaster)).
//	    Build()
//	if err != nil {
//	    return err
//	}
//	if err := p.Run(ctx); err != nil {
//	    return err // topology rejected, nothing started
//	}
//	defer p.Stop()
//	fmt.Println(p) // SUP -[2]-> MAP -[0]-> CON
//
// # Failures
//
// A component error or panic ends its own stage only. The failure is
// delivered on Failures and returned from Wait; sibling stages keep running
// and may stall on the dead stage's connector. Stop is best-effort: it
// cancels every stage and runs the components' stop hooks, but a component
// that ignores its context may keep its goroutine alive.
package pipeline
