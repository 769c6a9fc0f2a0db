// Package resilience decorates pipeline components with retry and rate
// limiting.
//
// A component error ends its stage. Wrapping a component that talks to a
// flaky device or network peer lets transient errors be retried first:
//
//	cam := resilience.RetrySource[Frame](camera, resilience.DefaultRetryConfig())
//	cam = resilience.Throttle(cam, 30, 1) // at most 30 frames per second
//	b.Add(pipeline.FromSource[Frame](cam))
//
// Decorators keep the wrapped component's tag and stop hook.
package resilience
