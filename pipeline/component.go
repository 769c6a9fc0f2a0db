package pipeline

import (
	"context"
	"fmt"
	"reflect"
)

// Role is the capability a component provides to its stage.
type Role int

const (
	RoleSource Role = iota + 1
	RoleTransform
	RoleSink
)

func (r Role) String() string {
	switch r {
	case RoleSource:
		return "source"
	case RoleTransform:
		return "transform"
	case RoleSink:
		return "sink"
	default:
		return "unknown"
	}
}

// DefaultTag returns the short tag rendered for components that do not
// provide their own.
func (r Role) DefaultTag() string {
	switch r {
	case RoleSource:
		return "SUP"
	case RoleTransform:
		return "MAP"
	case RoleSink:
		return "CON"
	default:
		return "???"
	}
}

// Source produces values with no input. A None result means nothing was
// produced this cycle; it is still forwarded downstream.
type Source[T any] interface {
	Supply(ctx context.Context) (Optional[T], error)
}

// Transform maps one value to one value. It must accept None input.
type Transform[I, O any] interface {
	Map(ctx context.Context, in Optional[I]) (Optional[O], error)
}

// Sink consumes values. It must treat None as a no-op, not a failure.
type Sink[T any] interface {
	Consume(ctx context.Context, in Optional[T]) error
}

// Stopper is implemented by components holding external resources
// (devices, sockets, windows). Stop is called once when the owning stage is
// stopped.
type Stopper interface {
	Stop() error
}

// Tagger is implemented by components that render under their own short tag
// instead of the role default.
type Tagger interface {
	Tag() string
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func(ctx context.Context) (Optional[T], error)

func (f SourceFunc[T]) Supply(ctx context.Context) (Optional[T], error) { return f(ctx) }

// TransformFunc adapts a function to Transform.
type TransformFunc[I, O any] func(ctx context.Context, in Optional[I]) (Optional[O], error)

func (f TransformFunc[I, O]) Map(ctx context.Context, in Optional[I]) (Optional[O], error) {
	return f(ctx, in)
}

// SinkFunc adapts a function to Sink.
type SinkFunc[T any] func(ctx context.Context, in Optional[T]) error

func (f SinkFunc[T]) Consume(ctx context.Context, in Optional[T]) error { return f(ctx, in) }

// item is the type-erased value carried by connectors.
type item = Optional[any]

// Component is one role-resolved unit of user logic. Build it with
// FromSource, FromTransform or FromSink; the role is fixed there and the
// stage never inspects the user value again.
type Component struct {
	role Role
	tag  string
	in   reflect.Type
	out  reflect.Type

	supply    func(context.Context) (item, error)
	transform func(context.Context, item) (item, error)
	consume   func(context.Context, item) error
	stop      func() error
}

// FromSource wraps a Source.
func FromSource[T any](s Source[T]) Component {
	c := Component{
		role: RoleSource,
		out:  reflect.TypeFor[T](),
		supply: func(ctx context.Context) (item, error) {
			v, err := s.Supply(ctx)
			return erase(v), err
		},
	}
	c.attach(s)
	return c
}

// FromTransform wraps a Transform.
func FromTransform[I, O any](t Transform[I, O]) Component {
	c := Component{
		role: RoleTransform,
		in:   reflect.TypeFor[I](),
		out:  reflect.TypeFor[O](),
		transform: func(ctx context.Context, in item) (item, error) {
			typed, err := unerase[I](in)
			if err != nil {
				return None[any](), err
			}
			v, err := t.Map(ctx, typed)
			return erase(v), err
		},
	}
	c.attach(t)
	return c
}

// FromSink wraps a Sink.
func FromSink[T any](s Sink[T]) Component {
	c := Component{
		role: RoleSink,
		in:   reflect.TypeFor[T](),
		consume: func(ctx context.Context, in item) error {
			typed, err := unerase[T](in)
			if err != nil {
				return err
			}
			return s.Consume(ctx, typed)
		},
	}
	c.attach(s)
	return c
}

func (c *Component) attach(impl any) {
	c.tag = c.role.DefaultTag()
	if t, ok := impl.(Tagger); ok && t.Tag() != "" {
		c.tag = t.Tag()
	}
	if s, ok := impl.(Stopper); ok {
		c.stop = s.Stop
	}
}

// WithTag returns a copy of c rendered under tag.
func (c Component) WithTag(tag string) Component {
	c.tag = tag
	return c
}

// WithStop returns a copy of c whose stop hook is fn. It replaces any hook
// picked up from a Stopper implementation.
func (c Component) WithStop(fn func() error) Component {
	c.stop = fn
	return c
}

// Role returns the component's role; zero for a Component not built by
// FromSource, FromTransform or FromSink.
func (c Component) Role() Role { return c.role }

// Tag returns the short tag used in topology rendering.
func (c Component) Tag() string {
	if c.tag == "" {
		return c.role.DefaultTag()
	}
	return c.tag
}

// In returns the element type the component accepts, nil for sources.
func (c Component) In() reflect.Type { return c.in }

// Out returns the element type the component emits, nil for sinks.
func (c Component) Out() reflect.Type { return c.out }

func erase[T any](o Optional[T]) item {
	v, ok := o.Get()
	if !ok {
		return None[any]()
	}
	return Some[any](v)
}

func unerase[T any](it item) (Optional[T], error) {
	v, ok := it.Get()
	if !ok {
		return None[T](), nil
	}
	if v == nil {
		if !nilable(reflect.TypeFor[T]()) {
			return None[T](), fmt.Errorf("unexpected nil element, want %s", reflect.TypeFor[T]())
		}
		var zero T
		return Some(zero), nil
	}
	typed, ok := v.(T)
	if !ok {
		return None[T](), fmt.Errorf("unexpected element type %T, want %s", v, reflect.TypeFor[T]())
	}
	return Some(typed), nil
}

// nilable reports whether nil is a value of t.
func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}

// compatible reports whether values of type out can be handed to a stage
// accepting in. Interface-typed producers are checked per value at runtime.
func compatible(out, in reflect.Type) bool {
	if out == nil || in == nil {
		return false
	}
	if out.AssignableTo(in) {
		return true
	}
	return out.Kind() == reflect.Interface
}
