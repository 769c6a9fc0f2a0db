package pipeline

// Builder accumulates components into a pipeline before it runs. Wiring
// and validation are left to the Pipeline itself.
type Builder struct {
	pipeline *Pipeline
	err      error
}

// NewBuilder starts a pipeline configured with opts.
func NewBuilder(opts ...Option) *Builder {
	return &Builder{pipeline: New(opts...)}
}

// Add appends c and returns the builder for chaining.
func (b *Builder) Add(c Component) *Builder {
	if b.err == nil {
		b.err = b.pipeline.AddComponent(c)
	}
	return b
}

// Build returns the assembled, not yet running pipeline. It only fails when
// components were added after the pipeline had already been run.
func (b *Builder) Build() (*Pipeline, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.pipeline, nil
}

// MustBuild is Build that panics on error.
func (b *Builder) MustBuild() *Pipeline {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}
