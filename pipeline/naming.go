package pipeline

import (
	"fmt"
	"sync/atomic"
)

// NameSequence hands out display names "prefix_0", "prefix_1", ... It is
// passed to components that need a unique name (a viewer window, a
// broadcast channel) so no process-wide counter is needed.
type NameSequence struct {
	prefix string
	next   atomic.Int64
}

// NewNameSequence creates a sequence starting at prefix_0.
func NewNameSequence(prefix string) *NameSequence {
	return &NameSequence{prefix: prefix}
}

// Next returns the next unused name. Safe for concurrent use.
func (n *NameSequence) Next() string {
	i := n.next.Add(1) - 1
	return fmt.Sprintf("%s_%d", n.prefix, i)
}
