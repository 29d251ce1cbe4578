// Package cell provides a single-writer mutable slot with an optional write
// validator and immutable, replaceable metadata.
//
// A Cell is deliberately NOT safe for concurrent writers: it is a plain
// in-place slot intended for single-writer use, such as capturing a value out
// of a callback that is invoked by exactly one goroutine. Code that needs
// cross-goroutine coordination should use watch.Ref instead.
package cell

import (
	"fmt"

	"github.com/samber/lo"
)

// Validator reports whether a proposed value may be written. It must be
// side-effect-free.
type Validator[T any] func(T) bool

// InvalidStateError is returned by Write when the validator rejects the
// proposed value. The cell is left unchanged.
type InvalidStateError struct {
	Value any
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cell: validator rejected value %v", e.Value)
}

// Options configures a Cell.
type Options[T any] struct {
	// Validator, if set, is run on every write. Must be side-effect-free.
	Validator Validator[T]

	// Metadata is an opaque annotation map, copied at construction and
	// immutable per instance; replace it with WithMetadata.
	Metadata map[string]any
}

// Cell is a validated single-writer slot.
type Cell[T any] struct {
	value     T
	validator Validator[T]
	metadata  map[string]any
}

// New returns a cell holding initial. It panics if a validator is given and
// rejects the initial value; constructing an invalid cell is a programmer
// error, not a runtime condition.
func New[T any](initial T, opts Options[T]) *Cell[T] {
	if opts.Validator != nil && !opts.Validator(initial) {
		panic(fmt.Sprintf("cell: validator rejected initial value %v", initial))
	}

	return &Cell[T]{
		value:     initial,
		validator: opts.Validator,
		metadata:  lo.Assign(opts.Metadata),
	}
}

// Read returns the current value. It never blocks and never fails.
func (c *Cell[T]) Read() T {
	return c.value
}

// Write replaces the current value with v. If the cell has a validator and it
// rejects v, Write returns *InvalidStateError and the cell is unchanged.
func (c *Cell[T]) Write(v T) error {
	if c.validator != nil && !c.validator(v) {
		return &InvalidStateError{Value: v}
	}

	c.value = v

	return nil
}

// Metadata returns a copy of the cell's annotation map.
func (c *Cell[T]) Metadata() map[string]any {
	return lo.Assign(c.metadata)
}

// WithMetadata returns a new cell with the same current value and validator
// but metadata m. The receiver is not mutated and both cells remain
// independently usable; m is copied, so later mutation of the caller's map
// is not observed by either cell.
func (c *Cell[T]) WithMetadata(m map[string]any) *Cell[T] {
	return &Cell[T]{
		value:     c.value,
		validator: c.validator,
		metadata:  lo.Assign(m),
	}
}
