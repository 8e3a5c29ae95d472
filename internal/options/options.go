// Package options implements the generic functional options used to configure
// transforms and record containers.
package options

import "fmt"

// Option configures a target of type T.
type Option[T any] interface {
	apply(T) error
	name() string
}

// Func is a named functional option.
type Func[T any] struct {
	label     string
	applyFunc func(T) error
}

func (f *Func[T]) apply(target T) error {
	return f.applyFunc(target)
}

func (f *Func[T]) name() string {
	return f.label
}

// New creates an option that may reject its argument. The label names the
// option in the error returned by Apply.
func New[T any](label string, fn func(T) error) *Func[T] {
	return &Func[T]{label: label, applyFunc: fn}
}

// NoError creates an option that cannot fail.
func NoError[T any](label string, fn func(T)) *Func[T] {
	return &Func[T]{
		label: label,
		applyFunc: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Apply applies opts to target in order and stops at the first failure.
// Nil options are skipped.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return fmt.Errorf("option %s: %w", opt.name(), err)
		}
	}

	return nil
}
