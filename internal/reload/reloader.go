// Package reload drives override categories through prepare, reset, process
// and apply in a fixed declaration order.
package reload

import (
	"context"
	"fmt"

	"tintcore/internal/resource"
)

// Reloader is one override category. Prepare only reads resources and may
// run off the caller's goroutine. Reset, Process and Apply run on the caller
// and are the only phases that touch registries or host targets.
type Reloader[T any] interface {
	Name() string
	Prepare(ctx context.Context, src resource.Source) (T, error)
	Reset(ctx context.Context) error
	Process(ctx context.Context, data T) error
	Apply(ctx context.Context) error
}

// Counter is implemented by reloaders that report how many host targets
// their last Apply touched.
type Counter interface {
	Applied() int
}

// Child is a type-erased Reloader as held by a Compound.
type Child interface {
	Name() string
	prepare(ctx context.Context, src resource.Source) (any, error)
	reset(ctx context.Context) error
	process(ctx context.Context, data any) error
	apply(ctx context.Context) error
	applied() int
}

type state uint8

const (
	stateIdle state = iota
	stateReset
	stateProcessed
)

type stage[T any] struct {
	r     Reloader[T]
	state state
}

// Stage erases the prepared-data type of r so it can join a Compound.
func Stage[T any](r Reloader[T]) Child { return &stage[T]{r: r} }

func (s *stage[T]) Name() string { return s.r.Name() }

func (s *stage[T]) prepare(ctx context.Context, src resource.Source) (any, error) {
	return s.r.Prepare(ctx, src)
}

func (s *stage[T]) reset(ctx context.Context) error {
	s.state = stateReset
	return s.r.Reset(ctx)
}

func (s *stage[T]) process(ctx context.Context, data any) error {
	typed, ok := data.(T)
	if !ok && data != nil {
		return fmt.Errorf("reload: %s: prepared data has type %T", s.r.Name(), data)
	}
	if err := s.r.Process(ctx, typed); err != nil {
		return err
	}
	s.state = stateProcessed
	return nil
}

// apply is a no-op unless process succeeded since the last reset.
func (s *stage[T]) apply(ctx context.Context) error {
	if s.state != stateProcessed {
		return nil
	}
	s.state = stateIdle
	return s.r.Apply(ctx)
}

func (s *stage[T]) applied() int {
	if c, ok := s.r.(Counter); ok {
		return c.Applied()
	}
	return 0
}
