// Package memory provides in-process host target registries. The CLI uses
// them as a stand-in for a live renderer and tests use them as fakes.
package memory

import (
	"fmt"
	"sort"
	"sync"

	"tintcore/pkg/domain"
)

type target struct{ id domain.ResourceID }

func (t target) TargetID() domain.ResourceID { return t.id }

// Targets is a map-backed domain.DynamicTargets.
type Targets[V any] struct {
	mu      sync.RWMutex
	values  map[domain.ResourceID]V
	dynamic map[domain.ResourceID]bool
	// FailOn makes SetValue fail for the listed ids.
	FailOn map[domain.ResourceID]error
}

// New seeds a registry with the given static targets.
func New[V any](seed map[domain.ResourceID]V) *Targets[V] {
	t := &Targets[V]{values: make(map[domain.ResourceID]V, len(seed)), dynamic: make(map[domain.ResourceID]bool)}
	for id, v := range seed {
		t.values[id] = v
	}
	return t
}

func (t *Targets[V]) Lookup(id domain.ResourceID) (domain.Target, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if _, ok := t.values[id]; !ok {
		return nil, false
	}
	return target{id: id}, true
}

func (t *Targets[V]) Value(tg domain.Target) (V, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[tg.TargetID()]
	if !ok {
		var zero V
		return zero, fmt.Errorf("host: unknown target %s", tg.TargetID())
	}
	return v, nil
}

func (t *Targets[V]) SetValue(tg domain.Target, v V) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := tg.TargetID()
	if err := t.FailOn[id]; err != nil {
		return err
	}
	if _, ok := t.values[id]; !ok {
		return fmt.Errorf("host: unknown target %s", id)
	}
	t.values[id] = v
	return nil
}

// Register adds a dynamic target. Static ids cannot be re-registered.
func (t *Targets[V]) Register(id domain.ResourceID, v V) (domain.Target, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.values[id]; ok {
		return nil, fmt.Errorf("host: target %s already registered", id)
	}
	t.values[id] = v
	t.dynamic[id] = true
	return target{id: id}, nil
}

// Unregister removes a dynamic target.
func (t *Targets[V]) Unregister(id domain.ResourceID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.dynamic[id] {
		return fmt.Errorf("host: %s is not a dynamic target", id)
	}
	delete(t.values, id)
	delete(t.dynamic, id)
	return nil
}

// Get returns the current value for id.
func (t *Targets[V]) Get(id domain.ResourceID) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[id]
	return v, ok
}

// IDs lists every target, sorted.
func (t *Targets[V]) IDs() []domain.ResourceID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.ResourceID, 0, len(t.values))
	for id := range t.values {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

// Dynamic reports whether id was added through Register.
func (t *Targets[V]) Dynamic(id domain.ResourceID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dynamic[id]
}

var _ domain.DynamicTargets[int] = (*Targets[int])(nil)
