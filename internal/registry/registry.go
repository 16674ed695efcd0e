// Package registry provides the per-category id -> record table rebuilt on
// every reload.
package registry

import (
	"fmt"
	"slices"
	"sync"

	"tintcore/internal/logging"
	"tintcore/pkg/domain"
)

// Registry maps resource ids to decoded records for one category. Builtin
// entries survive Reset; everything else is cleared. Duplicate
// registrations are logged and the later value wins.
type Registry[T any] struct {
	category domain.Category
	log      logging.Logger

	mu       sync.RWMutex
	entries  map[domain.ResourceID]T
	builtins map[domain.ResourceID]T
	order    []domain.ResourceID
}

// New constructs an empty registry for category.
func New[T any](category domain.Category, log logging.Logger) *Registry[T] {
	return &Registry[T]{
		category: category,
		log:      logging.OrNoop(log),
		entries:  make(map[domain.ResourceID]T),
		builtins: make(map[domain.ResourceID]T),
	}
}

// Category returns the category the registry belongs to.
func (r *Registry[T]) Category() domain.Category { return r.category }

// Builtin seeds a permanent entry and makes it visible immediately.
func (r *Registry[T]) Builtin(id domain.ResourceID, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builtins[id] = v
	if _, ok := r.entries[id]; !ok {
		r.order = append(r.order, id)
	}
	r.entries[id] = v
}

// Register stores v under id. It reports whether an earlier value was
// replaced; replacing is never an error.
func (r *Registry[T]) Register(id domain.ResourceID, v T) bool {
	r.mu.Lock()
	_, dup := r.entries[id]
	if !dup {
		r.order = append(r.order, id)
	}
	r.entries[id] = v
	r.mu.Unlock()
	if dup {
		err := &domain.DuplicateDefinitionError{Category: r.category, ID: id}
		r.log.Warn("duplicate definition, overwriting", "category", string(r.category), "id", id.String(), "error", err.Error())
	}
	return dup
}

// Get returns the value stored under id.
func (r *Registry[T]) Get(id domain.ResourceID) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[id]
	return v, ok
}

// Lookup is Get with an error naming the missing reference.
func (r *Registry[T]) Lookup(id domain.ResourceID) (T, error) {
	v, ok := r.Get(id)
	if !ok {
		return v, fmt.Errorf("%s %s: %w", r.category, id, domain.ErrUnresolvedReference)
	}
	return v, nil
}

// IsBuiltin reports whether id is a permanent entry.
func (r *Registry[T]) IsBuiltin(id domain.ResourceID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builtins[id]
	return ok
}

// Len returns the number of entries, builtins included.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Keys returns all ids sorted.
func (r *Registry[T]) Keys() []domain.ResourceID {
	r.mu.RLock()
	out := make([]domain.ResourceID, 0, len(r.entries))
	for id := range r.entries {
		out = append(out, id)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, domain.ResourceID.Compare)
	return out
}

// Each visits entries in registration order. Returning false stops the walk.
func (r *Registry[T]) Each(fn func(id domain.ResourceID, v T) bool) {
	r.mu.RLock()
	order := slices.Clone(r.order)
	snapshot := make(map[domain.ResourceID]T, len(r.entries))
	for k, v := range r.entries {
		snapshot[k] = v
	}
	r.mu.RUnlock()
	for _, id := range order {
		if !fn(id, snapshot[id]) {
			return
		}
	}
}

// Clear drops every entry, builtins included, until the next Reset.
func (r *Registry[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[domain.ResourceID]T)
	r.order = nil
}

// Reset clears user entries and reseeds builtins.
func (r *Registry[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[domain.ResourceID]T, len(r.builtins))
	r.order = r.order[:0]
	ids := make([]domain.ResourceID, 0, len(r.builtins))
	for id := range r.builtins {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, domain.ResourceID.Compare)
	for _, id := range ids {
		r.entries[id] = r.builtins[id]
		r.order = append(r.order, id)
	}
}
