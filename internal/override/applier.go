// Package override installs override values on host targets and restores
// the captured baselines on the next reset.
package override

import (
	"context"
	"errors"
	"fmt"

	"tintcore/internal/logging"
	"tintcore/pkg/domain"
)

type baseline[V any] struct {
	target domain.Target
	value  V
}

// Applier owns the baseline snapshot for one category. It is not safe for
// concurrent use; callers serialize install and restore.
type Applier[V any] struct {
	category  domain.Category
	targets   domain.Targets[V]
	log       logging.Logger
	baselines map[domain.ResourceID]baseline[V]
	order     []domain.ResourceID
	added     []domain.ResourceID
}

// NewApplier binds an applier to a host registry.
func NewApplier[V any](category domain.Category, targets domain.Targets[V], log logging.Logger) *Applier[V] {
	return &Applier[V]{
		category:  category,
		targets:   targets,
		log:       logging.OrNoop(log),
		baselines: make(map[domain.ResourceID]baseline[V]),
	}
}

// Install replaces the value of id with fn(current). The first install per
// cycle captures the baseline; later installs on the same target compose on
// top of the installed value. It reports false when the host has no such
// target.
func (a *Applier[V]) Install(id domain.ResourceID, fn func(V) V) (bool, error) {
	if a.targets == nil {
		return false, nil
	}
	t, ok := a.targets.Lookup(id)
	if !ok {
		return false, nil
	}
	current, err := a.targets.Value(t)
	if err != nil {
		return false, &domain.ApplyError{Category: a.category, Target: id, Err: err}
	}
	if _, seen := a.baselines[id]; !seen {
		a.baselines[id] = baseline[V]{target: t, value: current}
		a.order = append(a.order, id)
	}
	if err := a.targets.SetValue(t, fn(current)); err != nil {
		return false, &domain.ApplyError{Category: a.category, Target: id, Err: err}
	}
	return true, nil
}

// Add registers a new host target. The host registry must accept dynamic
// targets. Added targets are unregistered by Restore.
func (a *Applier[V]) Add(id domain.ResourceID, v V) error {
	dyn, ok := a.targets.(domain.DynamicTargets[V])
	if !ok {
		return &domain.ApplyError{Category: a.category, Target: id, Err: fmt.Errorf("host registry does not accept new targets")}
	}
	if _, err := dyn.Register(id, v); err != nil {
		return &domain.ApplyError{Category: a.category, Target: id, Err: err}
	}
	a.added = append(a.added, id)
	return nil
}

// Exists reports whether the host already knows id.
func (a *Applier[V]) Exists(id domain.ResourceID) bool {
	if a.targets == nil {
		return false
	}
	_, ok := a.targets.Lookup(id)
	return ok
}

// Count returns the number of targets touched this cycle.
func (a *Applier[V]) Count() int { return len(a.order) + len(a.added) }

// Restore writes every baseline back, unregisters added targets and forgets
// both. Failures are logged and joined; every target is still attempted.
// Calling Restore with nothing installed is a no-op.
func (a *Applier[V]) Restore(_ context.Context) error {
	var errs []error
	for i := len(a.order) - 1; i >= 0; i-- {
		id := a.order[i]
		b := a.baselines[id]
		if err := a.targets.SetValue(b.target, b.value); err != nil {
			aerr := &domain.ApplyError{Category: a.category, Target: id, Err: err}
			a.log.Error("failed to restore baseline", "category", string(a.category), "target", id.String(), "error", err)
			errs = append(errs, aerr)
		}
	}
	if dyn, ok := a.targets.(domain.DynamicTargets[V]); ok {
		for _, id := range a.added {
			if err := dyn.Unregister(id); err != nil {
				a.log.Error("failed to unregister target", "category", string(a.category), "target", id.String(), "error", err)
				errs = append(errs, &domain.ApplyError{Category: a.category, Target: id, Err: err})
			}
		}
	}
	a.baselines = make(map[domain.ResourceID]baseline[V])
	a.order = nil
	a.added = nil
	return errors.Join(errs...)
}

// InstallAll installs each entry of ids in order, logging and collecting
// ApplyErrors without stopping. It returns how many targets were changed.
func InstallAll[V any](a *Applier[V], ids []domain.ResourceID, fn func(id domain.ResourceID) func(V) V) (int, error) {
	var (
		n    int
		errs []error
	)
	for _, id := range ids {
		ok, err := a.Install(id, fn(id))
		if err != nil {
			a.log.Error("failed to apply override", "category", string(a.category), "target", id.String(), "error", err)
			errs = append(errs, err)
			continue
		}
		if ok {
			n++
		}
	}
	return n, errors.Join(errs...)
}
