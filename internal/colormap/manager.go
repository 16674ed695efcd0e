package colormap

import (
	"context"
	"fmt"

	"tintcore/internal/logging"
	"tintcore/internal/registry"
	"tintcore/internal/resource"
	"tintcore/internal/texture"
	"tintcore/pkg/domain"
)

// Root is the resource directory holding colormap documents and textures.
const Root = "colormaps"

// Manager is the colormaps reloader. Its registry outlives Apply so later
// categories can reference colormaps by id; it is cleared on the next Reset.
type Manager struct {
	reg     *registry.Registry[Mapping]
	log     logging.Logger
	applied int
}

// NewManager returns a manager seeded with the builtin biome colors.
func NewManager(log logging.Logger) *Manager {
	log = logging.With(logging.OrNoop(log), "category", string(domain.CategoryColormap))
	m := &Manager{reg: registry.New[Mapping](domain.CategoryColormap, log), log: log}
	for _, b := range Builtins() {
		m.reg.Builtin(b.ID(), b)
	}
	return m
}

func (m *Manager) Name() string { return string(domain.CategoryColormap) }

// Prepare scans colormap documents and textures.
func (m *Manager) Prepare(ctx context.Context, src resource.Source) (resource.Bundle, error) {
	return resource.ScanBundle(ctx, src, Root)
}

// Reset clears user colormaps and reseeds the builtins.
func (m *Manager) Reset(context.Context) error {
	m.reg.Reset()
	m.applied = 0
	return nil
}

// Process decodes every document and binds it strictly to its texture.
// Malformed documents and dangling references are logged and skipped; a
// document whose texture cannot be bound fails the category. Textures no
// document used become implicit colormaps.
func (m *Manager) Process(_ context.Context, b resource.Bundle) error {
	ix := texture.Build(b.Images)
	r := NewResolver(ix, m.log)
	declared := make(map[domain.ResourceID]bool, len(b.Documents))
	var linked []domain.ResourceID
	pending := make(map[domain.ResourceID]Mapping)

	for _, id := range resource.SortedIDs(b.Documents) {
		doc := b.Documents[id]
		declared[id] = true
		mapping, err := Decode(doc.Data)
		if err != nil {
			m.log.Error("skipping malformed colormap", "id", id.String(), "error", &domain.DecodeError{Category: domain.CategoryColormap, ID: id, Err: err})
			continue
		}
		if hasReference(mapping) {
			pending[id] = mapping
			linked = append(linked, id)
			continue
		}
		if err := m.accept(r, id, mapping); err != nil {
			return err
		}
	}
	implicit, err := r.Orphans(declared)
	for _, im := range implicit {
		m.reg.Register(im.Target, im.Mapping)
	}
	if err != nil {
		return err
	}

	// References may only point at colormaps without references of their own.
	for _, id := range linked {
		mapping, err := Link(pending[id], m)
		if err != nil {
			m.log.Error("skipping colormap with dangling reference", "id", id.String(), "error", err)
			continue
		}
		if err := m.accept(r, id, mapping); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) accept(r *Resolver, id domain.ResourceID, mapping Mapping) error {
	if err := r.Resolve(mapping, id, true); err != nil {
		return fmt.Errorf("colormap: %s: %w", id, err)
	}
	if !mapping.Resolved() {
		return fmt.Errorf("colormap: %s: %w", id, domain.ErrMissingTexture)
	}
	m.reg.Register(id, mapping)
	return nil
}

func hasReference(m Mapping) bool {
	switch v := m.(type) {
	case Reference:
		return true
	case *Compound:
		for _, i := range v.Channels() {
			inner, _ := v.Channel(i)
			if hasReference(inner) {
				return true
			}
		}
	}
	return false
}

// Apply has no host target; it only records how many colormaps are live.
func (m *Manager) Apply(context.Context) error {
	n := 0
	m.reg.Each(func(id domain.ResourceID, _ Mapping) bool {
		if !m.reg.IsBuiltin(id) {
			n++
		}
		return true
	})
	m.applied = n
	return nil
}

// Applied returns the number of user colormaps registered by the last cycle.
func (m *Manager) Applied() int { return m.applied }

// Get resolves a reference against builtins, named samplers and registered
// colormaps, in that order. Named samplers are returned fresh and unbound.
func (m *Manager) Get(ref Ref) (Mapping, bool) {
	if ref.IsBuiltin() {
		return ref.Builtin, true
	}
	if s, ok := NamedSampler(ref.ID()); ok {
		return s, true
	}
	return m.reg.Get(ref.ID())
}

// Lookup is Get for a bare id, failing with ErrUnresolvedReference.
func (m *Manager) Lookup(id domain.ResourceID) (Mapping, error) {
	ref := RefFromID(id)
	if v, ok := m.Get(ref); ok {
		return v, nil
	}
	return nil, unresolved(ref)
}

// IDs lists registered colormaps, builtins included.
func (m *Manager) IDs() []domain.ResourceID { return m.reg.Keys() }
