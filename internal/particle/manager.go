package particle

import (
	"context"
	"encoding/json"
	"errors"
	"slices"

	"tintcore/internal/colormap"
	"tintcore/internal/logging"
	"tintcore/internal/override"
	"tintcore/internal/registry"
	"tintcore/internal/resource"
	"tintcore/internal/texture"
	"tintcore/pkg/domain"
)

// Root is the resource directory for particle definitions.
const Root = "custom_particles"

// Manager is the custom particles reloader. Ids the host already knows are
// overridden in place; new ids are registered as dynamic host particles.
type Manager struct {
	reg       *registry.Registry[*Type]
	applier   *override.Applier[Provider]
	colormaps colormap.Getter
	log       logging.Logger
	applied   int
}

// NewManager wires the manager to the host particle provider registry.
// New particle ids need targets to implement domain.DynamicTargets.
func NewManager(targets domain.Targets[Provider], colormaps colormap.Getter, log logging.Logger) *Manager {
	log = logging.With(logging.OrNoop(log), "category", string(domain.CategoryParticle))
	return &Manager{
		reg:       registry.New[*Type](domain.CategoryParticle, log),
		applier:   override.NewApplier(domain.CategoryParticle, targets, log),
		colormaps: colormaps,
		log:       log,
	}
}

func (m *Manager) Name() string { return string(domain.CategoryParticle) }

func (m *Manager) Prepare(ctx context.Context, src resource.Source) (resource.Bundle, error) {
	return resource.ScanBundle(ctx, src, Root)
}

// Reset restores overridden providers and unregisters added particles.
func (m *Manager) Reset(ctx context.Context) error {
	err := m.applier.Restore(ctx)
	m.reg.Reset()
	m.applied = 0
	return err
}

// Process decodes every definition. Any failure only skips that
// definition. Embedded colormaps default to the texture named after the
// particle.
func (m *Manager) Process(_ context.Context, b resource.Bundle) error {
	r := colormap.NewResolver(texture.Build(b.Images), m.log)
	for _, id := range resource.SortedIDs(b.Documents) {
		t, err := Decode(id, b.Documents[id].Data, m.binder(r, id))
		if err != nil {
			m.log.Error("skipping particle definition", "id", id.String(), "error", &domain.DecodeError{Category: domain.CategoryParticle, ID: id, Err: err})
			continue
		}
		m.reg.Register(id, t)
	}
	return nil
}

func (m *Manager) binder(r *colormap.Resolver, id domain.ResourceID) colormapFunc {
	return func(raw json.RawMessage) (colormap.Mapping, error) {
		mapping, err := r.Inline(raw, id, m.colormaps, false)
		if err != nil && errors.Is(err, domain.ErrMissingTexture) && !colormap.IsUnresolvedReference(err) {
			m.log.Warn("dropping unresolved particle colormap", "id", id.String())
			return nil, nil
		}
		return mapping, err
	}
}

// Apply installs every definition, continuing past host failures. The registry is
// emptied afterwards; the host now owns the installed values.
func (m *Manager) Apply(context.Context) error {
	ids := m.reg.Keys()
	slices.SortFunc(ids, domain.ResourceID.Compare)
	var errs []error
	n := 0
	for _, id := range ids {
		t, _ := m.reg.Get(id)
		var err error
		if m.applier.Exists(id) {
			_, err = m.applier.Install(id, func(Provider) Provider { return t })
			if err == nil {
				m.log.Info("overriding particle", "id", id.String())
			}
		} else {
			err = m.applier.Add(id, t)
		}
		if err != nil {
			m.log.Error("failed to apply override", "id", id.String(), "error", err)
			errs = append(errs, err)
			continue
		}
		n++
	}
	m.applied = n
	m.reg.Clear()
	return errors.Join(errs...)
}

// Applied returns the number of particles installed by the last Apply.
func (m *Manager) Applied() int { return m.applied }

// Lookup returns a particle type registered by Process; Apply empties the
// registry.
func (m *Manager) Lookup(id domain.ResourceID) (*Type, error) { return m.reg.Lookup(id) }
