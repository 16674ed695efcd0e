package item

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"tintcore/internal/colormap"
	"tintcore/internal/logging"
	"tintcore/internal/override"
	"tintcore/internal/registry"
	"tintcore/internal/resource"
	"tintcore/internal/texture"
	"tintcore/pkg/domain"
)

// Root is the resource directory for item appearances.
const Root = "item_appearances"

// Manager is the item appearances reloader.
type Manager struct {
	reg       *registry.Registry[Appearance]
	applier   *override.Applier[Appearance]
	colormaps colormap.Getter
	log       logging.Logger
	applied   int
}

// NewManager wires the manager to the host item registry.
func NewManager(targets domain.Targets[Appearance], colormaps colormap.Getter, log logging.Logger) *Manager {
	log = logging.With(logging.OrNoop(log), "category", string(domain.CategoryItem))
	return &Manager{
		reg:       registry.New[Appearance](domain.CategoryItem, log),
		applier:   override.NewApplier(domain.CategoryItem, targets, log),
		colormaps: colormaps,
		log:       log,
	}
}

func (m *Manager) Name() string { return string(domain.CategoryItem) }

func (m *Manager) Prepare(ctx context.Context, src resource.Source) (resource.Bundle, error) {
	return resource.ScanBundle(ctx, src, Root)
}

func (m *Manager) Reset(ctx context.Context) error {
	err := m.applier.Restore(ctx)
	m.reg.Reset()
	m.applied = 0
	return err
}

// Process decodes appearances. A dangling colormap reference fails the
// category; a colormap without a texture is dropped from its record.
func (m *Manager) Process(_ context.Context, b resource.Bundle) error {
	r := colormap.NewResolver(texture.Build(b.Images), m.log)
	for _, id := range resource.SortedIDs(b.Documents) {
		a, raw, err := decodeDoc(b.Documents[id].Data)
		if err != nil {
			m.log.Error("skipping malformed item appearance", "id", id.String(), "error", &domain.DecodeError{Category: domain.CategoryItem, ID: id, Err: err})
			continue
		}
		if len(raw) > 0 {
			mapping, err := r.Inline(raw, id, m.colormaps, false)
			switch {
			case err == nil:
				a.Colormap = mapping
			case colormap.IsUnresolvedReference(err):
				return fmt.Errorf("item: %s: %w", id, err)
			case errors.Is(err, domain.ErrMissingTexture):
				m.log.Warn("dropping unresolved item colormap", "id", id.String())
			default:
				m.log.Error("skipping malformed item appearance", "id", id.String(), "error", &domain.DecodeError{Category: domain.CategoryItem, ID: id, Err: err})
				continue
			}
		}
		for _, target := range a.Targets.Or(id) {
			m.reg.Register(target, a)
		}
	}
	return nil
}

// Apply installs appearances on the host items that exist. The registry is
// emptied afterwards; the host now owns the installed values.
func (m *Manager) Apply(context.Context) error {
	ids := m.reg.Keys()
	slices.SortFunc(ids, domain.ResourceID.Compare)
	n, err := override.InstallAll(m.applier, ids, func(id domain.ResourceID) func(Appearance) Appearance {
		a, _ := m.reg.Get(id)
		return a.Apply
	})
	m.applied = n
	m.reg.Clear()
	return err
}

// Applied returns the number of items changed by the last Apply.
func (m *Manager) Applied() int { return m.applied }

// Get returns the appearance registered for an item between Process and Apply.
func (m *Manager) Get(id domain.ResourceID) (Appearance, bool) { return m.reg.Get(id) }
