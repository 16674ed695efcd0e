package dimension

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"tintcore/internal/colormap"
	"tintcore/internal/expr"
	"tintcore/internal/lightmap"
	"tintcore/internal/logging"
	"tintcore/internal/override"
	"tintcore/internal/registry"
	"tintcore/internal/resource"
	"tintcore/internal/texture"
	"tintcore/pkg/domain"
)

// Root is the resource directory for dimension effects.
const Root = "dimension_effects"

const (
	fogSuffix = "_fog"
	skySuffix = "_sky"
)

// Lightmaps resolves lightmap references.
type Lightmaps interface {
	Lookup(id domain.ResourceID) (*lightmap.Lightmap, error)
}

// Manager is the dimension effects reloader. Modifiers aimed at the same
// dimension are merged in document order.
type Manager struct {
	reg       *registry.Registry[Modifier]
	applier   *override.Applier[Effects]
	colormaps colormap.Getter
	lightmaps Lightmaps
	log       logging.Logger
	applied   int
}

// NewManager wires the manager to the host dimension registry and to the
// colormap and lightmap categories it references.
func NewManager(targets domain.Targets[Effects], colormaps colormap.Getter, lightmaps Lightmaps, log logging.Logger) *Manager {
	log = logging.With(logging.OrNoop(log), "category", string(domain.CategoryDimensionEffects))
	return &Manager{
		reg:       registry.New[Modifier](domain.CategoryDimensionEffects, log),
		applier:   override.NewApplier(domain.CategoryDimensionEffects, targets, log),
		colormaps: colormaps,
		lightmaps: lightmaps,
		log:       log,
	}
}

func (m *Manager) Name() string { return string(domain.CategoryDimensionEffects) }

func (m *Manager) Prepare(ctx context.Context, src resource.Source) (resource.Bundle, error) {
	return resource.ScanBundle(ctx, src, Root)
}

// Reset restores every dimension touched by the last Apply.
func (m *Manager) Reset(ctx context.Context) error {
	err := m.applier.Restore(ctx)
	m.reg.Reset()
	m.applied = 0
	return err
}

// Process decodes modifiers and binds their fog and sky colormaps against
// the textures of this category. A dangling colormap or lightmap reference
// fails the category. Unreferenced "<dimension>_fog" and "<dimension>_sky"
// textures become day-time by temperature colormaps for that dimension,
// unless a document already set that field.
func (m *Manager) Process(_ context.Context, b resource.Bundle) error {
	r := colormap.NewResolver(texture.Build(b.Images), m.log)
	merged := make(map[domain.ResourceID]Modifier)
	var order []domain.ResourceID
	add := func(target domain.ResourceID, mod Modifier, under bool) {
		prev, seen := merged[target]
		if !seen {
			order = append(order, target)
		}
		if under {
			merged[target] = mod.Merge(prev)
			return
		}
		merged[target] = prev.Merge(mod)
	}

	for _, id := range resource.SortedIDs(b.Documents) {
		mod, err := m.decode(r, id, b.Documents[id].Data)
		if err != nil {
			if errors.Is(err, domain.ErrUnresolvedReference) {
				return fmt.Errorf("dimension: %s: %w", id, err)
			}
			m.log.Error("skipping malformed dimension effects", "id", id.String(), "error", &domain.DecodeError{Category: domain.CategoryDimensionEffects, ID: id, Err: err})
			continue
		}
		for _, target := range mod.Targets.Or(id) {
			add(target, mod, false)
		}
	}

	// Implicit fog and sky colormaps sit beneath document fields.
	implicit, err := r.Orphans(nil, m.skyAndFog)
	if err != nil {
		return err
	}
	for _, im := range implicit {
		if strings.HasSuffix(im.Texture.Path, fogSuffix) {
			add(im.Target, Modifier{FogColor: im.Mapping}, true)
		} else {
			add(im.Target, Modifier{SkyColor: im.Mapping}, true)
		}
	}
	for _, target := range order {
		mod := merged[target]
		mod.Targets = domain.TargetSet{target}
		m.reg.Register(target, mod)
	}
	return nil
}

func (m *Manager) decode(r *colormap.Resolver, id domain.ResourceID, raw []byte) (Modifier, error) {
	doc, sky, err := decodeDoc(raw)
	if err != nil {
		return Modifier{}, err
	}
	mod := Modifier{
		CloudLevel:           doc.CloudLevel,
		HasGround:            doc.HasGround,
		SkyType:              sky,
		ForceBrightLightmap:  doc.ForceBrightLightmap,
		ConstantAmbientLight: doc.ConstantAmbientLight,
		Targets:              doc.Targets,
	}
	if mod.FogColor, err = m.inline(r, id, doc.FogColormap, fogSuffix); err != nil {
		return Modifier{}, err
	}
	if mod.SkyColor, err = m.inline(r, id, doc.SkyColormap, skySuffix); err != nil {
		return Modifier{}, err
	}
	if doc.Lightmap != nil {
		if m.lightmaps == nil {
			return Modifier{}, fmt.Errorf("lightmap %s: %w", doc.Lightmap, domain.ErrUnresolvedReference)
		}
		if mod.Lightmap, err = m.lightmaps.Lookup(*doc.Lightmap); err != nil {
			return Modifier{}, err
		}
	}
	return mod, nil
}

// inline resolves an embedded colormap non-strictly. A colormap left without
// a texture is dropped from the record rather than failing it.
func (m *Manager) inline(r *colormap.Resolver, id domain.ResourceID, raw []byte, suffix string) (colormap.Mapping, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	mapping, err := r.Inline(raw, id.WithPath(id.Path+suffix), m.colormaps, false)
	switch {
	case err == nil:
		return mapping, nil
	case colormap.IsUnresolvedReference(err):
		return nil, err
	case errors.Is(err, domain.ErrMissingTexture):
		m.log.Warn("dropping unresolved colormap", "id", id.String(), "field", strings.TrimPrefix(suffix, "_")+"_colormap")
		return nil, nil
	}
	return nil, err
}

func (m *Manager) skyAndFog(id domain.ResourceID, _ *texture.Group) []colormap.Implicit {
	for _, suffix := range []string{fogSuffix, skySuffix} {
		if base, ok := strings.CutSuffix(id.Path, suffix); ok && base != "" {
			return []colormap.Implicit{{
				Target:  id.WithPath(base),
				Texture: id,
				Mapping: colormap.NewColormap(expr.DayTime, expr.Temperature, false),
			}}
		}
	}
	m.log.Warn("unused dimension effects texture", "texture", id.String())
	return []colormap.Implicit{}
}

// Apply installs merged modifiers on the host dimensions that exist. The registry is
// emptied afterwards; the host now owns the installed values.
func (m *Manager) Apply(context.Context) error {
	ids := m.reg.Keys()
	slices.SortFunc(ids, domain.ResourceID.Compare)
	n, err := override.InstallAll(m.applier, ids, func(id domain.ResourceID) func(Effects) Effects {
		mod, _ := m.reg.Get(id)
		return mod.Apply
	})
	m.applied = n
	m.reg.Clear()
	return err
}

// Applied returns the number of dimensions changed by the last Apply.
func (m *Manager) Applied() int { return m.applied }

// Get returns the merged modifier for a dimension until Apply hands it to
// the host.
func (m *Manager) Get(id domain.ResourceID) (Modifier, bool) { return m.reg.Get(id) }
