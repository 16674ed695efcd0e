package blockprops

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"tintcore/internal/colormap"
	"tintcore/internal/expr"
	"tintcore/internal/legacy"
	"tintcore/internal/logging"
	"tintcore/internal/override"
	"tintcore/internal/registry"
	"tintcore/internal/resource"
	"tintcore/internal/texture"
	"tintcore/pkg/domain"
)

// Root is the resource directory for block properties.
const Root = "block_properties"

// colorPropertiesPath locates the legacy color.properties under optifine/.
const (
	optifineRoot        = "optifine"
	colorPropertiesPath = "color"
)

// Resources is the prepared input of one cycle.
type Resources struct {
	Documents map[domain.ResourceID]domain.Document
	// Legacy holds OptiFine and Colormatic colormap .properties files,
	// keyed by their remapped id.
	Legacy          map[domain.ResourceID]domain.Document
	ColorProperties []domain.Document
	Images          texture.Layer
}

// Manager is the block properties reloader.
type Manager struct {
	reg       *registry.Registry[Modifier]
	applier   *override.Applier[Properties]
	colormaps colormap.Getter
	log       logging.Logger
	applied   int
}

// NewManager wires the manager to the host block registry. colormaps
// resolves tint references and is normally the colormap category.
func NewManager(targets domain.Targets[Properties], colormaps colormap.Getter, log logging.Logger) *Manager {
	log = logging.With(logging.OrNoop(log), "category", string(domain.CategoryBlockProperties))
	return &Manager{
		reg:       registry.New[Modifier](domain.CategoryBlockProperties, log),
		applier:   override.NewApplier(domain.CategoryBlockProperties, targets, log),
		colormaps: colormaps,
		log:       log,
	}
}

func (m *Manager) Name() string { return string(domain.CategoryBlockProperties) }

// Prepare reads native documents, legacy properties and textures. Legacy
// textures are merged first so native ones win.
func (m *Manager) Prepare(ctx context.Context, src resource.Source) (Resources, error) {
	var res Resources
	var err error
	if res.Documents, err = src.Documents(ctx, Root); err != nil {
		return Resources{}, err
	}
	if res.Legacy, err = resource.CompatFiles(ctx, src, resource.ExtProperties); err != nil {
		return Resources{}, err
	}
	files, err := src.Files(ctx, optifineRoot, resource.ExtProperties)
	if err != nil {
		return Resources{}, err
	}
	for _, id := range resource.SortedIDs(files) {
		if id.Path == colorPropertiesPath {
			res.ColorProperties = append(res.ColorProperties, files[id])
		}
	}
	compat, err := resource.CompatImages(ctx, src)
	if err != nil {
		return Resources{}, err
	}
	primary, err := src.Images(ctx, Root)
	if err != nil {
		return Resources{}, err
	}
	res.Images = texture.Merge(compat, primary)
	return res, nil
}

// Reset restores every block touched by the last Apply.
func (m *Manager) Reset(ctx context.Context) error {
	err := m.applier.Restore(ctx)
	m.reg.Reset()
	m.applied = 0
	return err
}

// Process decodes records and binds their tints against the merged texture
// index. Converted legacy documents are shadowed by native documents of the
// same id. Textures no record used become implicit tint records.
func (m *Manager) Process(_ context.Context, res Resources) error {
	r := colormap.NewResolver(texture.Build(res.Images), m.log)
	docs := m.documents(res)
	declared := make(map[domain.ResourceID]bool, len(docs))

	for _, id := range resource.SortedIDs(docs) {
		declared[id] = true
		mod, err := m.decode(r, id, docs[id].Data)
		if err != nil {
			if errors.Is(err, domain.ErrUnresolvedReference) {
				return fmt.Errorf("blockprops: %s: %w", id, err)
			}
			m.log.Error("skipping malformed block properties", "id", id.String(), "error", &domain.DecodeError{Category: domain.CategoryBlockProperties, ID: id, Err: err})
			continue
		}
		for _, target := range mod.Targets.Or(id) {
			m.reg.Register(target, mod)
		}
	}

	specials := m.specials(res.ColorProperties)
	implicit, err := r.Orphans(declared, specialMarker(specials), stemMarker, redstoneMarker)
	for _, im := range implicit {
		if _, exists := m.reg.Get(im.Target); exists {
			m.log.Debug("keeping declared block properties over implicit tint", "target", im.Target.String(), "texture", im.Texture.String())
			continue
		}
		m.reg.Register(im.Target, Modifier{Tint: im.Mapping})
	}
	return err
}

func (m *Manager) documents(res Resources) map[domain.ResourceID]domain.Document {
	docs := make(map[domain.ResourceID]domain.Document, len(res.Documents)+len(res.Legacy))
	for _, id := range resource.SortedIDs(res.Legacy) {
		data, err := legacy.ConvertColormapProperties(id, res.Legacy[id].Data)
		if err != nil {
			m.log.Error("skipping legacy colormap properties", "id", id.String(), "error", &domain.DecodeError{Category: domain.CategoryBlockProperties, ID: id, Err: err})
			continue
		}
		docs[id] = domain.Document{ID: id, Source: res.Legacy[id].Source, Data: data}
	}
	for id, doc := range res.Documents {
		docs[id] = doc
	}
	return docs
}

func (m *Manager) specials(files []domain.Document) map[domain.ResourceID][]domain.ResourceID {
	out := make(map[domain.ResourceID][]domain.ResourceID)
	for _, f := range files {
		parsed, err := legacy.ParseColorProperties(f.Data)
		if err != nil {
			m.log.Error("skipping color.properties", "source", f.Source, "error", err)
			continue
		}
		for tex, blocks := range parsed {
			out[tex] = append(out[tex], blocks...)
		}
	}
	return out
}

func (m *Manager) decode(r *colormap.Resolver, id domain.ResourceID, raw []byte) (Modifier, error) {
	mod, tint, err := decodeDoc(raw)
	if err != nil || len(tint) == 0 {
		return mod, err
	}
	mapping, err := r.Inline(tint, id, m.colormaps, false)
	switch {
	case err == nil:
		mod.Tint = mapping
	case colormap.IsUnresolvedReference(err):
		return Modifier{}, err
	case errors.Is(err, domain.ErrMissingTexture):
		m.log.Warn("dropping unresolved tint", "id", id.String())
	default:
		return Modifier{}, err
	}
	return mod, nil
}

// Apply installs records on the host blocks that exist. The registry is
// emptied afterwards; the host now owns the installed values.
func (m *Manager) Apply(context.Context) error {
	ids := m.reg.Keys()
	slices.SortFunc(ids, domain.ResourceID.Compare)
	n, err := override.InstallAll(m.applier, ids, func(id domain.ResourceID) func(Properties) Properties {
		mod, _ := m.reg.Get(id)
		return mod.Apply
	})
	m.applied = n
	m.reg.Clear()
	return err
}

// Applied returns the number of blocks changed by the last Apply.
func (m *Manager) Applied() int { return m.applied }

// Get returns the record registered for a block between Process and Apply.
func (m *Manager) Get(id domain.ResourceID) (Modifier, bool) { return m.reg.Get(id) }

// specialMarker tints every block color.properties lists for a texture with
// the vanilla triangle.
func specialMarker(specials map[domain.ResourceID][]domain.ResourceID) colormap.Marker {
	return func(id domain.ResourceID, _ *texture.Group) []colormap.Implicit {
		blocks, ok := specials[id]
		if !ok {
			return nil
		}
		out := make([]colormap.Implicit, 0, len(blocks))
		for _, b := range blocks {
			out = append(out, colormap.Implicit{Target: b, Texture: id, Mapping: colormap.DefTriangle()})
		}
		return out
	}
}

// stemMarker maps a stem texture to stems by age and to attached stems by
// its last column. A texture naming only one crop tints only that crop.
func stemMarker(id domain.ResourceID, _ *texture.Group) []colormap.Implicit {
	if !strings.Contains(id.Path, "stem") {
		return nil
	}
	stem := colormap.DiscreteState("age", 7)
	attached := colormap.NewColormap(expr.One, expr.Zero, false)
	var out []colormap.Implicit
	add := func(crop string) {
		out = append(out,
			colormap.Implicit{Target: domain.NewResourceID("", crop+"_stem"), Texture: id, Mapping: stem},
			colormap.Implicit{Target: domain.NewResourceID("", "attached_"+crop+"_stem"), Texture: id, Mapping: attached},
		)
	}
	if !strings.Contains(id.Path, "melon") {
		add("pumpkin")
	}
	if !strings.Contains(id.Path, "pumpkin") {
		add("melon")
	}
	return out
}

func redstoneMarker(id domain.ResourceID, _ *texture.Group) []colormap.Implicit {
	if id.Path != "redstone_wire" {
		return nil
	}
	return []colormap.Implicit{{Target: id, Texture: id, Mapping: colormap.DiscreteState("power", 15)}}
}
