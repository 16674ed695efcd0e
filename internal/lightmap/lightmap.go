// Package lightmap decodes lightmap documents. Lightmaps have no host target
// of their own; dimension effects reference them by id.
package lightmap

import (
	"context"
	"encoding/json"
	"fmt"

	"tintcore/internal/colormap"
	"tintcore/internal/expr"
	"tintcore/internal/logging"
	"tintcore/internal/registry"
	"tintcore/internal/resource"
	"tintcore/internal/texture"
	"tintcore/pkg/domain"
)

// Root is the resource directory for lightmaps.
const Root = "lightmaps"

const maxLight = 15

// Lightmap maps sky and block light levels to a color. Columns of the image
// are block light and rows are sky light, both from 0 at the top-left.
type Lightmap struct {
	ID domain.ResourceID
	// Gamma is handed to the host untouched; zero keeps the player setting.
	Gamma float64
	image *colormap.Colormap
}

type lightmapDoc struct {
	TexturePath string   `json:"texture_path"`
	Gamma       *float64 `json:"gamma"`
}

// Decode parses a lightmap document. The texture is bound later.
func Decode(id domain.ResourceID, raw []byte) (*Lightmap, error) {
	var doc lightmapDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	l := &Lightmap{ID: id, image: colormap.NewColormap(expr.Zero, expr.Zero, false)}
	if doc.TexturePath != "" {
		tex, err := domain.ParseResourceID(doc.TexturePath)
		if err != nil {
			return nil, fmt.Errorf("texture_path: %w", err)
		}
		l.image.Texture = tex
	}
	if doc.Gamma != nil {
		l.Gamma = *doc.Gamma
	}
	return l, nil
}

// Resolved reports whether a texture is bound.
func (l *Lightmap) Resolved() bool { return l.image.Resolved() }

// Color samples the lightmap for the given light levels, clamped to 0..15.
func (l *Lightmap) Color(sky, block int) uint32 {
	if !l.Resolved() {
		return colormap.White
	}
	x := 1 - float64(clampLevel(block))/maxLight
	y := 1 - float64(clampLevel(sky))/maxLight
	return l.image.Sample(x, y)
}

func clampLevel(v int) int {
	return max(0, min(maxLight, v))
}

// Manager is the lightmaps reloader.
type Manager struct {
	reg     *registry.Registry[*Lightmap]
	log     logging.Logger
	applied int
}

// NewManager returns an empty lightmap manager.
func NewManager(log logging.Logger) *Manager {
	log = logging.With(logging.OrNoop(log), "category", string(domain.CategoryLightmap))
	return &Manager{reg: registry.New[*Lightmap](domain.CategoryLightmap, log), log: log}
}

func (m *Manager) Name() string { return string(domain.CategoryLightmap) }

func (m *Manager) Prepare(ctx context.Context, src resource.Source) (resource.Bundle, error) {
	return resource.ScanBundle(ctx, src, Root)
}

func (m *Manager) Reset(context.Context) error {
	m.reg.Reset()
	m.applied = 0
	return nil
}

// Process binds every lightmap strictly; a document without its texture
// fails the category. An un-suffixed lightmap texture with
// no document becomes a lightmap of the same id.
func (m *Manager) Process(_ context.Context, b resource.Bundle) error {
	r := colormap.NewResolver(texture.Build(b.Images), m.log)
	for _, id := range resource.SortedIDs(b.Documents) {
		l, err := Decode(id, b.Documents[id].Data)
		if err != nil {
			m.log.Error("skipping malformed lightmap", "id", id.String(), "error", &domain.DecodeError{Category: domain.CategoryLightmap, ID: id, Err: err})
			continue
		}
		if err := r.Resolve(l.image, id, true); err != nil {
			return fmt.Errorf("lightmap: %s: %w", id, err)
		}
		m.reg.Register(id, l)
	}
	for _, id := range r.Index.IDs() {
		if _, declared := b.Documents[id]; declared || r.Used.Has(id) {
			continue
		}
		if g, _ := r.Index.Group(id); g.Len() > 0 {
			if _, ok := g.Default(); !ok {
				continue
			}
		}
		l := &Lightmap{ID: id, image: colormap.NewColormap(expr.Zero, expr.Zero, false)}
		if err := r.Resolve(l.image, id, true); err != nil {
			return err
		}
		m.reg.Register(id, l)
	}
	return nil
}

func (m *Manager) Apply(context.Context) error {
	m.applied = m.reg.Len()
	return nil
}

// Applied returns the number of lightmaps registered by the last cycle.
func (m *Manager) Applied() int { return m.applied }

// Lookup returns a registered lightmap or ErrUnresolvedReference.
func (m *Manager) Lookup(id domain.ResourceID) (*Lightmap, error) { return m.reg.Lookup(id) }

// IDs lists registered lightmaps.
func (m *Manager) IDs() []domain.ResourceID { return m.reg.Keys() }
