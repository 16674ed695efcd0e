package colormap

import (
	"tintcore/internal/expr"
	"tintcore/internal/texture"
	"tintcore/pkg/domain"
)

// Implicit is a mapping created for a texture no document consumed.
type Implicit struct {
	Target  domain.ResourceID
	Texture domain.ResourceID
	Mapping Mapping
}

// Marker turns an orphan group into discrete-state mappings. It returns nil
// when the group does not carry its marker. Returned colormaps are unbound;
// the orphan pass binds them to the group's default image.
type Marker func(id domain.ResourceID, g *texture.Group) []Implicit

// DiscreteState builds a colormap that walks the x axis with an integer
// block-state property.
func DiscreteState(property string, max int) *Colormap {
	return NewColormap(expr.StateFraction{Property: property, Max: max}, expr.Zero, false)
}

// Orphans creates implicit mappings for every group neither used by the
// resolver nor declared. Marker output takes precedence; everything else
// receives a triangular DefaultCompound over the group's channels, resolved
// strictly. Declared ids never receive an implicit mapping.
func (r *Resolver) Orphans(declared map[domain.ResourceID]bool, markers ...Marker) ([]Implicit, error) {
	var out []Implicit
	for _, id := range r.Index.IDs() {
		if r.Used.Has(id) || declared[id] {
			continue
		}
		g, _ := r.Index.Group(id)
		if implicit, matched := r.expandMarkers(id, g, markers); matched {
			out = append(out, implicit...)
			continue
		}
		m := DefaultCompound(g.Channels(), true)
		if err := r.Resolve(m, id, true); err != nil {
			return out, err
		}
		out = append(out, Implicit{Target: id, Texture: id, Mapping: m})
	}
	return out, nil
}

func (r *Resolver) expandMarkers(id domain.ResourceID, g *texture.Group, markers []Marker) ([]Implicit, bool) {
	for _, mk := range markers {
		implicit := mk(id, g)
		if implicit == nil {
			continue
		}
		img, _ := g.Default()
		kept := implicit[:0]
		for _, im := range implicit {
			if c, ok := im.Mapping.(*Colormap); ok && !c.HasTexture() {
				if img == nil || img.Empty() {
					r.logger().Warn("orphan texture has no default image", "texture", id.String(), "target", im.Target.String())
					continue
				}
				c.Bind(img)
			}
			kept = append(kept, im)
		}
		r.mark(id)
		return kept, true
	}
	return nil, false
}
