package colormap

import (
	"errors"
	"fmt"

	"tintcore/internal/logging"
	"tintcore/internal/texture"
	"tintcore/pkg/domain"
)

// Resolver binds mappings to images from one texture index and records which
// groups were consumed.
type Resolver struct {
	Index *texture.Index
	Used  texture.Used
	Log   logging.Logger
}

// NewResolver returns a resolver with a fresh used set.
func NewResolver(ix *texture.Index, log logging.Logger) *Resolver {
	return &Resolver{Index: ix, Used: texture.Used{}, Log: logging.OrNoop(log)}
}

// Resolve binds m against the index, using target as the default texture id.
// Mappings that already hold a texture are left untouched. A zero-dimension
// image is always an error; a missing texture is an error only when strict.
func Resolve(m Mapping, target domain.ResourceID, ix *texture.Index, used texture.Used, strict bool) error {
	r := &Resolver{Index: ix, Used: used, Log: logging.Noop()}
	return r.Resolve(m, target, strict)
}

// Resolve binds m. See the package-level Resolve.
func (r *Resolver) Resolve(m Mapping, target domain.ResourceID, strict bool) error {
	switch v := m.(type) {
	case *Colormap:
		return r.resolveSimple(v, target, strict)
	case *Compound:
		return r.resolveCompound(v, target, strict)
	}
	return nil
}

func (r *Resolver) resolveSimple(c *Colormap, target domain.ResourceID, strict bool) error {
	if c.HasTexture() {
		return nil
	}
	texID := c.TargetTexture(target)
	var img *domain.RasterImage
	if g, ok := r.Index.Group(texID); ok {
		img, _ = g.Default()
	}
	return r.accept(c, img, texID, strict)
}

func (r *Resolver) accept(c *Colormap, img *domain.RasterImage, texID domain.ResourceID, strict bool) error {
	if c.HasTexture() {
		return nil
	}
	if img != nil {
		r.mark(texID)
		if img.Empty() {
			return domain.NewResolutionError(texID, texID, domain.ErrZeroDimension)
		}
		c.Bind(img)
		return nil
	}
	if !c.Texture.IsZero() {
		r.logger().Error("could not resolve explicit colormap texture", "texture", c.Texture.String())
	}
	if strict {
		return domain.NewResolutionError(texID, texID, domain.ErrMissingTexture)
	}
	return nil
}

// resolveCompound walks channels in ascending order. For channel 0, or when
// the compound or group has a single entry, the group's default image is
// tried first as a whole-channel fallback; that attempt never fails.
func (r *Resolver) resolveCompound(c *Compound, target domain.ResourceID, strict bool) error {
	for _, i := range c.Channels() {
		inner, ok := c.channels[i].(*Colormap)
		if !ok || inner.HasTexture() {
			continue
		}
		texID := inner.TargetTexture(target)
		g, found := r.Index.Group(texID)
		if !found {
			if strict {
				return &domain.ResolutionError{ID: target, Expected: texID.WithSuffix(i), Channel: i, Err: domain.ErrMissingTexture}
			}
			continue
		}
		if c.Len() == 1 || g.Len() == 1 || i == 0 {
			if img, ok := g.Default(); ok && !img.Empty() {
				r.mark(texID)
				inner.Bind(img)
			}
		}
		img, ok := g.Get(i)
		// Without a <id>_0 texture the default is channel 0's only
		// candidate, so a zero-dimension default is reported here even
		// though the first attempt skipped it.
		if !ok && i == 0 {
			img, _ = g.Default()
		}
		if err := r.accept(inner, img, texID, strict); err != nil {
			return &domain.ResolutionError{ID: target, Expected: texID.WithSuffix(i), Channel: i, Err: err}
		}
	}
	return nil
}

func (r *Resolver) mark(id domain.ResourceID) {
	if r.Used != nil {
		r.Used.Mark(id)
	}
}

func (r *Resolver) logger() logging.Logger { return logging.OrNoop(r.Log) }

// Getter looks up linked mappings by reference.
type Getter interface {
	Get(ref Ref) (Mapping, bool)
}

// Link replaces References in m, including compound channels, with the
// mappings g returns. An unknown reference fails with ErrUnresolvedReference.
func Link(m Mapping, g Getter) (Mapping, error) {
	switch v := m.(type) {
	case Reference:
		if g == nil {
			return nil, unresolved(v.Ref)
		}
		target, ok := g.Get(v.Ref)
		if !ok {
			return nil, unresolved(v.Ref)
		}
		return target, nil
	case *Compound:
		for _, i := range v.Channels() {
			linked, err := Link(v.channels[i], g)
			if err != nil {
				return nil, fmt.Errorf("channel %d: %w", i, err)
			}
			v.channels[i] = linked
		}
		return v, nil
	}
	return m, nil
}

func unresolved(ref Ref) error {
	return domain.NewResolutionError(ref.ID(), domain.ResourceID{}, fmt.Errorf("colormap %s: %w", ref.ID(), domain.ErrUnresolvedReference))
}

// IsUnresolvedReference reports whether err stems from a dangling reference.
func IsUnresolvedReference(err error) bool {
	return errors.Is(err, domain.ErrUnresolvedReference)
}
