// Package texture groups scanned raster images by base id and tint index.
package texture

import (
	"slices"

	"tintcore/pkg/domain"
)

// DefaultIndex keys an image that carries no "_<n>" suffix.
const DefaultIndex = -1

// Layer is the flat id -> image table produced by scanning one root.
type Layer map[domain.ResourceID]*domain.RasterImage

// Merge folds layers left to right; later layers win on collision. Callers
// pass compatibility roots first and the primary root last.
func Merge(layers ...Layer) Layer {
	out := make(Layer)
	for _, l := range layers {
		for id, img := range l {
			out[id] = img
		}
	}
	return out
}

// Group holds every image found for one base id.
type Group struct {
	ID     domain.ResourceID
	images map[int]*domain.RasterImage
}

// NewGroup returns an empty group for id.
func NewGroup(id domain.ResourceID) *Group {
	return &Group{ID: id, images: make(map[int]*domain.RasterImage)}
}

// Put stores img at tint index i.
func (g *Group) Put(i int, img *domain.RasterImage) { g.images[i] = img }

// Get returns the image at tint index i.
func (g *Group) Get(i int) (*domain.RasterImage, bool) {
	img, ok := g.images[i]
	return img, ok
}

// Default returns the un-suffixed image.
func (g *Group) Default() (*domain.RasterImage, bool) { return g.Get(DefaultIndex) }

// Len is the number of images in the group.
func (g *Group) Len() int { return len(g.images) }

// Indices returns the stored indices ascending, DefaultIndex first if present.
func (g *Group) Indices() []int {
	out := make([]int, 0, len(g.images))
	for i := range g.images {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// Channels returns the tint channels the group can serve. The default
// image serves channel 0.
func (g *Group) Channels() []int {
	seen := make(map[int]struct{}, len(g.images))
	out := make([]int, 0, len(g.images))
	for i := range g.images {
		if i == DefaultIndex {
			i = 0
		}
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// Index maps base ids to their groups.
type Index struct {
	groups map[domain.ResourceID]*Group
}

// Build groups a merged layer by base id.
func Build(images Layer) *Index {
	ix := &Index{groups: make(map[domain.ResourceID]*Group)}
	for id, img := range images {
		base, i, ok := id.SplitSuffix()
		if !ok {
			base, i = id, DefaultIndex
		}
		g, exists := ix.groups[base]
		if !exists {
			g = NewGroup(base)
			ix.groups[base] = g
		}
		g.Put(i, img)
	}
	return ix
}

// Group returns the group for a base id.
func (ix *Index) Group(id domain.ResourceID) (*Group, bool) {
	if ix == nil {
		return nil, false
	}
	g, ok := ix.groups[id]
	return g, ok
}

// IDs lists base ids in stable order.
func (ix *Index) IDs() []domain.ResourceID {
	if ix == nil {
		return nil
	}
	out := make([]domain.ResourceID, 0, len(ix.groups))
	for id := range ix.groups {
		out = append(out, id)
	}
	slices.SortFunc(out, domain.ResourceID.Compare)
	return out
}

// Len is the number of groups.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.groups)
}

// Used records which groups a resolution pass consumed.
type Used map[domain.ResourceID]struct{}

// Mark flags id as consumed.
func (u Used) Mark(id domain.ResourceID) { u[id] = struct{}{} }

// Has reports whether id was consumed.
func (u Used) Has(id domain.ResourceID) bool {
	_, ok := u[id]
	return ok
}
