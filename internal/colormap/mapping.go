// Package colormap implements color mappings and the engine that binds them
// to scanned textures.
package colormap

import (
	"math"
	"slices"

	"tintcore/internal/expr"
	"tintcore/pkg/domain"
)

// White is returned for tint channels a mapping does not serve.
const White uint32 = 0xFFFFFFFF

// Mapping produces a packed ARGB color for a context and tint index.
// Texture-sampling mappings are only usable once Resolved reports true.
type Mapping interface {
	Color(ctx *expr.Context, tint int) uint32
	Resolved() bool
}

// Colormap samples a bound image at coordinates computed by two providers.
type Colormap struct {
	XAxis      expr.Provider
	YAxis      expr.Provider
	Triangular bool
	// Texture overrides the texture id looked up during resolution.
	Texture domain.ResourceID
	// DefaultColor is returned when the context lacks a facet the axes read.
	DefaultColor *uint32

	image *domain.RasterImage
}

// NewColormap builds an unbound colormap. Nil providers default to
// temperature and downfall.
func NewColormap(x, y expr.Provider, triangular bool) *Colormap {
	if x == nil {
		x = expr.Temperature
	}
	if y == nil {
		y = expr.Downfall
	}
	return &Colormap{XAxis: x, YAxis: y, Triangular: triangular}
}

// DefTriangle is the vanilla grass/foliage layout.
func DefTriangle() *Colormap { return NewColormap(expr.Temperature, expr.Downfall, true) }

// DefSquare samples temperature against downfall without the triangle fold.
func DefSquare() *Colormap { return NewColormap(expr.Temperature, expr.Downfall, false) }

// FixedSampler always reads the same corner pixel.
func FixedSampler() *Colormap { return NewColormap(expr.Const(1), expr.Const(1), false) }

// GridSampler indexes rows by biome and columns by height.
func GridSampler() *Colormap { return NewColormap(expr.BiomeID, expr.YLevel, false) }

// HasTexture reports whether an image has been bound.
func (c *Colormap) HasTexture() bool { return c.image != nil }

// Image returns the bound image, nil when unresolved.
func (c *Colormap) Image() *domain.RasterImage { return c.image }

// Resolved implements Mapping.
func (c *Colormap) Resolved() bool { return c.image != nil }

// TargetTexture returns the explicit texture id or fallback.
func (c *Colormap) TargetTexture(fallback domain.ResourceID) domain.ResourceID {
	if !c.Texture.IsZero() {
		return c.Texture
	}
	return fallback
}

// Bind attaches img unless one is already bound.
func (c *Colormap) Bind(img *domain.RasterImage) bool {
	if c.image != nil {
		return false
	}
	c.image = img
	return true
}

// Color implements Mapping.
func (c *Colormap) Color(ctx *expr.Context, _ int) uint32 {
	if c.image == nil {
		return White
	}
	if c.DefaultColor != nil && c.missingFacet(ctx) {
		return *c.DefaultColor
	}
	return c.Sample(c.XAxis.Evaluate(ctx), c.YAxis.Evaluate(ctx))
}

func (c *Colormap) missingFacet(ctx *expr.Context) bool {
	if ctx == nil {
		return true
	}
	for _, p := range []expr.Provider{c.XAxis, c.YAxis} {
		if (p.UsesBiome() && ctx.Biome == nil) || (p.UsesPos() && ctx.Pos == nil) ||
			(p.UsesState() && ctx.State == nil) || (p.UsesItem() && ctx.Item == nil) {
			return true
		}
	}
	return false
}

// Sample reads the bound image at normalized coordinates. Both axes are
// clamped to [0, 1]; x=1 maps to column 0 and y=1 maps to row 0.
func (c *Colormap) Sample(x, y float64) uint32 {
	img := c.image
	if img.Empty() {
		return White
	}
	x = clamp01(x)
	y = clamp01(y)
	if c.Triangular {
		y *= x
	}
	col := int((1 - x) * float64(img.Width-1))
	row := int((1 - y) * float64(img.Height-1))
	return img.At(col, row)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// Compound routes each tint index to its own inner mapping.
type Compound struct {
	channels map[int]Mapping
}

// NewCompound builds a compound from channel -> mapping.
func NewCompound(channels map[int]Mapping) *Compound {
	c := &Compound{channels: make(map[int]Mapping, len(channels))}
	for i, m := range channels {
		c.channels[i] = m
	}
	return c
}

// DefaultCompound creates one default sampler per channel.
func DefaultCompound(channels []int, triangular bool) *Compound {
	c := &Compound{channels: make(map[int]Mapping, len(channels))}
	for _, i := range channels {
		c.channels[i] = NewColormap(expr.Temperature, expr.Downfall, triangular)
	}
	return c
}

// Channels lists declared tint indices ascending.
func (c *Compound) Channels() []int {
	out := make([]int, 0, len(c.channels))
	for i := range c.channels {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// Channel returns the inner mapping for tint index i.
func (c *Compound) Channel(i int) (Mapping, bool) {
	m, ok := c.channels[i]
	return m, ok
}

// Len is the number of declared channels.
func (c *Compound) Len() int { return len(c.channels) }

// Color implements Mapping.
func (c *Compound) Color(ctx *expr.Context, tint int) uint32 {
	m, ok := c.channels[tint]
	if !ok {
		return White
	}
	return m.Color(ctx, tint)
}

// Resolved reports whether every channel is resolved.
func (c *Compound) Resolved() bool {
	for _, m := range c.channels {
		if !m.Resolved() {
			return false
		}
	}
	return len(c.channels) > 0
}

// Prune drops unresolved channels and reports how many remain.
func (c *Compound) Prune() int {
	for i, m := range c.channels {
		if !m.Resolved() {
			delete(c.channels, i)
		}
	}
	return len(c.channels)
}

// Fixed is a constant color.
type Fixed uint32

func (f Fixed) Color(*expr.Context, int) uint32 { return uint32(f) }
func (Fixed) Resolved() bool                    { return true }
