// Package expr implements scalar value providers evaluated against an
// optional-facet Context: constants, named builtins and a small formula
// language. Colormaps sample with them and particles tick with them.
package expr

import (
	"math"
	"math/rand/v2"
	"sort"
)

// Provider computes a scalar from a Context. The Uses methods advertise
// which facets are read so callers can skip building the rest.
type Provider interface {
	Evaluate(ctx *Context) float64
	UsesState() bool
	UsesPos() bool
	UsesBiome() bool
	UsesItem() bool
}

// Facet is a bit set of context facets.
type Facet uint8

const (
	FacetState Facet = 1 << iota
	FacetPos
	FacetBiome
	FacetItem
	FacetParticle
)

// Const is a fixed value.
type Const float64

func (c Const) Evaluate(*Context) float64 { return float64(c) }
func (Const) UsesState() bool             { return false }
func (Const) UsesPos() bool               { return false }
func (Const) UsesBiome() bool             { return false }
func (Const) UsesItem() bool              { return false }

// Builtin is a named provider registered at init.
type Builtin struct {
	name   string
	facets Facet
	fn     func(*Context) float64
}

// Name returns the identifier the builtin is decoded from.
func (b *Builtin) Name() string { return b.name }

func (b *Builtin) Evaluate(ctx *Context) float64 {
	if ctx == nil {
		ctx = &Context{}
	}
	return b.fn(ctx)
}

func (b *Builtin) UsesState() bool { return b.facets&FacetState != 0 }
func (b *Builtin) UsesPos() bool   { return b.facets&FacetPos != 0 }
func (b *Builtin) UsesBiome() bool { return b.facets&FacetBiome != 0 }
func (b *Builtin) UsesItem() bool  { return b.facets&FacetItem != 0 }

const dayLength = 24000

var (
	Zero = register("zero", 0, func(*Context) float64 { return 0 })
	One  = register("one", 0, func(*Context) float64 { return 1 })

	// DayTime is inverted so sunset colormaps read left to right.
	DayTime = register("day_time", 0, func(c *Context) float64 {
		t := ((c.DayTime % dayLength) + dayLength) % dayLength
		return 1 - float64(t)/dayLength
	})

	Temperature = register("temperature", FacetBiome, func(c *Context) float64 {
		if c.Biome == nil {
			return 0
		}
		return c.Biome.Temperature
	})

	LegacyTemperature = register("legacy_temperature", FacetBiome|FacetPos, func(c *Context) float64 {
		if c.Biome == nil {
			return 0
		}
		return heightAdjustedTemperature(c.Biome.BaseTemperature, c.Pos, c.seaLevel())
	})

	Downfall = register("downfall", FacetBiome, func(c *Context) float64 {
		if c.Biome == nil {
			return 0
		}
		return c.Biome.Downfall
	})

	BiomeID = register("biome_id", FacetBiome, func(c *Context) float64 {
		if c.Biome == nil || c.Biomes == nil {
			return 0
		}
		return 1 - c.Biomes.Index(c.Biome.ID)
	})

	YLevel = register("y_level", FacetPos, func(c *Context) float64 {
		if c.Pos == nil {
			return 64
		}
		v := 4 * (positionRandom(*c.Pos) - 0.5)
		return 1 - (float64(c.Pos.Y)+64+v)/256
	})

	ItemDamage = register("item_damage", FacetItem, func(c *Context) float64 {
		if c.Item == nil {
			return 0
		}
		if c.Item.MaxDamage <= 0 {
			return 1
		}
		return 1 - float64(c.Item.Damage)/float64(c.Item.MaxDamage)
	})
)

var builtins map[string]*Builtin

func register(name string, facets Facet, fn func(*Context) float64) *Builtin {
	if builtins == nil {
		builtins = make(map[string]*Builtin)
	}
	b := &Builtin{name: name, facets: facets, fn: fn}
	builtins[name] = b
	return b
}

// Lookup returns the builtin registered under name.
func Lookup(name string) (*Builtin, bool) {
	b, ok := builtins[name]
	return b, ok
}

// BuiltinNames lists registered builtin identifiers, sorted.
func BuiltinNames() []string {
	out := make([]string, 0, len(builtins))
	for k := range builtins {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func heightAdjustedTemperature(base float64, pos *BlockPos, seaLevel int) float64 {
	if pos == nil {
		return base
	}
	threshold := seaLevel + 17
	if pos.Y <= threshold {
		return base
	}
	return base - float64(pos.Y-threshold)*0.05/40
}

func positionRandom(p BlockPos) float64 {
	seed := uint64(int64(p.X)*3129871) ^ uint64(int64(p.Z)*116129781) ^ uint64(int64(p.Y))
	r := rand.New(rand.NewPCG(seed, seed*0x9E3779B97F4A7C15))
	return r.Float64()
}

// StateFraction reads an integer block-state property and divides it by Max.
// Missing state evaluates to 0.
type StateFraction struct {
	Property string
	Max      int
}

func (s StateFraction) Evaluate(ctx *Context) float64 {
	if ctx == nil || ctx.State == nil || s.Max == 0 {
		return 0
	}
	return math.Min(1, float64(ctx.State.Property(s.Property))/float64(s.Max))
}

func (StateFraction) UsesState() bool { return true }
func (StateFraction) UsesPos() bool   { return false }
func (StateFraction) UsesBiome() bool { return false }
func (StateFraction) UsesItem() bool  { return false }
