package colormap

import (
	"tintcore/internal/expr"
	"tintcore/pkg/domain"
)

// BuiltinColor tags the biome-delegating colors every registry starts with.
type BuiltinColor uint8

const (
	UserDefined BuiltinColor = iota
	Grass
	Foliage
	Water
)

const (
	DefaultGrassColor   uint32 = 0xFF91BD59
	DefaultFoliageColor uint32 = 0xFF48B518
	DefaultWaterColor   uint32 = 0xFF000000
)

var builtinIDs = map[BuiltinColor]domain.ResourceID{
	Grass:   domain.NewResourceID("", "grass_color"),
	Foliage: domain.NewResourceID("", "foliage_color"),
	Water:   domain.NewResourceID("", "water_color"),
}

// Builtins lists the biome colors in registration order.
func Builtins() []BuiltinColor { return []BuiltinColor{Grass, Foliage, Water} }

// ID returns the registry id of a builtin color.
func (b BuiltinColor) ID() domain.ResourceID { return builtinIDs[b] }

func (b BuiltinColor) String() string {
	switch b {
	case Grass:
		return "grass"
	case Foliage:
		return "foliage"
	case Water:
		return "water"
	}
	return "user_defined"
}

// Color reads the biome color from the context, falling back to a constant.
func (b BuiltinColor) Color(ctx *expr.Context, _ int) uint32 {
	var biome *expr.Biome
	if ctx != nil && ctx.Pos != nil {
		biome = ctx.Biome
	}
	switch b {
	case Grass:
		if biome != nil {
			return biome.GrassColor
		}
		return DefaultGrassColor
	case Foliage:
		if biome != nil {
			return biome.FoliageColor
		}
		return DefaultFoliageColor
	case Water:
		if biome != nil {
			return biome.WaterColor
		}
		return DefaultWaterColor
	}
	return White
}

// Resolved implements Mapping.
func (BuiltinColor) Resolved() bool { return true }

// Ref names a mapping either by builtin tag or by user id.
type Ref struct {
	Builtin BuiltinColor
	id      domain.ResourceID
}

// RefFromID classifies id, recognizing builtin color ids.
func RefFromID(id domain.ResourceID) Ref {
	for b, bid := range builtinIDs {
		if bid == id {
			return Ref{Builtin: b, id: id}
		}
	}
	return Ref{Builtin: UserDefined, id: id}
}

// BuiltinRef returns the reference for a builtin color.
func BuiltinRef(b BuiltinColor) Ref { return Ref{Builtin: b, id: b.ID()} }

// ID returns the registry id the reference points at.
func (r Ref) ID() domain.ResourceID { return r.id }

// IsBuiltin reports whether r names a builtin color.
func (r Ref) IsBuiltin() bool { return r.Builtin != UserDefined }

func (r Ref) String() string { return r.id.String() }

// Reference is an unlinked pointer to another mapping. Link replaces it.
type Reference struct {
	Ref Ref
}

func (Reference) Color(*expr.Context, int) uint32 { return White }
func (Reference) Resolved() bool                  { return false }

// Named samplers that are not stored in any registry.
var namedSamplers = map[string]func() *Colormap{
	"biome_sample":            DefSquare,
	"triangular_biome_sample": DefTriangle,
	"fixed":                   FixedSampler,
	"grid":                    GridSampler,
}

// NamedSampler returns a fresh, unbound sampler for a builtin sampler id.
func NamedSampler(id domain.ResourceID) (*Colormap, bool) {
	if id.Namespace != domain.DefaultNamespace {
		return nil, false
	}
	mk, ok := namedSamplers[id.Path]
	if !ok {
		return nil, false
	}
	return mk(), true
}
