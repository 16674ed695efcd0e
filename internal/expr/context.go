package expr

import "tintcore/pkg/domain"

// DefaultSeaLevel is used when a Context does not carry one.
const DefaultSeaLevel = 63

// Context is the evaluation input for a Provider. Every facet is optional;
// providers return documented defaults when a facet they read is absent.
type Context struct {
	State    *BlockState
	Pos      *BlockPos
	Biome    *Biome
	Biomes   BiomeMapper
	Item     *ItemStack
	Particle *ParticleState
	Spawn    map[string]float64
	DayTime  int64
	SeaLevel int // zero means DefaultSeaLevel
	Random   func() float64
}

// BlockState is the block/material facet.
type BlockState struct {
	Block      domain.ResourceID
	Properties map[string]int
}

// Property returns an integer state property, 0 when absent.
func (s *BlockState) Property(name string) int {
	if s == nil {
		return 0
	}
	return s.Properties[name]
}

// BlockPos is a world position.
type BlockPos struct {
	X, Y, Z int
}

// Biome is the biome classification facet. Temperature and Downfall are the
// climate-settings values; BaseTemperature is the raw value that the legacy
// provider adjusts for height.
type Biome struct {
	ID              domain.ResourceID
	Temperature     float64
	BaseTemperature float64
	Downfall        float64
	GrassColor      uint32
	FoliageColor    uint32
	WaterColor      uint32
}

// BiomeMapper maps a biome to a normalized index in [0, 1] for grid lookups.
type BiomeMapper interface {
	Index(biome domain.ResourceID) float64
}

// ItemStack is the item facet.
type ItemStack struct {
	Item      domain.ResourceID
	Count     int
	Damage    int
	MaxDamage int
	Name      string
	// Components holds data components as compact JSON keyed by name.
	Components map[string]string
}

// ParticleState is the live particle facet read by tickers.
type ParticleState struct {
	Age, Lifetime          int
	X, Y, Z                float64
	DX, DY, DZ             float64
	Red, Green, Blue, Alpha float64
	Size, Roll, Custom     float64
}

func (c *Context) seaLevel() int {
	if c == nil || c.SeaLevel == 0 {
		return DefaultSeaLevel
	}
	return c.SeaLevel
}

func (c *Context) random() float64 {
	if c == nil || c.Random == nil {
		return 0
	}
	return c.Random()
}
