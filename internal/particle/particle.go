// Package particle defines data-driven particle types and the simulation of
// their instances.
package particle

import (
	"fmt"
	"strings"

	"tintcore/internal/colormap"
	"tintcore/internal/expr"
	"tintcore/pkg/domain"
)

// RenderType selects the host particle sheet.
type RenderType string

const (
	RenderTerrain     RenderType = "terrain"
	RenderOpaque      RenderType = "opaque"
	RenderTranslucent RenderType = "translucent"
	RenderCustom      RenderType = "custom"
)

func parseRenderType(s string) (RenderType, error) {
	switch t := RenderType(strings.ToLower(s)); t {
	case RenderTerrain, RenderOpaque, RenderTranslucent, RenderCustom:
		return t, nil
	}
	return "", fmt.Errorf("unknown render type %q", s)
}

// Habitat restricts where an instance may live.
type Habitat string

const (
	HabitatAny    Habitat = "any"
	HabitatAir    Habitat = "air"
	HabitatLiquid Habitat = "liquid"
)

func parseHabitat(s string) (Habitat, error) {
	switch h := Habitat(strings.ToLower(s)); h {
	case HabitatAny, HabitatAir, HabitatLiquid:
		return h, nil
	}
	return "", fmt.Errorf("unknown habitat %q", s)
}

// Initializer expressions run once at spawn against the block context.
type Initializer struct {
	Size, Lifetime, Red, Green, Blue, Alpha expr.Value
	Roll, Friction, Custom                  expr.Value
	Colormap                                colormap.Mapping
	Habitat                                 Habitat
	HasPhysics                              bool
}

// Ticker expressions run every tick against the particle context.
type Ticker struct {
	X, Y, Z, DX, DY, DZ           expr.Value
	Size, Red, Green, Blue, Alpha expr.Value
	Roll, Custom, RemoveCondition expr.Value
	Colormap                      colormap.Mapping
}

// Type is a decoded particle definition. It is the Provider installed on
// the host.
type Type struct {
	ID          domain.ResourceID
	RenderType  RenderType
	Initializer *Initializer
	Ticker      *Ticker
	// ForceSpawn asks the host to spawn regardless of particle settings.
	ForceSpawn bool
}

// Spawn is a particle spawn request.
type Spawn struct {
	X, Y, Z    float64
	DX, DY, DZ float64
	// State is the block the particle was spawned for, if any.
	State *expr.BlockState
	// Params are per-spawn parameters exposed to expressions.
	Params map[string]float64
}

// Particle is a live particle as seen by the host.
type Particle interface {
	Tick(w World)
	Removed() bool
}

// Provider creates particles for a host particle kind.
type Provider interface {
	Spawn(s Spawn) Particle
}

// Spawn implements Provider without a fallback block state.
func (t *Type) Spawn(s Spawn) Particle { return NewInstance(t, s, nil) }
