package particle

import (
	"math"

	"tintcore/internal/expr"
)

// Medium is what fills a block position.
type Medium uint8

const (
	MediumAir Medium = iota
	MediumLiquid
	MediumSolid
)

// World is the part of the host level an instance needs while ticking.
type World interface {
	Medium(pos expr.BlockPos) Medium
	// Move clips a movement against the level. It returns the reachable
	// position and whether a collision stopped the particle.
	Move(x, y, z, dx, dy, dz float64) (nx, ny, nz float64, collided bool)
}

const (
	defaultLifetime = 20
	defaultFriction = 0.98
)

// Instance is one simulated particle.
type Instance struct {
	typ        *Type
	state      expr.ParticleState
	params     map[string]float64
	friction   float64
	habitat    Habitat
	hasPhysics bool
	removed    bool
}

// NewInstance evaluates the type's initializer for s. fallback stands in for
// the spawn block state when s carries none; nil leaves it absent.
func NewInstance(t *Type, s Spawn, fallback *expr.BlockState) *Instance {
	in := &Instance{
		typ:        t,
		params:     s.Params,
		friction:   defaultFriction,
		habitat:    HabitatAny,
		hasPhysics: true,
		state: expr.ParticleState{
			Lifetime: defaultLifetime,
			X:        s.X,
			Y:        s.Y,
			Z:        s.Z,
			DX:       s.DX,
			DY:       s.DY,
			DZ:       s.DZ,
			Red:      1,
			Green:    1,
			Blue:     1,
			Alpha:    1,
			Size:     1,
		},
	}
	state := s.State
	if state == nil {
		state = fallback
	}
	if ini := t.Initializer; ini != nil {
		pos := blockPos(s.X, s.Y, s.Z)
		ctx := &expr.Context{State: state, Pos: &pos, Spawn: s.Params}
		st := &in.state
		st.Roll = ini.Roll.Eval(ctx, st.Roll)
		st.Size = ini.Size.Eval(ctx, st.Size)
		st.Red = ini.Red.Eval(ctx, st.Red)
		st.Green = ini.Green.Eval(ctx, st.Green)
		st.Blue = ini.Blue.Eval(ctx, st.Blue)
		st.Alpha = ini.Alpha.Eval(ctx, st.Alpha)
		if ini.Colormap != nil {
			in.setColor(ini.Colormap.Color(ctx, 0))
		}
		if ini.Lifetime.IsSet() {
			st.Lifetime = max(1, int(ini.Lifetime.Evaluate(ctx)))
		}
		in.friction = ini.Friction.Eval(ctx, in.friction)
		if ini.Custom.IsSet() {
			ini.Custom.Evaluate(ctx)
		}
		in.habitat = ini.Habitat
		in.hasPhysics = ini.HasPhysics
	}
	if tk := t.Ticker; tk != nil && tk.RemoveCondition.IsSet() {
		if tk.RemoveCondition.Evaluate(in.context()) > 0 {
			in.removed = true
			in.state.Alpha = 0
		}
	}
	return in
}

// State returns a copy of the particle facet.
func (in *Instance) State() expr.ParticleState { return in.state }

// Type returns the definition the instance was spawned from.
func (in *Instance) Type() *Type { return in.typ }

// Removed reports whether the instance has died.
func (in *Instance) Removed() bool { return in.removed }

// Color packs the current color channels as ARGB.
func (in *Instance) Color() uint32 {
	return channel(in.state.Alpha)<<24 | channel(in.state.Red)<<16 | channel(in.state.Green)<<8 | channel(in.state.Blue)
}

// Tick advances the instance by one game tick: age and motion first, then
// ticker expressions, then the removal rules.
func (in *Instance) Tick(w World) {
	if in.removed {
		return
	}
	st := &in.state
	st.Age++
	if st.Age >= st.Lifetime {
		in.removed = true
		return
	}
	ox, oy, oz := st.X, st.Y, st.Z
	collided := false
	if in.hasPhysics && w != nil {
		st.X, st.Y, st.Z, collided = w.Move(st.X, st.Y, st.Z, st.DX, st.DY, st.DZ)
	} else {
		st.X, st.Y, st.Z = st.X+st.DX, st.Y+st.DY, st.Z+st.DZ
	}
	st.DX *= in.friction
	st.DY *= in.friction
	st.DZ *= in.friction

	if tk := in.typ.Ticker; tk != nil {
		in.runTicker(tk)
	}

	if in.hasPhysics && (collided || (st.X == ox && st.Y == oy && st.Z == oz)) {
		in.removed = true
	}
	if in.habitat != HabitatAny && w != nil {
		medium := w.Medium(blockPos(st.X, st.Y, st.Z))
		if (in.habitat == HabitatLiquid && medium != MediumLiquid) || (in.habitat == HabitatAir && medium != MediumAir) {
			in.removed = true
		}
	}
}

// runTicker evaluates every expression against the state at the start of
// the ticker pass, so fields do not observe each other's new values.
func (in *Instance) runTicker(tk *Ticker) {
	ctx := in.context()
	st := &in.state
	st.Roll = tk.Roll.Eval(ctx, st.Roll)
	st.Size = tk.Size.Eval(ctx, st.Size)
	st.Red = tk.Red.Eval(ctx, st.Red)
	st.Green = tk.Green.Eval(ctx, st.Green)
	st.Blue = tk.Blue.Eval(ctx, st.Blue)
	st.Alpha = tk.Alpha.Eval(ctx, st.Alpha)
	if tk.Colormap != nil {
		in.setColor(tk.Colormap.Color(&expr.Context{Pos: ctx.Pos, Spawn: in.params}, 0))
	}
	st.X = tk.X.Eval(ctx, st.X)
	st.Y = tk.Y.Eval(ctx, st.Y)
	st.Z = tk.Z.Eval(ctx, st.Z)
	st.DX = tk.DX.Eval(ctx, st.DX)
	st.DY = tk.DY.Eval(ctx, st.DY)
	st.DZ = tk.DZ.Eval(ctx, st.DZ)
	st.Custom = tk.Custom.Eval(ctx, st.Custom)
	if tk.RemoveCondition.IsSet() && tk.RemoveCondition.Evaluate(ctx) > 0 {
		in.removed = true
	}
}

func (in *Instance) context() *expr.Context {
	snapshot := in.state
	pos := blockPos(snapshot.X, snapshot.Y, snapshot.Z)
	return &expr.Context{Particle: &snapshot, Pos: &pos, Spawn: in.params}
}

func (in *Instance) setColor(argb uint32) {
	in.state.Red = float64(argb>>16&0xFF) / 255
	in.state.Green = float64(argb>>8&0xFF) / 255
	in.state.Blue = float64(argb&0xFF) / 255
}

func channel(v float64) uint32 {
	return uint32(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

func blockPos(x, y, z float64) expr.BlockPos {
	return expr.BlockPos{X: int(math.Floor(x)), Y: int(math.Floor(y)), Z: int(math.Floor(z))}
}
