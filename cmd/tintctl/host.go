package main

import (
	"tintcore/internal/blockprops"
	"tintcore/internal/config"
	"tintcore/internal/dimension"
	"tintcore/internal/infra/host/memory"
	"tintcore/internal/item"
	"tintcore/internal/particle"
	"tintcore/pkg/domain"
)

// builtinParticle stands in for a particle type the host ships with.
type builtinParticle struct {
	id domain.ResourceID
}

func (builtinParticle) Spawn(particle.Spawn) particle.Particle { return nil }

// host is an in-memory stand-in for the renderer's live registries.
type host struct {
	blocks     *memory.Targets[blockprops.Properties]
	dimensions *memory.Targets[dimension.Effects]
	particles  *memory.Targets[particle.Provider]
	items      *memory.Targets[item.Appearance]
}

func newHost(m config.Manifest) *host {
	blocks := make(map[domain.ResourceID]blockprops.Properties, len(m.Blocks))
	for _, id := range m.Blocks {
		blocks[id] = blockprops.Properties{SoundType: "stone", OffsetType: blockprops.OffsetNone, CanOcclude: true}
	}
	dims := make(map[domain.ResourceID]dimension.Effects, len(m.Dimensions))
	for _, id := range m.Dimensions {
		dims[id] = dimension.Effects{CloudLevel: 192, HasGround: true, SkyType: dimension.SkyNormal}
	}
	particles := make(map[domain.ResourceID]particle.Provider, len(m.Particles))
	for _, id := range m.Particles {
		particles[id] = builtinParticle{id: id}
	}
	items := make(map[domain.ResourceID]item.Appearance, len(m.Items))
	for _, id := range m.Items {
		items[id] = item.Appearance{}
	}
	return &host{
		blocks:     memory.New(blocks),
		dimensions: memory.New(dims),
		particles:  memory.New(particles),
		items:      memory.New(items),
	}
}
