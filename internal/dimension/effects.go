// Package dimension overrides per-dimension rendering effects.
package dimension

import (
	"encoding/json"
	"fmt"

	"tintcore/internal/colormap"
	"tintcore/internal/lightmap"
	"tintcore/pkg/domain"
)

// SkyType selects how the host renders the sky.
type SkyType string

const (
	SkyNone   SkyType = "NONE"
	SkyNormal SkyType = "NORMAL"
	SkyEnd    SkyType = "END"
)

// ParseSkyType accepts the upper-case names only.
func ParseSkyType(s string) (SkyType, error) {
	switch t := SkyType(s); t {
	case SkyNone, SkyNormal, SkyEnd:
		return t, nil
	}
	return "", fmt.Errorf("unknown sky type %q", s)
}

// Effects is the host value for one dimension.
type Effects struct {
	CloudLevel           float64
	HasGround            bool
	SkyType              SkyType
	ForceBrightLightmap  bool
	ConstantAmbientLight bool
	FogColor             colormap.Mapping
	SkyColor             colormap.Mapping
	Lightmap             *lightmap.Lightmap
}

// Modifier is a dimension effects record. Nil fields leave the host value
// alone.
type Modifier struct {
	CloudLevel           *float64
	HasGround            *bool
	SkyType              *SkyType
	ForceBrightLightmap  *bool
	ConstantAmbientLight *bool
	FogColor             colormap.Mapping
	SkyColor             colormap.Mapping
	Lightmap             *lightmap.Lightmap
	Targets              domain.TargetSet
}

// Merge layers other on top of m: every field other sets wins and the
// target sets are joined.
func (m Modifier) Merge(other Modifier) Modifier {
	out := m
	if other.CloudLevel != nil {
		out.CloudLevel = other.CloudLevel
	}
	if other.HasGround != nil {
		out.HasGround = other.HasGround
	}
	if other.SkyType != nil {
		out.SkyType = other.SkyType
	}
	if other.ForceBrightLightmap != nil {
		out.ForceBrightLightmap = other.ForceBrightLightmap
	}
	if other.ConstantAmbientLight != nil {
		out.ConstantAmbientLight = other.ConstantAmbientLight
	}
	if other.FogColor != nil {
		out.FogColor = other.FogColor
	}
	if other.SkyColor != nil {
		out.SkyColor = other.SkyColor
	}
	if other.Lightmap != nil {
		out.Lightmap = other.Lightmap
	}
	out.Targets = append(append(domain.TargetSet(nil), m.Targets...), other.Targets...)
	return out
}

// Apply returns e with every field the modifier sets replaced.
func (m Modifier) Apply(e Effects) Effects {
	if m.CloudLevel != nil {
		e.CloudLevel = *m.CloudLevel
	}
	if m.HasGround != nil {
		e.HasGround = *m.HasGround
	}
	if m.SkyType != nil {
		e.SkyType = *m.SkyType
	}
	if m.ForceBrightLightmap != nil {
		e.ForceBrightLightmap = *m.ForceBrightLightmap
	}
	if m.ConstantAmbientLight != nil {
		e.ConstantAmbientLight = *m.ConstantAmbientLight
	}
	if m.FogColor != nil {
		e.FogColor = m.FogColor
	}
	if m.SkyColor != nil {
		e.SkyColor = m.SkyColor
	}
	if m.Lightmap != nil {
		e.Lightmap = m.Lightmap
	}
	return e
}

type modifierDoc struct {
	CloudLevel           *float64           `json:"cloud_level"`
	HasGround            *bool              `json:"has_ground"`
	SkyType              *string            `json:"sky_type"`
	ForceBrightLightmap  *bool              `json:"force_bright_lightmap"`
	ConstantAmbientLight *bool              `json:"constant_ambient_light"`
	FogColormap          json.RawMessage    `json:"fog_colormap"`
	SkyColormap          json.RawMessage    `json:"sky_colormap"`
	Lightmap             *domain.ResourceID `json:"lightmap"`
	Targets              domain.TargetSet   `json:"targets"`
}

func decodeDoc(raw []byte) (modifierDoc, *SkyType, error) {
	var doc modifierDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, nil, err
	}
	if doc.SkyType == nil {
		return doc, nil, nil
	}
	t, err := ParseSkyType(*doc.SkyType)
	if err != nil {
		return doc, nil, err
	}
	return doc, &t, nil
}
