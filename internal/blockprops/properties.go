// Package blockprops overrides client-side block properties: tint, sound,
// render offset, occlusion and emissive rendering.
package blockprops

import (
	"encoding/json"
	"fmt"
	"strings"

	"tintcore/internal/colormap"
	"tintcore/internal/expr"
	"tintcore/pkg/domain"
)

// OffsetType is the random render offset of a block model.
type OffsetType string

const (
	OffsetNone OffsetType = "NONE"
	OffsetXZ   OffsetType = "XZ"
	OffsetXYZ  OffsetType = "XYZ"
)

// ParseOffsetType is case-insensitive.
func ParseOffsetType(s string) (OffsetType, error) {
	switch t := OffsetType(strings.ToUpper(s)); t {
	case OffsetNone, OffsetXZ, OffsetXYZ:
		return t, nil
	}
	return "", fmt.Errorf("unknown offset type %q", s)
}

// Properties is the host value for one block.
type Properties struct {
	Tint       colormap.Mapping
	SoundType  string
	OffsetType OffsetType
	CanOcclude bool
	Emissive   bool
}

// Color returns the block tint for a tint index, white when untinted.
func (p Properties) Color(ctx *expr.Context, tint int) uint32 {
	if p.Tint == nil {
		return colormap.White
	}
	return p.Tint.Color(ctx, tint)
}

// Modifier is a block properties record. Nil fields leave the host value
// alone.
type Modifier struct {
	Tint       colormap.Mapping
	SoundType  *string
	OffsetType *OffsetType
	CanOcclude *bool
	Emissive   *bool
	Targets    domain.TargetSet
}

// Apply returns p with every field the modifier sets replaced.
func (m Modifier) Apply(p Properties) Properties {
	if m.Tint != nil {
		p.Tint = m.Tint
	}
	if m.SoundType != nil {
		p.SoundType = *m.SoundType
	}
	if m.OffsetType != nil {
		p.OffsetType = *m.OffsetType
	}
	if m.CanOcclude != nil {
		p.CanOcclude = *m.CanOcclude
	}
	if m.Emissive != nil {
		p.Emissive = *m.Emissive
	}
	return p
}

type modifierDoc struct {
	Tint       json.RawMessage  `json:"tint"`
	Colormap   json.RawMessage  `json:"colormap"`
	SoundType  *string          `json:"sound_type"`
	OffsetType *string          `json:"offset_type"`
	CanOcclude *bool            `json:"can_occlude"`
	Emissive   *bool            `json:"emissive"`
	Targets    domain.TargetSet `json:"targets"`
}

// decodeDoc parses everything but the tint, which needs the resolver.
// "colormap" is accepted as an alias of "tint".
func decodeDoc(raw []byte) (Modifier, json.RawMessage, error) {
	var doc modifierDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Modifier{}, nil, err
	}
	mod := Modifier{
		SoundType:  doc.SoundType,
		CanOcclude: doc.CanOcclude,
		Emissive:   doc.Emissive,
		Targets:    doc.Targets,
	}
	if doc.SoundType != nil && strings.TrimSpace(*doc.SoundType) == "" {
		return Modifier{}, nil, fmt.Errorf("sound_type: empty")
	}
	if doc.OffsetType != nil {
		t, err := ParseOffsetType(*doc.OffsetType)
		if err != nil {
			return Modifier{}, nil, err
		}
		mod.OffsetType = &t
	}
	tint := doc.Tint
	if len(tint) == 0 {
		tint = doc.Colormap
	}
	return mod, tint, nil
}
