// Package item overrides item tints and picks alternate models per stack.
package item

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"tintcore/internal/colormap"
	"tintcore/internal/expr"
	"tintcore/pkg/domain"
)

// GeneratedModel marks an override whose model the host generates from the
// item texture.
var GeneratedModel = domain.NewResourceID("", "generated")

// ModelOverride swaps the item model when every present condition holds.
type ModelOverride struct {
	Model       domain.ResourceID
	StackCount  *int
	NamePattern *regexp.Regexp
	// Components maps a data component name to its compact JSON value.
	Components map[string]string
	AutoModel  bool
}

// Matches reports whether stack satisfies every condition.
func (o ModelOverride) Matches(stack *expr.ItemStack) bool {
	if stack == nil {
		return o.StackCount == nil && o.NamePattern == nil && len(o.Components) == 0
	}
	if o.StackCount != nil && stack.Count != *o.StackCount {
		return false
	}
	if o.NamePattern != nil && !o.NamePattern.MatchString(stack.Name) {
		return false
	}
	for name, want := range o.Components {
		if got, ok := stack.Components[name]; !ok || got != want {
			return false
		}
	}
	return true
}

// Appearance is the host value for one item and also the record type.
type Appearance struct {
	Colormap       colormap.Mapping
	ModelOverrides []ModelOverride
	Targets        domain.TargetSet
}

// Select returns the first override matching stack.
func (a Appearance) Select(stack *expr.ItemStack) (ModelOverride, bool) {
	for _, o := range a.ModelOverrides {
		if o.Matches(stack) {
			return o, true
		}
	}
	return ModelOverride{}, false
}

// Color tints a stack; untinted items are white.
func (a Appearance) Color(stack *expr.ItemStack, tint int) uint32 {
	if a.Colormap == nil {
		return colormap.White
	}
	return a.Colormap.Color(&expr.Context{Item: stack}, tint)
}

// Apply layers a on top of the host value: a set colormap replaces the
// current one and a's model overrides are consulted first.
func (a Appearance) Apply(current Appearance) Appearance {
	out := current
	if a.Colormap != nil {
		out.Colormap = a.Colormap
	}
	if len(a.ModelOverrides) > 0 {
		out.ModelOverrides = append(append([]ModelOverride(nil), a.ModelOverrides...), current.ModelOverrides...)
	}
	return out
}

type overrideDoc struct {
	Model       domain.ResourceID          `json:"model"`
	StackCount  *int                       `json:"stack_count"`
	NamePattern *string                    `json:"name_pattern"`
	Components  map[string]json.RawMessage `json:"components"`
}

type appearanceDoc struct {
	Item           *domain.ResourceID `json:"item"`
	Targets        domain.TargetSet   `json:"targets"`
	Colormap       json.RawMessage    `json:"colormap"`
	ModelOverrides []overrideDoc      `json:"model_overrides"`
}

// decodeDoc parses everything but the colormap.
func decodeDoc(raw []byte) (Appearance, json.RawMessage, error) {
	var doc appearanceDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Appearance{}, nil, err
	}
	a := Appearance{Targets: doc.Targets}
	if doc.Item != nil {
		a.Targets = append(a.Targets, *doc.Item)
	}
	for i, od := range doc.ModelOverrides {
		o, err := decodeOverride(od)
		if err != nil {
			return Appearance{}, nil, fmt.Errorf("model_overrides[%d]: %w", i, err)
		}
		a.ModelOverrides = append(a.ModelOverrides, o)
	}
	return a, doc.Colormap, nil
}

func decodeOverride(od overrideDoc) (ModelOverride, error) {
	if od.Model.IsZero() {
		return ModelOverride{}, fmt.Errorf("model: required")
	}
	o := ModelOverride{Model: od.Model, StackCount: od.StackCount, AutoModel: od.Model == GeneratedModel}
	if od.NamePattern != nil {
		re, err := regexp.Compile("^(?:" + *od.NamePattern + ")$")
		if err != nil {
			return ModelOverride{}, fmt.Errorf("name_pattern: %w", err)
		}
		o.NamePattern = re
	}
	if len(od.Components) > 0 {
		o.Components = make(map[string]string, len(od.Components))
		for name, raw := range od.Components {
			var buf bytes.Buffer
			if err := json.Compact(&buf, raw); err != nil {
				return ModelOverride{}, fmt.Errorf("components.%s: %w", name, err)
			}
			o.Components[name] = buf.String()
		}
	}
	return o, nil
}
