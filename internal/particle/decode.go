package particle

import (
	"encoding/json"
	"errors"

	"tintcore/internal/colormap"
	"tintcore/internal/expr"
	"tintcore/pkg/domain"
)

type initializerDoc struct {
	Size       expr.Value      `json:"size"`
	Lifetime   expr.Value      `json:"lifetime"`
	Red        expr.Value      `json:"red"`
	Green      expr.Value      `json:"green"`
	Blue       expr.Value      `json:"blue"`
	Alpha      expr.Value      `json:"alpha"`
	Roll       expr.Value      `json:"roll"`
	Friction   expr.Value      `json:"friction"`
	Custom     expr.Value      `json:"custom"`
	Colormap   json.RawMessage `json:"colormap"`
	Habitat    *string         `json:"habitat"`
	HasPhysics *bool           `json:"has_physics"`
}

type tickerDoc struct {
	X               expr.Value      `json:"x"`
	Y               expr.Value      `json:"y"`
	Z               expr.Value      `json:"z"`
	DX              expr.Value      `json:"dx"`
	DY              expr.Value      `json:"dy"`
	DZ              expr.Value      `json:"dz"`
	Size            expr.Value      `json:"size"`
	Red             expr.Value      `json:"red"`
	Green           expr.Value      `json:"green"`
	Blue            expr.Value      `json:"blue"`
	Alpha           expr.Value      `json:"alpha"`
	Roll            expr.Value      `json:"roll"`
	Custom          expr.Value      `json:"custom"`
	RemoveCondition expr.Value      `json:"remove_condition"`
	Colormap        json.RawMessage `json:"colormap"`
}

type typeDoc struct {
	RenderType  *string         `json:"render_type"`
	Initializer *initializerDoc `json:"initializer"`
	Ticker      *tickerDoc      `json:"ticker"`
	ForceSpawn  bool            `json:"force_spawn"`
}

// colormapFunc binds an embedded colormap for the type being decoded.
type colormapFunc func(raw json.RawMessage) (colormap.Mapping, error)

// Decode parses a particle definition. Embedded colormaps are handed to
// bind; a nil bind rejects them.
func Decode(id domain.ResourceID, raw []byte, bind colormapFunc) (*Type, error) {
	var doc typeDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	t := &Type{ID: id, RenderType: RenderOpaque, ForceSpawn: doc.ForceSpawn}
	if doc.RenderType != nil {
		rt, err := parseRenderType(*doc.RenderType)
		if err != nil {
			return nil, err
		}
		t.RenderType = rt
	}
	if d := doc.Initializer; d != nil {
		ini := &Initializer{
			Size:       d.Size,
			Lifetime:   d.Lifetime,
			Red:        d.Red,
			Green:      d.Green,
			Blue:       d.Blue,
			Alpha:      d.Alpha,
			Roll:       d.Roll,
			Friction:   d.Friction,
			Custom:     d.Custom,
			Habitat:    HabitatAny,
			HasPhysics: true,
		}
		if d.Habitat != nil {
			h, err := parseHabitat(*d.Habitat)
			if err != nil {
				return nil, err
			}
			ini.Habitat = h
		}
		if d.HasPhysics != nil {
			ini.HasPhysics = *d.HasPhysics
		}
		var err error
		if ini.Colormap, err = bindColormap(d.Colormap, bind); err != nil {
			return nil, err
		}
		t.Initializer = ini
	}
	if d := doc.Ticker; d != nil {
		tk := &Ticker{
			X:               d.X,
			Y:               d.Y,
			Z:               d.Z,
			DX:              d.DX,
			DY:              d.DY,
			DZ:              d.DZ,
			Size:            d.Size,
			Red:             d.Red,
			Green:           d.Green,
			Blue:            d.Blue,
			Alpha:           d.Alpha,
			Roll:            d.Roll,
			Custom:          d.Custom,
			RemoveCondition: d.RemoveCondition,
		}
		var err error
		if tk.Colormap, err = bindColormap(d.Colormap, bind); err != nil {
			return nil, err
		}
		t.Ticker = tk
	}
	return t, nil
}

func bindColormap(raw json.RawMessage, bind colormapFunc) (colormap.Mapping, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if bind == nil {
		return nil, errors.New("colormap: no resolver")
	}
	return bind(raw)
}
