package colormap

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"tintcore/internal/expr"
	"tintcore/pkg/domain"
)

type colormapDoc struct {
	XAxis        expr.Value `json:"x_axis"`
	YAxis        expr.Value `json:"y_axis"`
	Triangular   bool       `json:"triangular"`
	TexturePath  string     `json:"texture_path"`
	DefaultColor *string    `json:"default_color"`
}

// Decode reads a mapping from its document form:
//
//   - a string naming a registered mapping, builtin color or named sampler
//     (returned as a Reference), or a "#RRGGBB" / "#AARRGGBB" constant
//   - a number, taken as a constant ARGB color
//   - an object of integer keys, or an array, decoded as a Compound
//   - any other object, decoded as a Colormap
func Decode(raw []byte) (Mapping, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("colormap: invalid json")
	}
	return decodeResult(gjson.ParseBytes(raw))
}

func decodeResult(r gjson.Result) (Mapping, error) {
	switch {
	case r.Type == gjson.String:
		return decodeString(r.Str)
	case r.Type == gjson.Number:
		return Fixed(uint32(r.Int())), nil
	case r.IsArray():
		channels := make(map[int]Mapping)
		var err error
		r.ForEach(func(k, v gjson.Result) bool {
			var m Mapping
			if m, err = decodeResult(v); err != nil {
				err = fmt.Errorf("channel %d: %w", k.Int(), err)
				return false
			}
			channels[int(k.Int())] = m
			return true
		})
		if err != nil {
			return nil, err
		}
		if len(channels) == 0 {
			return nil, fmt.Errorf("colormap: empty compound")
		}
		return NewCompound(channels), nil
	case r.IsObject():
		if isCompoundObject(r) {
			return decodeCompoundObject(r)
		}
		return decodeColormap([]byte(r.Raw))
	}
	return nil, fmt.Errorf("colormap: unsupported value %s", r.Raw)
}

// isCompoundObject reports whether every key of a non-empty object is a
// non-negative integer.
func isCompoundObject(r gjson.Result) bool {
	compound, seen := true, false
	r.ForEach(func(k, _ gjson.Result) bool {
		seen = true
		if n, err := strconv.Atoi(k.Str); err != nil || n < 0 {
			compound = false
			return false
		}
		return true
	})
	return seen && compound
}

func decodeCompoundObject(r gjson.Result) (Mapping, error) {
	channels := make(map[int]Mapping)
	keys := make([]int, 0)
	values := make(map[int]gjson.Result)
	r.ForEach(func(k, v gjson.Result) bool {
		n, _ := strconv.Atoi(k.Str)
		keys = append(keys, n)
		values[n] = v
		return true
	})
	sort.Ints(keys)
	for _, i := range keys {
		m, err := decodeResult(values[i])
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}
		channels[i] = m
	}
	return NewCompound(channels), nil
}

func decodeColormap(raw []byte) (*Colormap, error) {
	var doc colormapDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("colormap: %w", err)
	}
	c := NewColormap(doc.XAxis.Provider, doc.YAxis.Provider, doc.Triangular)
	if doc.TexturePath != "" {
		id, err := domain.ParseResourceID(doc.TexturePath)
		if err != nil {
			return nil, fmt.Errorf("colormap: texture_path: %w", err)
		}
		c.Texture = id
	}
	if doc.DefaultColor != nil {
		v, err := ParseColor(*doc.DefaultColor)
		if err != nil {
			return nil, fmt.Errorf("colormap: default_color: %w", err)
		}
		c.DefaultColor = &v
	}
	return c, nil
}

func decodeString(s string) (Mapping, error) {
	if strings.HasPrefix(s, "#") || strings.HasPrefix(s, "0x") {
		v, err := ParseColor(s)
		if err != nil {
			return nil, err
		}
		return Fixed(v), nil
	}
	id, err := domain.ParseResourceID(s)
	if err != nil {
		return nil, fmt.Errorf("colormap: reference: %w", err)
	}
	return Reference{Ref: RefFromID(id)}, nil
}

// ParseColor accepts "#RRGGBB", "#AARRGGBB", "0x..." or a decimal string.
// Six-digit forms are made opaque.
func ParseColor(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	hex := ""
	switch {
	case strings.HasPrefix(s, "#"):
		hex = s[1:]
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		hex = s[2:]
	}
	if hex == "" {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("color %q: %w", s, err)
		}
		return uint32(v), nil
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	if len(hex) <= 6 {
		v |= 0xFF000000
	}
	return uint32(v), nil
}
