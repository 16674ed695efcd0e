package expr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Decode reads a provider from its JSON form: a builtin name, a number or a
// formula string.
func Decode(raw []byte) (Provider, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("expr: missing value")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("expr: %w", err)
		}
		return Parse(s)
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("expr: expected number or string, got %s", raw)
	}
	return Const(f), nil
}

// Parse resolves a string: builtin names first, then formulas.
func Parse(s string) (Provider, error) {
	if b, ok := Lookup(s); ok {
		return b, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Const(f), nil
	}
	return ParseFormula(s)
}

// Value wraps a Provider so it can be embedded in decoded documents.
type Value struct {
	Provider
}

// V wraps p.
func V(p Provider) Value { return Value{Provider: p} }

// IsSet reports whether the value was present in the document.
func (v Value) IsSet() bool { return v.Provider != nil }

// Eval evaluates the wrapped provider, returning fallback when unset.
func (v Value) Eval(ctx *Context, fallback float64) float64 {
	if v.Provider == nil {
		return fallback
	}
	return v.Provider.Evaluate(ctx)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		v.Provider = nil
		return nil
	}
	p, err := Decode(b)
	if err != nil {
		return err
	}
	v.Provider = p
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch p := v.Provider.(type) {
	case nil:
		return []byte("null"), nil
	case Const:
		return json.Marshal(float64(p))
	case *Builtin:
		return json.Marshal(p.name)
	case *Formula:
		return json.Marshal(p.src)
	}
	return nil, fmt.Errorf("expr: %T has no document form", v.Provider)
}
