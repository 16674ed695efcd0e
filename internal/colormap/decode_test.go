package colormap

import (
	"testing"

	"tintcore/internal/expr"
)

func TestDecodeVariants(t *testing.T) {
	m, err := Decode([]byte(`{"x_axis":"day_time","y_axis":0.5,"triangular":true,"texture_path":"mod:sky","default_color":"#102030"}`))
	if err != nil {
		t.Fatalf("decode colormap: %v", err)
	}
	c := m.(*Colormap)
	if c.XAxis != expr.Provider(expr.DayTime) || c.YAxis != expr.Provider(expr.Const(0.5)) || !c.Triangular {
		t.Fatalf("axes decoded wrong: %+v", c)
	}
	if c.Texture != rid("mod:sky") || c.DefaultColor == nil || *c.DefaultColor != 0xFF102030 {
		t.Fatalf("optional fields decoded wrong")
	}

	m, err = Decode([]byte(`{}`))
	if err != nil {
		t.Fatalf("decode empty: %v", err)
	}
	if m.(*Colormap).XAxis != expr.Provider(expr.Temperature) {
		t.Fatalf("default x axis should be temperature")
	}

	m, err = Decode([]byte(`{"0":{},"2":"grass_color"}`))
	if err != nil {
		t.Fatalf("decode compound: %v", err)
	}
	comp := m.(*Compound)
	if got := comp.Channels(); len(got) != 2 || got[1] != 2 {
		t.Fatalf("channels %v", got)
	}
	ch2, _ := comp.Channel(2)
	if ref, ok := ch2.(Reference); !ok || ref.Ref.Builtin != Grass {
		t.Fatalf("expected grass reference, got %#v", ch2)
	}

	m, err = Decode([]byte(`[{}, {}]`))
	if err != nil || m.(*Compound).Len() != 2 {
		t.Fatalf("array compound: %v", err)
	}

	m, err = Decode([]byte(`-1`))
	if err != nil || m != Mapping(Fixed(0xFFFFFFFF)) {
		t.Fatalf("numeric color: %v %v", m, err)
	}
}

func TestDecodeErrors(t *testing.T) {
	bad := []string{`{"x_axis":"nope("}`, `{"texture_path":"Bad Path"}`, `[]`, `not json`, `"#zz"`, `true`}
	for _, src := range bad {
		if _, err := Decode([]byte(src)); err == nil {
			t.Fatalf("%s: expected error", src)
		}
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]uint32{"#FFFFFF": 0xFFFFFFFF, "#80102030": 0x80102030, "0x00ff00": 0xFF00FF00, "255": 255}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Fatalf("%s: got %08x err %v", in, got, err)
		}
	}
}

func TestNamedSamplers(t *testing.T) {
	for _, name := range []string{"biome_sample", "triangular_biome_sample", "fixed", "grid"} {
		s, ok := NamedSampler(rid(name))
		if !ok || s.Resolved() {
			t.Fatalf("%s: expected fresh unbound sampler", name)
		}
	}
	if s, _ := NamedSampler(rid("grid")); s.XAxis != expr.Provider(expr.BiomeID) {
		t.Fatalf("grid should index by biome id")
	}
	if _, ok := NamedSampler(rid("mod:grid")); ok {
		t.Fatalf("named samplers live in the default namespace")
	}
}
