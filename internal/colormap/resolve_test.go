package colormap

import (
	"errors"
	"testing"

	"tintcore/internal/expr"
	"tintcore/internal/logging"
	"tintcore/internal/texture"
	"tintcore/pkg/domain"
)

func rid(s string) domain.ResourceID { return domain.MustParseResourceID(s) }

func img(w, h int) *domain.RasterImage { return domain.NewRasterImage(w, h) }

func twoChannel() *Compound {
	return NewCompound(map[int]Mapping{0: DefTriangle(), 1: DefSquare()})
}

func TestResolveSimpleBindsDefaultImage(t *testing.T) {
	foo := img(4, 4)
	ix := texture.Build(texture.Layer{rid("foo"): foo})
	used := texture.Used{}
	c := DefTriangle()
	if err := Resolve(c, rid("foo"), ix, used, true); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if c.Image() != foo || !used.Has(rid("foo")) {
		t.Fatalf("expected foo bound and marked used")
	}
}

func TestResolveSimpleExplicitTexture(t *testing.T) {
	other := img(2, 2)
	ix := texture.Build(texture.Layer{rid("shared"): other})
	c := DefSquare()
	c.Texture = rid("shared")
	if err := Resolve(c, rid("leaves"), ix, texture.Used{}, true); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if c.Image() != other {
		t.Fatalf("explicit texture not bound")
	}
}

func TestResolveSimpleMissing(t *testing.T) {
	ix := texture.Build(texture.Layer{})
	c := DefTriangle()
	if err := Resolve(c, rid("foo"), ix, texture.Used{}, false); err != nil {
		t.Fatalf("non-strict must not fail: %v", err)
	}
	if c.Resolved() {
		t.Fatalf("expected unresolved")
	}
	err := Resolve(c, rid("foo"), ix, texture.Used{}, true)
	var rerr *domain.ResolutionError
	if !errors.As(err, &rerr) || !errors.Is(err, domain.ErrMissingTexture) {
		t.Fatalf("expected missing texture resolution error, got %v", err)
	}
}

func TestResolveExplicitMissingLogs(t *testing.T) {
	capture := &logging.Capture{}
	r := NewResolver(texture.Build(texture.Layer{}), capture)
	c := DefTriangle()
	c.Texture = rid("gone")
	if err := r.Resolve(c, rid("foo"), false); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !capture.Contains("error", "explicit") {
		t.Fatalf("expected explicit texture error log, got %v", capture.Entries())
	}
}

func TestZeroDimensionAlwaysFatal(t *testing.T) {
	ix := texture.Build(texture.Layer{rid("flat"): img(0, 16)})
	for _, strict := range []bool{true, false} {
		err := Resolve(DefTriangle(), rid("flat"), ix, texture.Used{}, strict)
		if !errors.Is(err, domain.ErrZeroDimension) {
			t.Fatalf("strict=%v: expected zero dimension error, got %v", strict, err)
		}
	}
}

func TestResolveIdempotent(t *testing.T) {
	first, second := img(2, 2), img(3, 3)
	c := DefTriangle()
	if err := Resolve(c, rid("a"), texture.Build(texture.Layer{rid("a"): first}), texture.Used{}, true); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	used := texture.Used{}
	if err := Resolve(c, rid("a"), texture.Build(texture.Layer{rid("a"): second}), used, true); err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if c.Image() != first {
		t.Fatalf("binding was overwritten")
	}
	if used.Has(rid("a")) {
		t.Fatalf("no-op resolution must not consume textures")
	}
}

func TestCompoundStrictSucceedsWithAllChannels(t *testing.T) {
	b0, b1 := img(8, 8), img(8, 8)
	ix := texture.Build(texture.Layer{rid("bar_0"): b0, rid("bar_1"): b1})
	c := twoChannel()
	if err := Resolve(c, rid("bar"), ix, texture.Used{}, true); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	ch0, _ := c.Channel(0)
	ch1, _ := c.Channel(1)
	if ch0.(*Colormap).Image() != b0 || ch1.(*Colormap).Image() != b1 {
		t.Fatalf("channels bound to wrong images")
	}
	if !c.Resolved() {
		t.Fatalf("compound should be resolved")
	}
}

func TestCompoundStrictMissingChannelNamesExpectedID(t *testing.T) {
	ix := texture.Build(texture.Layer{rid("bar_0"): img(8, 8)})
	err := Resolve(twoChannel(), rid("bar"), ix, texture.Used{}, true)
	var rerr *domain.ResolutionError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
	if rerr.Expected != rid("bar_1") || rerr.Channel != 1 {
		t.Fatalf("expected bar_1 on channel 1, got %+v", rerr)
	}
}

func TestCompoundCompletenessProperty(t *testing.T) {
	// strict resolution fails iff some declared channel lacks a texture
	for mask := 0; mask < 8; mask++ {
		layer := texture.Layer{}
		complete := true
		for i := 0; i < 3; i++ {
			if mask&(1<<i) != 0 {
				layer[rid("p").WithSuffix(i)] = img(2, 2)
			} else {
				complete = false
			}
		}
		c := NewCompound(map[int]Mapping{0: DefSquare(), 1: DefSquare(), 2: DefSquare()})
		err := Resolve(c, rid("p"), texture.Build(layer), texture.Used{}, true)
		if complete != (err == nil) {
			t.Fatalf("mask %03b: complete=%v err=%v", mask, complete, err)
		}
	}
}

func TestCompoundNonStrictSkipsMissing(t *testing.T) {
	ix := texture.Build(texture.Layer{rid("bar_0"): img(8, 8)})
	c := twoChannel()
	if err := Resolve(c, rid("bar"), ix, texture.Used{}, false); err != nil {
		t.Fatalf("non-strict: %v", err)
	}
	if c.Resolved() {
		t.Fatalf("channel 1 should remain unresolved")
	}
	if c.Prune() != 1 || !c.Resolved() {
		t.Fatalf("prune should keep the bound channel")
	}
	if err := Resolve(twoChannel(), rid("nothing"), ix, texture.Used{}, false); err != nil {
		t.Fatalf("missing group non-strict: %v", err)
	}
}

func TestCompoundChannelZeroPrefersDefault(t *testing.T) {
	def, zero := img(2, 2), img(3, 3)
	ix := texture.Build(texture.Layer{rid("leaf"): def, rid("leaf_0"): zero, rid("leaf_1"): img(1, 1)})
	c := twoChannel()
	if err := Resolve(c, rid("leaf"), ix, texture.Used{}, true); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	ch0, _ := c.Channel(0)
	if ch0.(*Colormap).Image() != def {
		t.Fatalf("channel 0 should take the default image first")
	}
}

func TestCompoundFirstAttemptNeverRaises(t *testing.T) {
	good := img(2, 2)
	ix := texture.Build(texture.Layer{rid("w"): img(0, 0), rid("w_0"): good})
	c := NewCompound(map[int]Mapping{0: DefSquare()})
	if err := Resolve(c, rid("w"), ix, texture.Used{}, true); err != nil {
		t.Fatalf("zero-dimension default must be skipped on the fallback attempt: %v", err)
	}
	ch0, _ := c.Channel(0)
	if ch0.(*Colormap).Image() != good {
		t.Fatalf("expected w_0 bound")
	}
}

func TestCompoundZeroDimensionDefaultWithoutChannelZero(t *testing.T) {
	ix := texture.Build(texture.Layer{rid("w"): img(0, 0)})
	for _, strict := range []bool{true, false} {
		c := NewCompound(map[int]Mapping{0: DefSquare()})
		err := Resolve(c, rid("w"), ix, texture.Used{}, strict)
		var re *domain.ResolutionError
		if !errors.As(err, &re) || !errors.Is(err, domain.ErrZeroDimension) || re.Expected != rid("w_0") {
			t.Fatalf("strict=%v: expected zero dimension error for w_0, got %v", strict, err)
		}
	}
}

func TestSampling(t *testing.T) {
	im := img(2, 2)
	im.Set(0, 0, 0xFF000001) // x=1,y=1
	im.Set(1, 1, 0xFF000002) // x=0,y=0
	im.Set(1, 0, 0xFF000003) // x=0,y=1
	c := NewColormap(expr.Const(0), expr.Const(0), false)
	c.Bind(im)
	cases := []struct {
		x, y float64
		want uint32
	}{
		{1, 1, 0xFF000001},
		{0, 0, 0xFF000002},
		{0, 1, 0xFF000003},
		{5, 5, 0xFF000001},
		{-3, -3, 0xFF000002},
	}
	for _, tc := range cases {
		if got := c.Sample(tc.x, tc.y); got != tc.want {
			t.Fatalf("sample(%v,%v) = %08x want %08x", tc.x, tc.y, got, tc.want)
		}
	}
	c.Triangular = true
	// y is folded by x: x=0 forces the bottom row
	if got := c.Sample(0, 1); got != 0xFF000002 {
		t.Fatalf("triangular fold wrong: %08x", got)
	}
}

func TestColorUsesProvidersAndDefaultColor(t *testing.T) {
	im := img(2, 2)
	im.Set(0, 1, 0xFFABCDEF)
	c := NewColormap(expr.Temperature, expr.Const(0), false)
	c.Bind(im)
	ctx := &expr.Context{Biome: &expr.Biome{Temperature: 1}}
	if got := c.Color(ctx, 0); got != 0xFFABCDEF {
		t.Fatalf("got %08x", got)
	}
	def := uint32(0xFF112233)
	c.DefaultColor = &def
	if got := c.Color(&expr.Context{}, 0); got != def {
		t.Fatalf("missing biome should use default color, got %08x", got)
	}
}

func TestBuiltinColors(t *testing.T) {
	if Grass.Color(nil, 0) != DefaultGrassColor || Water.Color(nil, 0) != DefaultWaterColor {
		t.Fatalf("builtin defaults wrong")
	}
	ctx := &expr.Context{Pos: &expr.BlockPos{}, Biome: &expr.Biome{FoliageColor: 0xFF010203}}
	if Foliage.Color(ctx, 0) != 0xFF010203 {
		t.Fatalf("foliage should read the biome")
	}
	for _, b := range Builtins() {
		ref := RefFromID(b.ID())
		if ref.Builtin != b || !ref.IsBuiltin() {
			t.Fatalf("round trip failed for %v", b)
		}
	}
	if RefFromID(rid("mod:custom")).IsBuiltin() {
		t.Fatalf("user id classified as builtin")
	}
}

type mapGetter map[domain.ResourceID]Mapping

func (g mapGetter) Get(ref Ref) (Mapping, bool) {
	m, ok := g[ref.ID()]
	return m, ok
}

func TestLink(t *testing.T) {
	target := Fixed(0xFF00FF00)
	c := NewCompound(map[int]Mapping{0: Reference{Ref: RefFromID(rid("shared"))}, 1: Fixed(1)})
	linked, err := Link(c, mapGetter{rid("shared"): target})
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	ch0, _ := linked.(*Compound).Channel(0)
	if ch0 != Mapping(target) {
		t.Fatalf("reference not replaced")
	}
	_, err = Link(Reference{Ref: RefFromID(rid("missing"))}, mapGetter{})
	if !IsUnresolvedReference(err) {
		t.Fatalf("expected unresolved reference, got %v", err)
	}
}
