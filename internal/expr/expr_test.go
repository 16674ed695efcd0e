package expr

import (
	"math"
	"testing"

	"tintcore/pkg/domain"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBuiltinsDefaultsOnMissingFacets(t *testing.T) {
	empty := &Context{}
	cases := []struct {
		p    Provider
		want float64
	}{
		{Zero, 0},
		{One, 1},
		{DayTime, 1},
		{Temperature, 0},
		{LegacyTemperature, 0},
		{Downfall, 0},
		{BiomeID, 0},
		{YLevel, 64},
		{ItemDamage, 0},
		{StateFraction{Property: "age", Max: 7}, 0},
	}
	for _, tc := range cases {
		if got := tc.p.Evaluate(empty); !near(got, tc.want) {
			t.Fatalf("%T %v: got %v want %v", tc.p, tc.p, got, tc.want)
		}
		if got := tc.p.Evaluate(nil); !near(got, tc.want) {
			t.Fatalf("nil context %v: got %v want %v", tc.p, got, tc.want)
		}
	}
}

type fixedMapper map[domain.ResourceID]float64

func (m fixedMapper) Index(id domain.ResourceID) float64 { return m[id] }

func TestBuiltinValues(t *testing.T) {
	plains := domain.MustParseResourceID("plains")
	ctx := &Context{
		DayTime: 30000,
		Biome:   &Biome{ID: plains, Temperature: 0.8, BaseTemperature: 0.8, Downfall: 0.4},
		Biomes:  fixedMapper{plains: 0.25},
		Item:    &ItemStack{Damage: 25, MaxDamage: 100},
		Pos:     &BlockPos{X: 1, Y: 100, Z: 2},
	}
	if got := DayTime.Evaluate(ctx); !near(got, 0.75) {
		t.Fatalf("day_time got %v", got)
	}
	if got := BiomeID.Evaluate(ctx); !near(got, 0.75) {
		t.Fatalf("biome_id got %v", got)
	}
	if got := ItemDamage.Evaluate(ctx); !near(got, 0.75) {
		t.Fatalf("item_damage got %v", got)
	}
	// 100 is 20 above sea level + 17
	if got := LegacyTemperature.Evaluate(ctx); !near(got, 0.8-20*0.05/40) {
		t.Fatalf("legacy_temperature got %v", got)
	}
	if got := Temperature.Evaluate(ctx); !near(got, 0.8) {
		t.Fatalf("temperature got %v", got)
	}
	y := YLevel.Evaluate(ctx)
	if y < 1-(100+64+2)/256.0 || y > 1-(100+64-2)/256.0 {
		t.Fatalf("y_level outside jitter band: %v", y)
	}
	if y != YLevel.Evaluate(ctx) {
		t.Fatalf("y_level jitter must be deterministic per position")
	}
	if got := ItemDamage.Evaluate(&Context{Item: &ItemStack{}}); got != 1 {
		t.Fatalf("undamageable item should read 1, got %v", got)
	}
}

func TestCapabilityFlags(t *testing.T) {
	if Const(1).UsesBiome() || Const(1).UsesPos() || Const(1).UsesState() || Const(1).UsesItem() {
		t.Fatalf("const must not advertise facets")
	}
	if !Temperature.UsesBiome() || Temperature.UsesState() {
		t.Fatalf("temperature flags wrong")
	}
	if !YLevel.UsesPos() || YLevel.UsesBiome() {
		t.Fatalf("y_level flags wrong")
	}
	f, err := ParseFormula("state.age / 7 + temperature")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !f.UsesState() || !f.UsesBiome() || f.UsesItem() || f.UsesPos() {
		t.Fatalf("formula flags wrong")
	}
}

func TestFormulaEvaluation(t *testing.T) {
	ctx := &Context{
		State:    &BlockState{Properties: map[string]int{"age": 7}},
		Particle: &ParticleState{Age: 5, Lifetime: 10},
		Spawn:    map[string]float64{"speed": 2},
	}
	cases := []struct {
		src  string
		want float64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"-2 ^ 2", -4},
		{"2 ^ 3 ^ 2", 512},
		{"10 % 4", 2},
		{"1 / 0", 0},
		{"min(3, 1, 2) + max(1, 4)", 5},
		{"clamp(5, 0, 1)", 1},
		{"lerp(0.5, 2, 4)", 3},
		{"state.age / 7", 1},
		{"age / lifetime", 0.5},
		{"age >= lifetime", 0},
		{"spawn.speed * 2", 4},
		{"abs(-3) + floor(1.7) + ceil(0.2)", 5},
		{"sqrt(16)", 4},
		{"one - zero", 1},
		{"1e2", 100},
	}
	for _, tc := range cases {
		f, err := ParseFormula(tc.src)
		if err != nil {
			t.Fatalf("%q: parse: %v", tc.src, err)
		}
		if got := f.Evaluate(ctx); !near(got, tc.want) {
			t.Fatalf("%q: got %v want %v", tc.src, got, tc.want)
		}
	}
}

func TestFormulaErrorsAtParse(t *testing.T) {
	bad := []string{"", "1 +", "foo + 1", "min(1)", "sin(1, 2)", "(1", "1 $ 2", "nope(1)", "rand(1)"}
	for _, src := range bad {
		if _, err := ParseFormula(src); err == nil {
			t.Fatalf("%q: expected parse error", src)
		}
	}
}

func TestDecode(t *testing.T) {
	p, err := Decode([]byte(`"temperature"`))
	if err != nil || p != Provider(Temperature) {
		t.Fatalf("builtin decode: %v %v", p, err)
	}
	p, err = Decode([]byte(`0.5`))
	if err != nil || p != Provider(Const(0.5)) {
		t.Fatalf("const decode: %v %v", p, err)
	}
	p, err = Decode([]byte(`"downfall * 2"`))
	if err != nil {
		t.Fatalf("formula decode: %v", err)
	}
	if _, ok := p.(*Formula); !ok {
		t.Fatalf("expected formula, got %T", p)
	}
	if _, err := Decode([]byte(`"bogus_name"`)); err == nil {
		t.Fatalf("expected decode failure for unknown identifier")
	}
	if _, err := Decode([]byte(`{}`)); err == nil {
		t.Fatalf("expected decode failure for object")
	}
}

func TestValueJSON(t *testing.T) {
	var v Value
	if err := v.UnmarshalJSON([]byte(`"age * 2"`)); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	b, err := v.MarshalJSON()
	if err != nil || string(b) != `"age * 2"` {
		t.Fatalf("marshal: %s %v", b, err)
	}
	var unset Value
	if unset.IsSet() || unset.Eval(nil, 3) != 3 {
		t.Fatalf("unset value must use fallback")
	}
}

func TestRandUsesContextSource(t *testing.T) {
	f, err := ParseFormula("rand() * 10")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := f.Evaluate(&Context{Random: func() float64 { return 0.3 }}); !near(got, 3) {
		t.Fatalf("got %v", got)
	}
	if got := f.Evaluate(nil); got != 0 {
		t.Fatalf("missing random source should read 0, got %v", got)
	}
}
