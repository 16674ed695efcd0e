package item

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"tintcore/internal/colormap"
	"tintcore/internal/expr"
	"tintcore/internal/infra/host/memory"
	"tintcore/internal/logging"
	"tintcore/internal/resource"
	"tintcore/internal/resource/resourcetest"
	"tintcore/pkg/domain"
)

func rid(s string) domain.ResourceID { return domain.MustParseResourceID(s) }

const ia = "assets/minecraft/item_appearances/"

type fixture struct {
	host *memory.Targets[Appearance]
	m    *Manager
	log  *logging.Capture
}

func newFixture() fixture {
	base := ModelOverride{Model: rid("item/vanilla_bow_pulling")}
	host := memory.New(map[domain.ResourceID]Appearance{
		rid("bow"):          {ModelOverrides: []ModelOverride{base}},
		rid("diamond_pick"): {},
		rid("stick"):        {},
	})
	log := &logging.Capture{}
	return fixture{host: host, m: NewManager(host, colormap.NewManager(nil), log), log: log}
}

func (f fixture) cycle(t *testing.T, src resource.Source) error {
	t.Helper()
	ctx := context.Background()
	b, err := f.m.Prepare(ctx, src)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if err := f.m.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := f.m.Process(ctx, b); err != nil {
		return err
	}
	return f.m.Apply(ctx)
}

func (f fixture) get(t *testing.T, id string) Appearance {
	t.Helper()
	a, ok := f.host.Get(rid(id))
	if !ok {
		t.Fatalf("host has no %s", id)
	}
	return a
}

func TestModelOverrideMatching(t *testing.T) {
	two := 2
	o, err := decodeOverride(overrideDoc{
		Model:       rid("item/named"),
		StackCount:  &two,
		NamePattern: ptr("Blade.*"),
		Components:  map[string]json.RawMessage{"minecraft:custom_data": json.RawMessage(`{ "tag" : 1 }`)},
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	match := &expr.ItemStack{Count: 2, Name: "Blade of Dawn", Components: map[string]string{"minecraft:custom_data": `{"tag":1}`}}
	cases := []struct {
		name  string
		stack *expr.ItemStack
		want  bool
	}{
		{"all conditions", match, true},
		{"wrong count", &expr.ItemStack{Count: 1, Name: match.Name, Components: match.Components}, false},
		{"partial name", &expr.ItemStack{Count: 2, Name: "My Blade", Components: match.Components}, false},
		{"missing component", &expr.ItemStack{Count: 2, Name: match.Name}, false},
		{"nil stack", nil, false},
	}
	for _, tc := range cases {
		if got := o.Matches(tc.stack); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
	if o.AutoModel {
		t.Fatalf("only minecraft:generated is an auto model")
	}
}

func ptr(s string) *string { return &s }

func TestDecodeRejectsBadOverrides(t *testing.T) {
	cases := map[string]string{
		"missing model": `{"model_overrides": [{"stack_count": 1}]}`,
		"bad pattern":   `{"model_overrides": [{"model": "a", "name_pattern": "("}]}`,
		"bad json":      `{"model_overrides": 3}`,
	}
	for name, doc := range cases {
		if _, _, err := decodeDoc([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestOverridesPrependAndReset(t *testing.T) {
	f := newFixture()
	p := resourcetest.New(t).JSON(ia+"fancy_bow.json", `{
		"item": "bow",
		"model_overrides": [
			{"model": "item/bow_named", "name_pattern": "Longbow"},
			{"model": "minecraft:generated", "stack_count": 3}
		]
	}`)
	if err := f.cycle(t, resourcetest.Source(p)); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	bow := f.get(t, "bow")
	if len(bow.ModelOverrides) != 3 {
		t.Fatalf("expected new overrides ahead of the vanilla one, got %d", len(bow.ModelOverrides))
	}
	o, ok := bow.Select(&expr.ItemStack{Name: "Longbow", Count: 1})
	if !ok || o.Model != rid("item/bow_named") {
		t.Fatalf("select picked %+v", o)
	}
	o, ok = bow.Select(&expr.ItemStack{Name: "x", Count: 3})
	if !ok || !o.AutoModel {
		t.Fatalf("generated model not flagged: %+v", o)
	}
	o, ok = bow.Select(&expr.ItemStack{Name: "x", Count: 1})
	if !ok || o.Model != rid("item/vanilla_bow_pulling") {
		t.Fatalf("unconditional vanilla override should be last resort, got %+v", o)
	}
	if f.m.Applied() != 1 {
		t.Fatalf("applied = %d", f.m.Applied())
	}
	if err := f.m.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got := f.get(t, "bow"); len(got.ModelOverrides) != 1 {
		t.Fatalf("reset kept %d overrides", len(got.ModelOverrides))
	}
}

func TestColormapUsesItemFacet(t *testing.T) {
	f := newFixture()
	p := resourcetest.New(t).
		JSON(ia+"diamond_pick.json", `{"colormap": {"x_axis": "item_damage", "y_axis": 0}}`).
		PNG(ia+"diamond_pick.png", 4, 4, 0xFF3366AA)
	if err := f.cycle(t, resourcetest.Source(p)); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	a := f.get(t, "diamond_pick")
	if a.Colormap == nil {
		t.Fatalf("colormap not bound")
	}
	if got := a.Color(&expr.ItemStack{Damage: 10, MaxDamage: 40}, 0); got != 0xFF3366AA {
		t.Fatalf("color = %#x", got)
	}
	if got := f.get(t, "stick").Color(nil, 0); got != colormap.White {
		t.Fatalf("untinted item should be white, got %#x", got)
	}
}

func TestMissingTextureDropsColormap(t *testing.T) {
	f := newFixture()
	p := resourcetest.New(t).JSON(ia+"stick.json", `{"colormap": {"x_axis": 1, "y_axis": 1}, "model_overrides": [{"model": "item/long_stick", "stack_count": 64}]}`)
	if err := f.cycle(t, resourcetest.Source(p)); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if !f.log.Contains("warn", "dropping unresolved item colormap") {
		t.Fatalf("expected a drop warning")
	}
	a := f.get(t, "stick")
	if a.Colormap != nil || len(a.ModelOverrides) != 1 {
		t.Fatalf("expected overrides without a colormap, got %+v", a)
	}
}

func TestDanglingReferenceFailsCategory(t *testing.T) {
	f := newFixture()
	p := resourcetest.New(t).JSON(ia+"stick.json", `{"colormap": "minecraft:nope"}`)
	if err := f.cycle(t, resourcetest.Source(p)); !errors.Is(err, domain.ErrUnresolvedReference) {
		t.Fatalf("expected unresolved reference, got %v", err)
	}
}

func TestMalformedSkippedAndUnknownTargetIgnored(t *testing.T) {
	f := newFixture()
	p := resourcetest.New(t).
		JSON(ia+"broken.json", `{"item": 7}`).
		JSON(ia+"ghost.json", `{"targets": ["not_an_item", "stick"], "model_overrides": [{"model": "item/ghost"}]}`)
	if err := f.cycle(t, resourcetest.Source(p)); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if !f.log.Contains("error", "skipping malformed item appearance") {
		t.Fatalf("malformed document not reported")
	}
	if got := f.get(t, "stick"); len(got.ModelOverrides) != 1 {
		t.Fatalf("stick override missing")
	}
	if f.m.Applied() != 1 {
		t.Fatalf("applied = %d", f.m.Applied())
	}
}

func TestApplyEmptiesRegistry(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := resourcetest.New(t).JSON(ia+"stick.json", `{"model_overrides": [{"model": "item/magic_stick"}]}`)
	b, err := f.m.Prepare(ctx, resourcetest.Source(p))
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if err := f.m.Process(ctx, b); err != nil {
		t.Fatalf("process: %v", err)
	}
	if _, ok := f.m.Get(rid("stick")); !ok {
		t.Fatalf("stick should be registered after process")
	}
	if err := f.m.Apply(ctx); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, ok := f.m.Get(rid("stick")); ok {
		t.Fatalf("apply must empty the registry")
	}
	if got := f.get(t, "stick"); len(got.ModelOverrides) != 1 {
		t.Fatalf("installed value lost: %+v", got)
	}
}
