package memory

import (
	"errors"
	"testing"

	"tintcore/pkg/domain"
)

func TestStaticTargets(t *testing.T) {
	oak := domain.MustParseResourceID("oak_leaves")
	tg := New(map[domain.ResourceID]int{oak: 1})
	h, ok := tg.Lookup(oak)
	if !ok {
		t.Fatalf("lookup failed")
	}
	if err := tg.SetValue(h, 5); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, _ := tg.Value(h); v != 5 {
		t.Fatalf("value = %d", v)
	}
	if _, ok := tg.Lookup(domain.MustParseResourceID("missing")); ok {
		t.Fatalf("unexpected lookup hit")
	}
	if err := tg.Unregister(oak); err == nil {
		t.Fatalf("static targets must not unregister")
	}
}

func TestDynamicTargets(t *testing.T) {
	tg := New[string](nil)
	spark := domain.MustParseResourceID("mod:spark")
	if _, err := tg.Register(spark, "a"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := tg.Register(spark, "b"); err == nil {
		t.Fatalf("expected duplicate register error")
	}
	if !tg.Dynamic(spark) || len(tg.IDs()) != 1 {
		t.Fatalf("dynamic target not tracked")
	}
	if err := tg.Unregister(spark); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if _, ok := tg.Get(spark); ok {
		t.Fatalf("target should be gone")
	}
}

func TestFailOn(t *testing.T) {
	id := domain.MustParseResourceID("stone")
	boom := errors.New("boom")
	tg := New(map[domain.ResourceID]int{id: 0})
	tg.FailOn = map[domain.ResourceID]error{id: boom}
	h, _ := tg.Lookup(id)
	if err := tg.SetValue(h, 1); !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}
}
