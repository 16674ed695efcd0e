package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"tintcore/internal/pack/core"
)

func TestStoreGetHeadNotFoundAndSuccess(t *testing.T) {
	store := New()
	ctx := context.Background()
	if _, _, err := store.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected get missing error, got %v", err)
	}
	if _, err := store.Head(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected head missing error, got %v", err)
	}
	info, err := store.Put(ctx, "assets/minecraft/lightmaps/overworld.json", bytes.NewBufferString("{}"), core.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 2 || info.ETag == "" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "assets/minecraft/lightmaps/overworld.json", bytes.NewBufferString("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected exists error, got %v", err)
	}
	_, rc, err := store.Get(ctx, "assets/minecraft/lightmaps/overworld.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if string(b) != "{}" {
		t.Fatalf("unexpected body %q", b)
	}
}

func TestListPrefixAndDelete(t *testing.T) {
	store := New()
	ctx := context.Background()
	for _, k := range []string{"b/2", "a/1", "b/1"} {
		if _, err := store.Put(ctx, k, bytes.NewReader(nil), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	list, _ := store.List(ctx, "b/")
	if len(list) != 2 || list[0].Key != "b/1" {
		t.Fatalf("unexpected list %+v", list)
	}
	all, _ := store.List(ctx, "")
	if len(all) != 3 {
		t.Fatalf("empty prefix should list everything")
	}
	if ok, _ := store.Delete(ctx, "a/1"); !ok {
		t.Fatalf("delete existing should report true")
	}
	if ok, _ := store.Delete(ctx, "a/1"); ok {
		t.Fatalf("delete missing should report false")
	}
	if store.Driver() != core.DriverMemory {
		t.Fatalf("driver mismatch")
	}
}
