// Package resourcetest builds in-memory resource packs for category tests.
package resourcetest

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"tintcore/internal/pack"
	"tintcore/internal/resource"
)

// Pack is an in-memory pack store with helpers for writing assets.
type Pack struct {
	t     testing.TB
	Store pack.Store
}

// New returns an empty pack.
func New(t testing.TB) *Pack {
	t.Helper()
	return &Pack{t: t, Store: pack.NewMemory()}
}

// Put writes raw bytes under a pack key such as
// "assets/minecraft/colormaps/grass.json".
func (p *Pack) Put(key string, data []byte) *Pack {
	p.t.Helper()
	if _, err := p.Store.Put(context.Background(), key, bytes.NewReader(data), pack.PutOptions{}); err != nil {
		p.t.Fatalf("put %s: %v", key, err)
	}
	return p
}

// JSON writes a document.
func (p *Pack) JSON(key, doc string) *Pack {
	p.t.Helper()
	return p.Put(key, []byte(doc))
}

// PNG writes a w by h image filled with one ARGB color.
func (p *Pack) PNG(key string, w, h int, argb uint32) *Pack {
	p.t.Helper()
	return p.Put(key, PNGBytes(p.t, w, h, argb))
}

// Source layers the given packs, later ones winning.
func Source(packs ...*Pack) *resource.PackSource {
	stores := make([]pack.Store, 0, len(packs))
	for _, p := range packs {
		stores = append(stores, p.Store)
	}
	return resource.NewPackSource(nil, stores...)
}

// PNGBytes encodes a solid image.
func PNGBytes(t testing.TB, w, h int, argb uint32) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	c := color.NRGBA{A: uint8(argb >> 24), R: uint8(argb >> 16), G: uint8(argb >> 8), B: uint8(argb)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
