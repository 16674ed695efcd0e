package resource

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"tintcore/internal/logging"
	"tintcore/internal/pack"
	"tintcore/pkg/domain"
)

func rid(s string) domain.ResourceID { return domain.MustParseResourceID(s) }

func pngBytes(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func put(t *testing.T, s pack.Store, key string, data []byte) {
	t.Helper()
	if _, err := s.Put(context.Background(), key, bytes.NewReader(data), pack.PutOptions{}); err != nil {
		t.Fatalf("put %s: %v", key, err)
	}
}

func TestKeyID(t *testing.T) {
	cases := []struct {
		key, root, ext string
		want           string
		ok             bool
	}{
		{"assets/minecraft/colormaps/grass.json", "colormaps", ".json", "minecraft:grass", true},
		{"assets/mod/colormaps/sub/leaf_1.png", "colormaps", ".png", "mod:sub/leaf_1", true},
		{"assets/minecraft/colormaps/grass.png", "colormaps", ".json", "", false},
		{"assets/minecraft/lightmaps/grass.json", "colormaps", ".json", "", false},
		{"data/minecraft/colormaps/grass.json", "colormaps", ".json", "", false},
		{"assets/minecraft/colormaps/Bad Name.json", "colormaps", ".json", "", false},
	}
	for _, tc := range cases {
		id, ok := KeyID(tc.key, tc.root, tc.ext)
		if ok != tc.ok || (ok && id.String() != tc.want) {
			t.Fatalf("KeyID(%s) = %v %v, want %s %v", tc.key, id, ok, tc.want, tc.ok)
		}
		if ok && Key(id, tc.root, tc.ext) != tc.key {
			t.Fatalf("Key(%v) did not round trip to %s", id, tc.key)
		}
	}
}

func TestPackSourceLayering(t *testing.T) {
	base := pack.NewMemory()
	top := pack.NewMemory()
	put(t, base, "assets/minecraft/colormaps/grass.json", []byte(`{"from":"base"}`))
	put(t, base, "assets/minecraft/colormaps/water.json", []byte(`{"from":"base"}`))
	put(t, top, "assets/minecraft/colormaps/grass.json", []byte(`{"from":"top"}`))
	put(t, top, "assets/minecraft/lightmaps/overworld.json", []byte(`{}`))

	src := NewPackSource(nil, base, top)
	docs, err := src.Documents(context.Background(), "colormaps")
	if err != nil {
		t.Fatalf("documents: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if string(docs[rid("grass")].Data) != `{"from":"top"}` {
		t.Fatalf("later pack should win: %s", docs[rid("grass")].Data)
	}
	if docs[rid("water")].Source != "assets/minecraft/colormaps/water.json" {
		t.Fatalf("unexpected source %q", docs[rid("water")].Source)
	}
}

func TestPackSourceImagesSkipsUnreadable(t *testing.T) {
	s := pack.NewMemory()
	put(t, s, "assets/minecraft/colormaps/grass.png", pngBytes(t, 4, 2, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xFF}))
	put(t, s, "assets/minecraft/colormaps/broken.png", []byte("not a png"))
	log := &logging.Capture{}
	layer, err := NewPackSource(log, s).Images(context.Background(), "colormaps")
	if err != nil {
		t.Fatalf("images: %v", err)
	}
	img, ok := layer[rid("grass")]
	if !ok || img.Width != 4 || img.Height != 2 {
		t.Fatalf("unexpected image %+v", img)
	}
	if img.At(0, 0) != 0xFF102030 {
		t.Fatalf("unexpected pixel %08x", img.At(0, 0))
	}
	if _, ok := layer[rid("broken")]; ok {
		t.Fatalf("broken image should be skipped")
	}
	if !log.Contains("error", "unreadable image") {
		t.Fatalf("expected unreadable image log, got %v", log.Entries())
	}
}

type failingStore struct{ pack.Store }

func (failingStore) List(context.Context, string) ([]pack.Info, error) {
	return nil, errors.New("bucket offline")
}

type unreadableStore struct{ pack.Store }

func (unreadableStore) Get(context.Context, string) (pack.Info, io.ReadCloser, error) {
	return pack.Info{}, nil, errors.New("disk gone")
}

func TestPackSourceScanErrors(t *testing.T) {
	var scanErr *domain.ScanError
	_, err := NewPackSource(nil, failingStore{pack.NewMemory()}).Documents(context.Background(), "colormaps")
	if !errors.As(err, &scanErr) || scanErr.Root != "colormaps" {
		t.Fatalf("expected ScanError, got %v", err)
	}

	mem := pack.NewMemory()
	put(t, mem, "assets/minecraft/colormaps/grass.json", []byte(`{}`))
	_, err = NewPackSource(nil, unreadableStore{mem}).Documents(context.Background(), "colormaps")
	if !errors.As(err, &scanErr) {
		t.Fatalf("expected ScanError on read failure, got %v", err)
	}
}

func TestCompatImagesRemapsAndLayers(t *testing.T) {
	s := pack.NewMemory()
	put(t, s, "assets/minecraft/optifine/colormap/pine.png", pngBytes(t, 1, 1, color.NRGBA{R: 1, A: 0xFF}))
	put(t, s, "assets/minecraft/optifine/colormap/blocks/redstone.png", pngBytes(t, 1, 1, color.NRGBA{R: 2, A: 0xFF}))
	put(t, s, "assets/minecraft/colormatic/colormap/pine.png", pngBytes(t, 1, 1, color.NRGBA{R: 3, A: 0xFF}))
	layer, err := CompatImages(context.Background(), NewPackSource(nil, s))
	if err != nil {
		t.Fatalf("compat: %v", err)
	}
	if got := layer[rid("spruce_leaves")].At(0, 0); got != 0xFF030000 {
		t.Fatalf("colormatic root should override optifine, got %08x", got)
	}
	if _, ok := layer[rid("redstone_wire")]; !ok {
		t.Fatalf("expected remapped redstone_wire, got %v", layer)
	}
}

func TestCompatFiles(t *testing.T) {
	s := pack.NewMemory()
	put(t, s, "assets/minecraft/optifine/colormap/swampgrass.properties", []byte("format=grid\n"))
	files, err := CompatFiles(context.Background(), NewPackSource(nil, s), ExtProperties)
	if err != nil {
		t.Fatalf("compat files: %v", err)
	}
	doc, ok := files[rid("swamp_grass")]
	if !ok || doc.ID != rid("swamp_grass") {
		t.Fatalf("unexpected files %v", files)
	}
}
