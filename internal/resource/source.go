// Package resource scans layered resource packs for documents and images.
package resource

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"strings"

	"tintcore/internal/legacy"
	"tintcore/internal/logging"
	"tintcore/internal/pack"
	"tintcore/internal/texture"
	"tintcore/pkg/domain"
)

// Extensions understood by the scanner.
const (
	ExtJSON       = ".json"
	ExtPNG        = ".png"
	ExtProperties = ".properties"
)

// Source is the read side of the resource packs. Roots are logical
// directories such as "colormaps" or "optifine/colormap".
type Source interface {
	Documents(ctx context.Context, root string) (map[domain.ResourceID]domain.Document, error)
	Images(ctx context.Context, root string) (texture.Layer, error)
	Files(ctx context.Context, root, ext string) (map[domain.ResourceID]domain.Document, error)
}

// PackSource reads from an ordered list of pack stores. Later stores
// override earlier ones for the same resource id.
type PackSource struct {
	stores []pack.Store
	log    logging.Logger
}

// NewPackSource builds a source over stores in priority order (lowest first).
func NewPackSource(log logging.Logger, stores ...pack.Store) *PackSource {
	return &PackSource{stores: stores, log: logging.OrNoop(log)}
}

// Documents returns the JSON documents under root.
func (s *PackSource) Documents(ctx context.Context, root string) (map[domain.ResourceID]domain.Document, error) {
	return s.Files(ctx, root, ExtJSON)
}

// Files returns every file under root with the given extension.
func (s *PackSource) Files(ctx context.Context, root, ext string) (map[domain.ResourceID]domain.Document, error) {
	out := make(map[domain.ResourceID]domain.Document)
	err := s.walk(ctx, root, ext, func(store pack.Store, key string, id domain.ResourceID) error {
		data, err := read(ctx, store, key)
		if err != nil {
			return &domain.ScanError{Root: root, Err: fmt.Errorf("read %s: %w", key, err)}
		}
		out[id] = domain.Document{ID: id, Source: key, Data: data}
		return nil
	})
	return out, err
}

// Images decodes the PNG files under root. Files that fail to decode are
// logged and skipped.
func (s *PackSource) Images(ctx context.Context, root string) (texture.Layer, error) {
	out := make(texture.Layer)
	err := s.walk(ctx, root, ExtPNG, func(store pack.Store, key string, id domain.ResourceID) error {
		data, err := read(ctx, store, key)
		if err != nil {
			return &domain.ScanError{Root: root, Err: fmt.Errorf("read %s: %w", key, err)}
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			s.log.Error("skipping unreadable image", "key", key, "error", err)
			return nil
		}
		out[id] = domain.FromImage(img)
		return nil
	})
	return out, err
}

func (s *PackSource) walk(ctx context.Context, root, ext string, fn func(pack.Store, string, domain.ResourceID) error) error {
	root = strings.Trim(root, "/")
	for _, store := range s.stores {
		infos, err := store.List(ctx, "assets/")
		if err != nil {
			return &domain.ScanError{Root: root, Err: err}
		}
		for _, info := range infos {
			id, ok := KeyID(info.Key, root, ext)
			if !ok {
				continue
			}
			if err := fn(store, info.Key, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// KeyID maps a pack key "assets/<ns>/<root>/<path><ext>" to "<ns>:<path>".
func KeyID(key, root, ext string) (domain.ResourceID, bool) {
	rest, ok := strings.CutPrefix(key, "assets/")
	if !ok || !strings.HasSuffix(rest, ext) {
		return domain.ResourceID{}, false
	}
	ns, p, ok := strings.Cut(rest, "/")
	if !ok {
		return domain.ResourceID{}, false
	}
	p, ok = strings.CutPrefix(p, root+"/")
	if !ok {
		return domain.ResourceID{}, false
	}
	p = strings.TrimSuffix(p, ext)
	id, err := domain.ParseResourceID(ns + ":" + p)
	if err != nil {
		return domain.ResourceID{}, false
	}
	return id, true
}

// Key is the inverse of KeyID.
func Key(id domain.ResourceID, root, ext string) string {
	return "assets/" + id.Namespace + "/" + strings.Trim(root, "/") + "/" + id.Path + ext
}

func read(ctx context.Context, store pack.Store, key string) ([]byte, error) {
	_, rc, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

// CompatImages scans the compatibility roots and remaps their ids onto the
// native names. Later roots win.
func CompatImages(ctx context.Context, src Source) (texture.Layer, error) {
	var layers []texture.Layer
	for _, root := range legacy.CompatRoots() {
		l, err := src.Images(ctx, root)
		if err != nil {
			return nil, err
		}
		layers = append(layers, legacy.RemapLayer(l))
	}
	return texture.Merge(layers...), nil
}

// CompatFiles scans the compatibility roots for files with ext, remapping
// ids the same way CompatImages does.
func CompatFiles(ctx context.Context, src Source, ext string) (map[domain.ResourceID]domain.Document, error) {
	out := make(map[domain.ResourceID]domain.Document)
	for _, root := range legacy.CompatRoots() {
		files, err := src.Files(ctx, root, ext)
		if err != nil {
			return nil, err
		}
		for id, doc := range files {
			to := legacy.RemapID(id)
			doc.ID = to
			out[to] = doc
		}
	}
	return out, nil
}
