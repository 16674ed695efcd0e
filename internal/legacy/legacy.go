// Package legacy converts OptiFine and Colormatic resource layouts into the
// native document and texture layout.
package legacy

import (
	"strings"

	"tintcore/internal/texture"
	"tintcore/pkg/domain"
)

// Roots that hold compatibility colormap textures and properties.
const (
	OptiFineRoot   = "optifine/colormap"
	ColormaticRoot = "colormatic/colormap"
)

// CompatRoots lists the compatibility roots in merge order.
func CompatRoots() []string { return []string{OptiFineRoot, ColormaticRoot} }

var renames = map[string]string{
	"pine":         "spruce_leaves",
	"birch":        "birch_leaves",
	"redstone":     "redstone_wire",
	"pumpkinstem":  "pumpkin_stem",
	"melonstem":    "melon_stem",
	"swampgrass":   "swamp_grass",
	"swampfoliage": "swamp_foliage",
}

// RemapID rewrites a compatibility texture id onto its native block name.
// Ids outside the rename table only lose a leading "blocks/" segment.
func RemapID(id domain.ResourceID) domain.ResourceID {
	path := strings.TrimPrefix(id.Path, "blocks/")
	if to, ok := renames[path]; ok {
		path = to
	}
	return id.WithPath(path)
}

// RemapLayer applies RemapID to every key of l. When two ids collapse onto
// the same name the lexically later source wins, so output is deterministic.
func RemapLayer(l texture.Layer) texture.Layer {
	out := make(texture.Layer, len(l))
	sources := make(map[domain.ResourceID]domain.ResourceID, len(l))
	for id, img := range l {
		to := RemapID(id)
		if prev, ok := sources[to]; ok && prev.Compare(id) > 0 {
			continue
		}
		sources[to] = id
		out[to] = img
	}
	return out
}
