package legacy

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/tidwall/sjson"
	"gopkg.in/ini.v1"

	"tintcore/pkg/domain"
)

const palettePrefix = "palette.block."

func loadProperties(data []byte) (*ini.Section, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters:  "=",
		IgnoreInlineComment: true,
		Insensitive:         false,
		AllowShadows:        false,
	}, data)
	if err != nil {
		return nil, err
	}
	return f.Section(ini.DefaultSection), nil
}

// ParseColorProperties reads a color.properties file and returns, per
// palette texture, the blocks that texture tints. Unparseable block names are
// dropped.
func ParseColorProperties(data []byte) (map[domain.ResourceID][]domain.ResourceID, error) {
	sec, err := loadProperties(data)
	if err != nil {
		return nil, fmt.Errorf("legacy: color.properties: %w", err)
	}
	out := make(map[domain.ResourceID][]domain.ResourceID)
	for _, key := range sec.Keys() {
		name := key.Name()
		if !strings.HasPrefix(name, palettePrefix) {
			continue
		}
		tex, err := paletteTexture(strings.TrimPrefix(name, palettePrefix))
		if err != nil {
			continue
		}
		for _, raw := range strings.Fields(key.Value()) {
			block, err := domain.ParseResourceID(raw)
			if err != nil {
				continue
			}
			out[tex] = append(out[tex], block)
		}
	}
	return out, nil
}

// paletteTexture turns "~/colormap/custom/pine.png" into "custom/pine".
func paletteTexture(raw string) (domain.ResourceID, error) {
	p := strings.TrimPrefix(raw, "~/")
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimPrefix(p, "colormap/")
	p = strings.TrimSuffix(p, ".png")
	id, err := domain.ParseResourceID(p)
	if err != nil {
		return domain.ResourceID{}, err
	}
	return RemapID(id), nil
}

// ConvertColormapProperties turns an OptiFine custom colormap .properties
// file into a block-properties JSON document for id. Supported formats are
// vanilla (temperature/downfall triangle), grid (biome id by height) and
// fixed (a single color).
func ConvertColormapProperties(id domain.ResourceID, data []byte) ([]byte, error) {
	sec, err := loadProperties(data)
	if err != nil {
		return nil, fmt.Errorf("legacy: %s: %w", id, err)
	}
	doc := []byte(`{}`)
	format := strings.ToLower(strings.TrimSpace(sec.Key("format").MustString("vanilla")))
	switch format {
	case "fixed":
		color := strings.TrimPrefix(strings.TrimSpace(sec.Key("color").MustString("ffffff")), "#")
		doc, err = sjson.SetBytes(doc, "tint", "#"+color)
	case "vanilla", "grid":
		tint := []byte(`{}`)
		if format == "grid" {
			tint, _ = sjson.SetBytes(tint, "x_axis", "biome_id")
			tint, _ = sjson.SetBytes(tint, "y_axis", "y_level")
		} else {
			tint, _ = sjson.SetBytes(tint, "x_axis", "temperature")
			tint, _ = sjson.SetBytes(tint, "y_axis", "downfall")
			tint, _ = sjson.SetBytes(tint, "triangular", true)
		}
		if src := strings.TrimSpace(sec.Key("source").String()); src != "" {
			tex, terr := sourceTexture(id, src)
			if terr != nil {
				return nil, fmt.Errorf("legacy: %s: source: %w", id, terr)
			}
			tint, _ = sjson.SetBytes(tint, "texture_path", tex.String())
		}
		doc, err = sjson.SetRawBytes(doc, "tint", tint)
	default:
		return nil, fmt.Errorf("legacy: %s: unsupported format %q", id, format)
	}
	if err != nil {
		return nil, err
	}
	targets := blockList(sec.Key("blocks").String())
	if len(targets) == 0 {
		targets = []string{RemapID(id.WithPath(path.Base(id.Path))).String()}
	}
	return sjson.SetBytes(doc, "targets", targets)
}

// sourceTexture resolves a source= value relative to the properties file.
func sourceTexture(id domain.ResourceID, src string) (domain.ResourceID, error) {
	src = strings.TrimSuffix(src, ".png")
	switch {
	case strings.HasPrefix(src, "./"):
		dir := path.Dir(id.Path)
		joined := path.Join(dir, strings.TrimPrefix(src, "./"))
		return RemapID(id.WithPath(joined)), nil
	case strings.HasPrefix(src, "~/colormap/"):
		return RemapID(id.WithPath(strings.TrimPrefix(src, "~/colormap/"))), nil
	}
	parsed, err := domain.ParseResourceID(src)
	if err != nil {
		return domain.ResourceID{}, err
	}
	return RemapID(parsed), nil
}

func blockList(raw string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Fields(raw) {
		id, err := domain.ParseResourceID(f)
		if err != nil {
			continue
		}
		s := id.String()
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
