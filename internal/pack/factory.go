package pack

import (
	"context"
	"fmt"
	"strings"
)

// Source configures one pack in the layered pack list.
type Source struct {
	Name      string `yaml:"name"`
	Driver    Driver `yaml:"driver"`
	Root      string `yaml:"root"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// Open constructs the Store described by src. An empty driver means fs.
func Open(ctx context.Context, src Source) (Store, error) {
	driver := src.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return NewFilesystem(src.Root)
	case DriverS3:
		return NewS3(ctx, S3Config{
			Bucket:    src.Bucket,
			Prefix:    src.Prefix,
			Region:    src.Region,
			Endpoint:  src.Endpoint,
			PathStyle: src.PathStyle,
		})
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown pack driver %s", driver)
	}
}

// OpenAll opens sources in order; the returned slice keeps that order so
// later packs override earlier ones.
func OpenAll(ctx context.Context, srcs []Source) ([]Store, error) {
	out := make([]Store, 0, len(srcs))
	for i, src := range srcs {
		s, err := Open(ctx, src)
		if err != nil {
			name := src.Name
			if strings.TrimSpace(name) == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("open pack %s: %w", name, err)
		}
		out = append(out, s)
	}
	return out, nil
}
