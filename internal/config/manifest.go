package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tintcore/pkg/domain"
)

// Manifest lists the live targets a host exposes per category. The CLI
// seeds in-memory hosts from it.
type Manifest struct {
	Blocks     []domain.ResourceID `yaml:"blocks"`
	Dimensions []domain.ResourceID `yaml:"dimensions"`
	Particles  []domain.ResourceID `yaml:"particles"`
	Items      []domain.ResourceID `yaml:"items"`
}

// LoadManifest reads a YAML manifest. An empty path yields an empty manifest.
func LoadManifest(path string) (Manifest, error) {
	var m Manifest
	if path == "" {
		return m, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("config: read manifest %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("config: parse manifest %s: %w", path, err)
	}
	return m, nil
}
