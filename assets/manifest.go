package assets

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// TypeImage is the only resource type the loader understands.
const TypeImage = "image"

// SpriteKey is the manifest key of the blended sprite.
const SpriteKey = "sprite0"

// ErrUnsupportedType is returned for manifest entries that are not images.
var ErrUnsupportedType = errors.New("unsupported asset type")

// Entry is one manifest resource.
type Entry struct {
	Type string `yaml:"type"`
	Src  string `yaml:"src"`
}

// Manifest maps a logical key to the resource it loads.
type Manifest map[string]Entry

// DefaultManifest is the single sprite the demo blends over the background.
func DefaultManifest() Manifest {
	return Manifest{
		SpriteKey: {Type: TypeImage, Src: "./media/sprite0.png"},
	}
}

// Keys returns the manifest keys in sorted order.
func (m Manifest) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate rejects empty manifests, empty sources and non-image entries.
func (m Manifest) Validate() error {
	if len(m) == 0 {
		return fmt.Errorf("manifest is empty")
	}
	for _, key := range m.Keys() {
		e := m[key]
		if e.Type != TypeImage {
			return fmt.Errorf("asset %q: %w: %q", key, ErrUnsupportedType, e.Type)
		}
		if e.Src == "" {
			return fmt.Errorf("asset %q has no src", key)
		}
	}
	return nil
}

// ParseManifest decodes a YAML manifest:
//
//	sprite0:
//	  type: image
//	  src: ./media/sprite0.png
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadManifestFile reads and parses a YAML manifest from disk.
func LoadManifestFile(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return ParseManifest(data)
}
