package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-yaml"
)

// Manifest describes where a built view bundle keeps its static assets
// and which JS chunk is the inlined runtime bootstrap.
type Manifest struct {
	AssetRoot    string   `yaml:"asset_root"`
	CSS          []string `yaml:"css"`
	JS           []string `yaml:"js"`
	RuntimeChunk string   `yaml:"runtime_chunk"`
}

// Assets is the discovered asset set, in deterministic discovery order.
type Assets struct {
	CSS []string
	JS  []string
}

// DefaultManifest matches a standard webpack build layout.
func DefaultManifest(root string) Manifest {
	return Manifest{
		AssetRoot:    root,
		CSS:          []string{"static/css/**/*.css"},
		JS:           []string{"static/js/**/*.js"},
		RuntimeChunk: "runtime",
	}
}

// LoadManifest reads a YAML manifest from path.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if m.RuntimeChunk == "" {
		m.RuntimeChunk = "runtime"
	}
	return m, nil
}

// Discover resolves the manifest's glob patterns against the asset
// root. Results are lexicographically sorted per pattern so repeated
// discovery over the same tree is byte-for-byte reproducible. The
// runtime bootstrap chunk is excluded: the bundle inlines it.
func (m Manifest) Discover() (Assets, error) {
	css, err := m.glob(m.CSS, "")
	if err != nil {
		return Assets{}, err
	}
	js, err := m.glob(m.JS, m.RuntimeChunk)
	if err != nil {
		return Assets{}, err
	}
	return Assets{CSS: css, JS: js}, nil
}

func (m Manifest) glob(patterns []string, skipPrefix string) ([]string, error) {
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(filepath.Join(m.AssetRoot, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, match := range matches {
			if skipPrefix != "" && strings.HasPrefix(filepath.Base(match), skipPrefix) {
				continue
			}
			paths = append(paths, match)
		}
	}
	return paths, nil
}
