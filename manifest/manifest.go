// Package manifest reads som.toml, the runtime configuration file:
// which image to run, its entry point, and the interpreter limits.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultFileName is the manifest file looked up in a project directory.
const DefaultFileName = "som.toml"

// Manifest is the top-level configuration.
type Manifest struct {
	Program Program `toml:"program"`
	Runtime Runtime `toml:"runtime"`
}

// Program names the image and its entry contract.
type Program struct {
	Image    string   `toml:"image"`
	Entry    string   `toml:"entry"`
	Selector string   `toml:"selector"`
	Args     []string `toml:"args"`
}

// Runtime holds interpreter limits. Zero values mean the VM defaults.
type Runtime struct {
	MaxFrameDepth int `toml:"max_frame_depth"`
	GCThreshold   int `toml:"gc_threshold"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes manifest bytes. Relative image paths are resolved
// against baseDir.
func Parse(data []byte, baseDir string) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parse: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	if m.Program.Image != "" && !filepath.IsAbs(m.Program.Image) && baseDir != "" {
		m.Program.Image = filepath.Join(baseDir, m.Program.Image)
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if m.Program.Image == "" {
		return fmt.Errorf("manifest: program.image is required")
	}
	if m.Program.Entry == "" {
		return fmt.Errorf("manifest: program.entry is required")
	}
	if m.Runtime.MaxFrameDepth < 0 {
		return fmt.Errorf("manifest: runtime.max_frame_depth must not be negative")
	}
	if m.Runtime.GCThreshold < 0 {
		return fmt.Errorf("manifest: runtime.gc_threshold must not be negative")
	}
	return nil
}

// EntrySelector returns the configured selector, defaulting to "run".
func (m *Manifest) EntrySelector() string {
	if m.Program.Selector == "" {
		return "run"
	}
	return m.Program.Selector
}
