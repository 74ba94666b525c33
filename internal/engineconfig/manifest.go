package engineconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// HostModuleManifest declares which host modules an embedding
// application wants wired into a Registry, and their connection
// parameters, without the application needing to write Go wiring code
// for the common case (§6's "host module registration").
type HostModuleManifest struct {
	Modules []HostModuleEntry `yaml:"modules"`
}

// HostModuleEntry configures one pkg/hostlib module.
type HostModuleEntry struct {
	Name    string            `yaml:"name"`
	Module  string            `yaml:"module"`
	Enabled bool              `yaml:"enabled"`
	Options map[string]string `yaml:"options,omitempty"`
}

// LoadHostModuleManifest reads and parses a YAML manifest from disk.
func LoadHostModuleManifest(path string) (*HostModuleManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading host module manifest: %w", err)
	}

	var manifest HostModuleManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing host module manifest: %w", err)
	}

	return &manifest, nil
}

// Find returns the entry for a given module name, if present.
func (m *HostModuleManifest) Find(name string) (HostModuleEntry, bool) {
	for _, e := range m.Modules {
		if e.Name == name {
			return e, true
		}
	}
	return HostModuleEntry{}, false
}
