package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"modulehost/internal/module"
)

// ManifestFile is the conventional file name the loader expects inside
// the configured module directory.
const ManifestFile = "module.json"

// Manifest names the module implementation to run and carries its
// settings. It is the on-disk convention replacing dynamic code
// loading: the directory selects the implementation, the binary
// provides it.
type Manifest struct {
	Name     string            `json:"name"`
	Settings map[string]string `json:"settings"`
}

// ReadManifest resolves modulePath to its manifest. A missing
// directory or manifest file is startup-fatal: there is no default
// plugin and no silent fallback.
func ReadManifest(modulePath string) (*Manifest, error) {
	manifestPath := filepath.Join(modulePath, ManifestFile)

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("module implementation not found at %s: %w", manifestPath, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid module manifest %s: %w", manifestPath, err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("module manifest %s has no name", manifestPath)
	}
	if m.Settings == nil {
		m.Settings = map[string]string{}
	}
	return &m, nil
}

// Load reads the manifest at modulePath and instantiates the named
// module in one step.
func Load(modulePath string) (module.Module, *Manifest, error) {
	m, err := ReadManifest(modulePath)
	if err != nil {
		return nil, nil, err
	}
	inst, err := New(m.Name, m.Settings)
	if err != nil {
		return nil, nil, err
	}
	return inst, m, nil
}
