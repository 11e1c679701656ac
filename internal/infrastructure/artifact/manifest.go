package artifact

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the optional descriptor at the root of an artifact directory.
const ManifestFile = "manifest.yaml"

// Manifest names the files of an artifact set and pins their digests.
type Manifest struct {
	Version     string            `yaml:"version"`
	Description string            `yaml:"description,omitempty"`
	Files       ManifestFiles     `yaml:"files"`
	SHA256      map[string]string `yaml:"sha256,omitempty"`
}

// ManifestFiles holds the file names of each artifact.
type ManifestFiles struct {
	Columns string `yaml:"columns"`
	Scaler  string `yaml:"scaler"`
	Model   string `yaml:"model"`
}

// DefaultManifest is used when a directory has no manifest.yaml.
func DefaultManifest() Manifest {
	return Manifest{
		Files: ManifestFiles{
			Columns: "columns.json",
			Scaler:  "scaler.json",
			Model:   "model.json",
		},
	}
}

// ParseManifest decodes manifest.yaml, filling unset file names with defaults.
func ParseManifest(data []byte) (Manifest, error) {
	m := DefaultManifest()
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to decode manifest: %w", err)
	}

	defaults := DefaultManifest().Files
	if m.Files.Columns == "" {
		m.Files.Columns = defaults.Columns
	}
	if m.Files.Scaler == "" {
		m.Files.Scaler = defaults.Scaler
	}
	if m.Files.Model == "" {
		m.Files.Model = defaults.Model
	}
	return m, nil
}
