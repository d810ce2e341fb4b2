package sparc

import (
	"os"
	"path/filepath"

	"rarscale/domain/rar"
	"rarscale/internal/errors"

	"gopkg.in/yaml.v3"
)

// Manifest pins down exactly which objects a run analyzes, with optional
// per-object morphology overrides for catalogs whose naming conventions
// defeat inference.
type Manifest struct {
	DataDir string           `yaml:"data_dir"`
	Objects []ManifestObject `yaml:"objects"`
}

// ManifestObject is one catalog entry.
type ManifestObject struct {
	Name       string `yaml:"name"`
	File       string `yaml:"file,omitempty"`       // defaults to <name>.txt
	Morphology string `yaml:"morphology,omitempty"` // dwarf, spiral; empty = infer
}

// LoadManifest parses a YAML run manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.LoadError(path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.LoadError(path, err)
	}
	if m.DataDir == "" {
		return nil, errors.ConfigurationError("manifest missing data_dir")
	}
	return &m, nil
}

// LoadFromManifest loads the manifest's objects in order. Missing files
// are logged and skipped, matching LoadCatalog's tolerance.
func (l *Loader) LoadFromManifest(m *Manifest) ([]rar.ObjectSamples, error) {
	catalog := make([]rar.ObjectSamples, 0, len(m.Objects))
	for _, entry := range m.Objects {
		file := entry.File
		if file == "" {
			file = entry.Name + ".txt"
		}
		obj, err := l.LoadObject(filepath.Join(m.DataDir, file))
		if err != nil {
			l.log.Warn("skipping %s: %v", entry.Name, err)
			continue
		}
		obj.Name = entry.Name
		if entry.Morphology != "" {
			obj.Morphology = rar.Morphology(entry.Morphology)
		} else {
			obj.Morphology = InferMorphology(entry.Name)
		}
		catalog = append(catalog, obj)
	}
	return catalog, nil
}
