package manifest

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Pubspec contains the parts of a pubspec.yaml we care about
type Pubspec struct {
	Name            string                 `yaml:"name"`
	Dependencies    map[string]interface{} `yaml:"dependencies"`
	DevDependencies map[string]interface{} `yaml:"dev_dependencies"`
}

// ReadPubspec parses the pubspec.yaml at path
func ReadPubspec(path string) (*Pubspec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to read %s", path)
	}

	var spec Pubspec
	err = yaml.Unmarshal(data, &spec)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to parse %s", path)
	}

	return &spec, nil
}

// HasDependency reports whether name is a regular dependency
func (p *Pubspec) HasDependency(name string) bool {
	_, ok := p.Dependencies[name]
	return ok
}
