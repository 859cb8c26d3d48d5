package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// LoadYAML reads a YAML file into target.
func LoadYAML(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return tabErrors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return tabErrors.Wrap(err, "parse config")
	}
	return nil
}

// SaveYAML marshals source to YAML and writes it to path, creating parent
// directories as needed.
func SaveYAML(path string, source any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return tabErrors.Wrap(err, "create config directory")
	}

	data, err := yaml.Marshal(source)
	if err != nil {
		return tabErrors.Wrap(err, "marshal config")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return tabErrors.Wrap(err, "write config")
	}
	return nil
}
