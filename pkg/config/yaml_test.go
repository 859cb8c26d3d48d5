package config

import (
	"path/filepath"
	"testing"
)

type yamlTestConfig struct {
	Formula  string `yaml:"formula"`
	Encoding string `yaml:"encoding"`
	Folds    int    `yaml:"folds"`
}

func TestLoadYAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "experiment.yaml")

	in := yamlTestConfig{Formula: "mpg ~ .", Encoding: "onehot", Folds: 5}
	if err := SaveYAML(path, &in); err != nil {
		t.Fatalf("save yaml: %v", err)
	}

	var out yamlTestConfig
	if err := LoadYAML(path, &out); err != nil {
		t.Fatalf("load yaml: %v", err)
	}

	if out != in {
		t.Fatalf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestLoadYAMLMissingFile(t *testing.T) {
	var out yamlTestConfig
	err := LoadYAML(filepath.Join(t.TempDir(), "absent.yaml"), &out)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadYAMLMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	if err := SaveYAML(path, "formula: [unclosed"); err != nil {
		t.Fatalf("save yaml: %v", err)
	}

	// The file now holds a quoted string, which cannot populate a struct.
	var out yamlTestConfig
	if err := LoadYAML(path, &out); err == nil {
		t.Fatal("expected error for mismatched document")
	}
}
