package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Folds int `env:"TABPREP_TEST_FOLDS" envDefault:"5"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Folds != 5 {
		t.Fatalf("expected default folds 5, got %d", cfg.Folds)
	}
}

func TestParseEnvOverride(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("TABPREP_TEST_FOLDS", "10")

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Folds != 10 {
		t.Fatalf("expected folds 10, got %d", cfg.Folds)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("TABPREP_TEST_FOLDS", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
