// Package config provides small helpers for loading configuration from
// environment variables and YAML files. Domain configuration structs live
// with their packages; this package only does the parsing.
package config

import (
	"github.com/caarlos0/env/v11"

	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// ParseEnv loads configuration from environment variables into target's
// env-tagged fields.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return tabErrors.Wrap(err, "parse env")
	}
	return nil
}
