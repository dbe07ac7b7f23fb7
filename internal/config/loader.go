package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if CATBOT_CONFIG is set
//  3. env (prefix CATBOT_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("CATBOT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: CATBOT_TOKEN, CATBOT_SPREADSHEET_NAME, ...
	// Keys keep their underscores to match the koanf tags on the struct.
	envProvider := env.Provider("CATBOT_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "catbot_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Token == "":
		return fmt.Errorf("%w: token must not be empty", ErrInvalidConfig)
	case c.SpreadsheetName == "":
		return fmt.Errorf("%w: spreadsheet_name must not be empty", ErrInvalidConfig)
	case c.CredentialsFile == "":
		return fmt.Errorf("%w: credentials_file must not be empty", ErrInvalidConfig)
	}
	return nil
}
