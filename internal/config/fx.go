package config

import "go.uber.org/fx"

// New loads and validates configuration. Validation failures abort app
// startup before any connection is opened.
func New() (Config, error) {
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Module wires validated configuration for the application.
var Module = fx.Module("config",
	fx.Provide(New),
)
