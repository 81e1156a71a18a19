// Package config loads the warpd daemon configuration file.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the warpd daemon configuration, loaded from a TOML file.
type Config struct {
	// Binary is the wrapped CLI executable name.
	Binary string `toml:"binary"`
	// Chains is the ordered list of chains reconciled after warp deployment.
	Chains []string `toml:"chains"`
	// KeyEnv names the environment variable holding the deployer signing key.
	KeyEnv string `toml:"key_env"`
	Docker Docker `toml:"docker"`
}

// Docker configures the container-backed process manager. When disabled,
// commands run through the host shell.
type Docker struct {
	Enabled    bool   `toml:"enabled"`
	Repository string `toml:"repository"`
	Version    string `toml:"version"`
	NetworkID  string `toml:"network_id"`
	VolumeName string `toml:"volume_name"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Binary: "hyperlane",
		Chains: []string{"holesky", "tangletestnet"},
		KeyEnv: "HYP_KEY",
	}
}

// Load reads path and applies defaults for unset fields.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the loaded configuration for required fields.
func (c Config) Validate() error {
	if c.Binary == "" {
		return fmt.Errorf("binary must not be empty")
	}
	if len(c.Chains) == 0 {
		return fmt.Errorf("at least one chain is required")
	}
	if c.KeyEnv == "" {
		return fmt.Errorf("key_env must not be empty")
	}
	if c.Docker.Enabled && c.Docker.Repository == "" {
		return fmt.Errorf("docker.repository is required when docker is enabled")
	}
	return nil
}
