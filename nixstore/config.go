package nixstore

import (
	"fmt"

	"github.com/spf13/viper"
)

const (
	envPrefix = "NIXGO"

	cfgKeyStoreURL = "store_url"
	cfgKeySettings = "settings"

	defaultStoreURL = "auto"
)

// Config selects a store and the Nix settings to apply before opening it.
type Config struct {
	// StoreURL is passed to Open. Defaults to "auto".
	StoreURL string `mapstructure:"store_url"`

	// Settings are applied with nix_setting_set. Keys are lower-cased by
	// the config loader, which matches Nix's own setting names.
	Settings map[string]string `mapstructure:"settings"`
}

// LoadConfig reads configuration from path (YAML, optional) and the
// environment. NIXGO_STORE_URL overrides store_url.
// An empty path reads the environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault(cfgKeyStoreURL, defaultStoreURL)
	v.SetDefault(cfgKeySettings, map[string]string{})
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.StoreURL == "" {
		return nil, fmt.Errorf("config: %s must not be empty", cfgKeyStoreURL)
	}
	return &cfg, nil
}
