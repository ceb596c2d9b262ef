// Package config loads the service configuration from a YAML or JSON file
// with environment variable overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/dispatch"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/route"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/infra/geo"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/infra/notify"
)

// Config is the root configuration of the dispatch service.
type Config struct {
	HTTP     HTTPConfig        `json:"http"`
	Postgres PostgresConfig    `json:"postgres"`
	Distance geo.HTTPConfig    `json:"distance"`
	Redis    geo.RedisConfig   `json:"redis"`
	MQTT     notify.MQTTConfig `json:"mqtt"`
	Dispatch dispatch.Config   `json:"dispatch"`
	Route    route.Config      `json:"route"`
	Demo     bool              `json:"demo"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr string `json:"addr"`
}

// SetDefaults fills the listener defaults.
func (c *HTTPConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// PostgresConfig configures the storage connection.
type PostgresConfig struct {
	DSN string `json:"dsn"`
}

// Validate checks that a storage backend is configured.
func (c Config) Validate() error {
	if !c.Demo && c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required unless demo mode is enabled")
	}
	if !c.Demo && c.Distance.BaseURL == "" {
		return fmt.Errorf("distance.base_url is required unless demo mode is enabled")
	}
	return nil
}

// Load reads the configuration file and applies MDD_* environment overrides
// (MDD_HTTP__ADDR overrides http.addr).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("MDD_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "mdd_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.HTTP.SetDefaults()
	cfg.Dispatch.SetDefaults()
	cfg.Route.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
