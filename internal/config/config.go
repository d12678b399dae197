// Package config loads the mapforge service configuration from YAML.
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cinderworks/mapforge/internal/logger"
)

// Config is the top-level configuration for the generation service and CLIs.
type Config struct {
	Service    ServiceConfig    `yaml:"service"`
	Store      StoreConfig      `yaml:"store"`
	Generation GenerationConfig `yaml:"generation"`
	Logging    logger.Config    `yaml:"logging"`
}

// ServiceConfig holds the WebSocket generation service settings.
type ServiceConfig struct {
	// ListenAddr is the host:port the service binds to.
	ListenAddr string `yaml:"listen_addr"`

	// AllowedOrigins is the list of origins allowed to connect.
	// Empty list enforces same-origin policy; "*" allows all.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`

	// TokenHash is the bcrypt hash of the shared access token. Empty
	// disables authentication; only do that on loopback deployments.
	TokenHash string `yaml:"token_hash"`

	// MaxConcurrent caps simultaneously running generation jobs.
	MaxConcurrent int `yaml:"max_concurrent"`
}

// IsOriginAllowed checks whether a WebSocket origin may connect. An empty
// allow-list enforces same-origin; "*" allows everything.
func (c *ServiceConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // non-browser clients send no Origin header
	}
	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")
	return originHost == requestHost
}

// StoreConfig holds the map archive database settings.
type StoreConfig struct {
	// Driver selects the backend: "sqlite" or "postgres".
	Driver string `yaml:"driver"`

	// Path is the database file for the sqlite driver.
	Path string `yaml:"path"`

	// DSN is the connection string for the postgres driver.
	DSN string `yaml:"dsn"`
}

// GenerationConfig holds generation defaults applied when a request leaves
// a field unset.
type GenerationConfig struct {
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	Players         int     `yaml:"players"`
	Symmetry        string  `yaml:"symmetry"`
	Attempts        int     `yaml:"attempts"`
	MaxBacktracks   int     `yaml:"max_backtracks"`
	MinScore        float64 `yaml:"min_score"`
	RuleSetPath     string  `yaml:"rule_set_path"`
	ResourceDensity float64 `yaml:"resource_density"`
}

// DefaultConfig returns safe defaults: loopback listen address, local
// sqlite archive, 64x64 two-player rotational maps.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			ListenAddr:     "127.0.0.1:8775",
			AllowedOrigins: []string{},
			MaxMessageSize: 65536,
			MaxConcurrent:  4,
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   "data/mapforge.db",
		},
		Generation: GenerationConfig{
			Width:         64,
			Height:        64,
			Players:       2,
			Symmetry:      "rotational",
			Attempts:      10,
			MaxBacktracks: 1000,
			MinScore:      0.7,
		},
		Logging: logger.DefaultConfig(),
	}
}

// LoadConfig loads configuration from a YAML file. A missing file falls
// back to defaults; a malformed file is an error.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), err
	}

	return config, nil
}
