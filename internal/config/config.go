package config

import (
	"fmt"
	"time"

	"github.com/affgate/affgate/pkg/constants"
)

// Config holds the application's configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Upstream   UpstreamConfig   `mapstructure:"upstream"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Auth       AuthConfig       `mapstructure:"auth"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Mock       MockConfig       `mapstructure:"mock"`
	Log        LogConfig        `mapstructure:"log"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// UpstreamConfig describes the AliExpress affiliate gateway and the
// credentials used to sign calls against it.
type UpstreamConfig struct {
	GatewayURL string        `mapstructure:"gateway_url"`
	AppKey     string        `mapstructure:"app_key"`
	AppSecret  string        `mapstructure:"app_secret"`
	TrackingID string        `mapstructure:"tracking_id"`
	SignMethod string        `mapstructure:"sign_method"` // "md5" or "sha256"
	Timeout    time.Duration `mapstructure:"timeout"`
}

// HasCredentials reports whether a key/secret pair is configured.
func (c *UpstreamConfig) HasCredentials() bool {
	return c.AppKey != "" && c.AppSecret != ""
}

type CacheConfig struct {
	RedisAddresses   []string      `mapstructure:"redis_addresses"`
	RedisPassword    string        `mapstructure:"redis_password"`
	RedisDB          int           `mapstructure:"redis_db"`
	MemoryMaxEntries int           `mapstructure:"memory_max_entries"`
	SearchTTL        time.Duration `mapstructure:"search_ttl"`
	DetailTTL        time.Duration `mapstructure:"detail_ttl"`
	CategoryTTL      time.Duration `mapstructure:"category_ttl"`
}

// TTLFor resolves a TTL class to its configured duration.
func (c *CacheConfig) TTLFor(class constants.TTLClass) time.Duration {
	switch class {
	case constants.TTLClassSearch:
		return c.SearchTTL
	case constants.TTLClassDetail:
		return c.DetailTTL
	case constants.TTLClassCategory:
		return c.CategoryTTL
	default:
		return 0
	}
}

type AuthConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type MockConfig struct {
	Forced bool `mapstructure:"forced"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MonitoringConfig struct {
	PprofEnabled bool `mapstructure:"pprof_enabled"`
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	if c.Upstream.GatewayURL == "" {
		return fmt.Errorf("config: upstream gateway URL is required")
	}
	switch constants.SignMethod(c.Upstream.SignMethod) {
	case constants.SignMethodMD5, constants.SignMethodSHA256:
	default:
		return fmt.Errorf("config: unsupported sign method %q", c.Upstream.SignMethod)
	}
	if c.Cache.MemoryMaxEntries <= 0 {
		return fmt.Errorf("config: cache memory_max_entries must be positive")
	}
	return nil
}
