package config

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/affgate/affgate/pkg/constants"
	"github.com/affgate/affgate/pkg/logger"
)

// Load reads the configuration from file and environment variables.
// Environment variables use the AFFGATE_ prefix with underscores for nesting,
// e.g. AFFGATE_UPSTREAM_APP_KEY.
func Load(path string) (*Config, *viper.Viper, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("upstream.gateway_url", "https://api-sg.aliexpress.com/sync")
	v.SetDefault("upstream.sign_method", string(constants.SignMethodSHA256))
	v.SetDefault("upstream.timeout", constants.DefaultUpstreamTimeout)
	// Registered so AutomaticEnv can populate them; credentials usually arrive
	// through AFFGATE_UPSTREAM_* variables rather than the config file.
	v.SetDefault("upstream.app_key", "")
	v.SetDefault("upstream.app_secret", "")
	v.SetDefault("upstream.tracking_id", "")
	v.SetDefault("cache.memory_max_entries", constants.DefaultMemoryMaxEntries)
	v.SetDefault("cache.search_ttl", constants.DefaultSearchTTL)
	v.SetDefault("cache.detail_ttl", constants.DefaultDetailTTL)
	v.SetDefault("cache.category_ttl", constants.DefaultCategoryTTL)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("mock.forced", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("monitoring.pprof_enabled", false)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath("/etc/affgate/")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, err
		}
	}

	v.SetEnvPrefix("AFFGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return &cfg, v, nil
}

// Runtime exposes the subset of configuration that may change while the
// process is running. Reads are lock-free; Watch swaps the snapshot when the
// config file changes on disk.
type Runtime struct {
	forcedMock atomic.Bool
}

// NewRuntime seeds the runtime snapshot from the loaded configuration.
func NewRuntime(cfg *Config) *Runtime {
	r := &Runtime{}
	r.forcedMock.Store(cfg.Mock.Forced)
	return r
}

// ForcedMock reports whether mock mode is currently forced on.
func (r *Runtime) ForcedMock() bool {
	return r.forcedMock.Load()
}

// Watch re-reads the hot-reloadable keys whenever the config file changes.
func (r *Runtime) Watch(v *viper.Viper, log logger.Logger) {
	v.OnConfigChange(func(e fsnotify.Event) {
		forced := v.GetBool("mock.forced")
		r.forcedMock.Store(forced)
		log.Info(context.Background(), "configuration reloaded", logger.Fields{
			"file":        e.Name,
			"mock_forced": forced,
		})
	})
	v.WatchConfig()
}
