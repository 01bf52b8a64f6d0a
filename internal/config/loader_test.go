package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/affgate/affgate/pkg/constants"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := writeConfig(t, "{}\n")

	cfg, v, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://api-sg.aliexpress.com/sync", cfg.Upstream.GatewayURL)
	assert.Equal(t, string(constants.SignMethodSHA256), cfg.Upstream.SignMethod)
	assert.Equal(t, constants.DefaultUpstreamTimeout, cfg.Upstream.Timeout)
	assert.Equal(t, constants.DefaultMemoryMaxEntries, cfg.Cache.MemoryMaxEntries)
	assert.Equal(t, constants.DefaultSearchTTL, cfg.Cache.SearchTTL)
	assert.False(t, cfg.Mock.Forced)
	assert.False(t, cfg.Upstream.HasCredentials())
}

func TestLoad_FromFile(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: 9090
upstream:
  app_key: "12345"
  app_secret: "topsecret"
  sign_method: md5
  tracking_id: mytrack
cache:
  search_ttl: 2m
mock:
  forced: true
auth:
  api_keys:
    - k1
`)

	cfg, _, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Upstream.HasCredentials())
	assert.Equal(t, "md5", cfg.Upstream.SignMethod)
	assert.Equal(t, 2*time.Minute, cfg.Cache.SearchTTL)
	assert.True(t, cfg.Mock.Forced)
	assert.Equal(t, []string{"k1"}, cfg.Auth.APIKeys)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := writeConfig(t, "{}\n")
	t.Setenv("AFFGATE_SERVER_PORT", "7070")
	t.Setenv("AFFGATE_UPSTREAM_APP_KEY", "envkey")

	cfg, _, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "envkey", cfg.Upstream.AppKey)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad port", "server:\n  port: -1\n"},
		{"bad sign method", "upstream:\n  sign_method: sha1\n"},
		{"bad memory bound", "cache:\n  memory_max_entries: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestConfig_TTLFor(t *testing.T) {
	cfg := CacheConfig{
		SearchTTL:   time.Minute,
		DetailTTL:   2 * time.Minute,
		CategoryTTL: 3 * time.Minute,
	}
	assert.Equal(t, time.Minute, cfg.TTLFor(constants.TTLClassSearch))
	assert.Equal(t, 2*time.Minute, cfg.TTLFor(constants.TTLClassDetail))
	assert.Equal(t, 3*time.Minute, cfg.TTLFor(constants.TTLClassCategory))
	assert.Zero(t, cfg.TTLFor(constants.TTLClassNone))
}

func TestRuntime_ForcedMock(t *testing.T) {
	r := NewRuntime(&Config{Mock: MockConfig{Forced: true}})
	assert.True(t, r.ForcedMock())

	r = NewRuntime(&Config{})
	assert.False(t, r.ForcedMock())
}
