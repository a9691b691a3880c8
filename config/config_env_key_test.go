package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"firebase": map[string]any{
			"projectId":     "",
			"storageBucket": "",
		},
		"cache": map[string]any{
			"provider": "memory",
			"redis": map[string]any{
				"addr": "",
			},
		},
		"pubsub": map[string]any{
			"topicId": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "FIREBASE_PROJECTID", want: "firebase.projectId"},
		{envKey: "FIREBASE_STORAGEBUCKET", want: "firebase.storageBucket"},
		{envKey: "CACHE_REDIS_ADDR", want: "cache.redis.addr"},
		{envKey: "PUBSUB_TOPICID", want: "pubsub.topicId"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestLoadWithEnv_AppliesEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`env:
  env: develop
  log:
    level: debug
http:
  port: 8080
session:
  secret: from-file
  ttl: 2h
cache:
  provider: memory
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), content, 0o600))

	t.Chdir(dir)
	t.Setenv("SESSION_SECRET", "from-env")

	cfg, err := LoadWithEnv[Config]("test")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "from-env", cfg.Session.Secret)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "memory", cfg.Cache.Provider)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, defaultMaxRequestBodySize, cfg.HTTP.MaxRequestBodySize)
	assert.Equal(t, "memory", cfg.Gateway.Provider)
	assert.Equal(t, "memory", cfg.Cache.Provider)
	assert.Equal(t, defaultSessionTTL, cfg.Session.TTL)
	assert.Equal(t, defaultImageMaxDimension, cfg.Images.MaxDimension)
	assert.Equal(t, defaultImageJPEGQuality, cfg.Images.JPEGQuality)
	assert.Equal(t, defaultNotifierPort, cfg.Notifier.Port)
	assert.Equal(t, defaultNotifierPushPath, cfg.Notifier.PushPath)
}
