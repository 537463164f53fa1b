// ABOUTME: This file tests configuration loading, env overrides, and validation
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9300, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 120*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 120*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, time.Hour, cfg.Cache.DefaultTTL)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.False(t, cfg.Consumer.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Adapters.Wikipedia.TTL)
	assert.Equal(t, "https://en.wikipedia.org/w/api.php", cfg.Adapters.Wikipedia.BaseURL)
	assert.Empty(t, cfg.Adapters.NewsAPI.APIKey, "keys must come from env, never defaults")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("SERVER_READ_TIMEOUT", "15s")
	t.Setenv("SERVER_IDLE_TIMEOUT", "3m")
	t.Setenv("CACHE_DEFAULT_TTL", "30m")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("RETRY_BACKOFF_FACTOR", "1.5")
	t.Setenv("NEWSAPI_API_KEY", "secret-key")
	t.Setenv("CONSUMER_ENABLED", "true")
	t.Setenv("RSS_FEED_URLS", "https://a.example/rss, https://b.example/rss")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 3*time.Minute, cfg.Server.IdleTimeout)
	assert.Equal(t, 30*time.Minute, cfg.Cache.DefaultTTL)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 1.5, cfg.Retry.BackoffFactor)
	assert.Equal(t, "secret-key", cfg.Adapters.NewsAPI.APIKey)
	assert.True(t, cfg.Consumer.Enabled)
	assert.Equal(t, []string{"https://a.example/rss", "https://b.example/rss"}, cfg.Adapters.RSSFeed.FeedURLs)
}

func TestLoadConfig_InvalidEnvValue(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := map[string]struct {
		mutate  func(cfg *Config)
		wantErr string
	}{
		"valid defaults pass": {
			mutate: func(cfg *Config) {},
		},
		"port out of range": {
			mutate:  func(cfg *Config) { cfg.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		"zero retry attempts": {
			mutate:  func(cfg *Config) { cfg.Retry.MaxAttempts = 0 },
			wantErr: "retry max attempts",
		},
		"backoff factor at or below one": {
			mutate:  func(cfg *Config) { cfg.Retry.BackoffFactor = 1.0 },
			wantErr: "backoff factor",
		},
		"non-positive cache ttl": {
			mutate:  func(cfg *Config) { cfg.Cache.DefaultTTL = 0 },
			wantErr: "cache default TTL",
		},
		"consumer enabled without redis url": {
			mutate: func(cfg *Config) {
				cfg.Consumer.Enabled = true
				cfg.Consumer.RedisURL = ""
			},
			wantErr: "redis URL is empty",
		},
		"adapter with zero ttl": {
			mutate:  func(cfg *Config) { cfg.Adapters.Reddit.TTL = 0 },
			wantErr: "adapter reddit TTL",
		},
		"adapter with zero timeout": {
			mutate:  func(cfg *Config) { cfg.Adapters.Arxiv.Timeout = 0 },
			wantErr: "adapter arxiv timeout",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)

			err := validateConfig(cfg)
			if tc.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := map[string]struct {
		in   string
		want []string
	}{
		"plain list":             {in: "a,b,c", want: []string{"a", "b", "c"}},
		"spaces trimmed":         {in: " a , b ", want: []string{"a", "b"}},
		"empty parts dropped":    {in: "a,,b,", want: []string{"a", "b"}},
		"empty string is empty":  {in: ""},
		"only separators too":    {in: ",,"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := splitAndTrim(tc.in)
			if tc.want == nil {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}
