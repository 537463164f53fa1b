package config

import (
	"fmt"
)

func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.HTTP.Timeout <= 0 {
		return fmt.Errorf("HTTP timeout must be positive: %v", config.HTTP.Timeout)
	}

	if config.HTTP.RateLimitInterval <= 0 {
		return fmt.Errorf("HTTP rate limit interval must be positive: %v", config.HTTP.RateLimitInterval)
	}

	if config.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry max attempts must be positive: %d", config.Retry.MaxAttempts)
	}

	if config.Retry.BackoffFactor <= 1.0 {
		return fmt.Errorf("backoff factor must be greater than 1.0: %f", config.Retry.BackoffFactor)
	}

	if config.Cache.DefaultTTL <= 0 {
		return fmt.Errorf("cache default TTL must be positive: %v", config.Cache.DefaultTTL)
	}

	if config.Cache.SweepInterval <= 0 {
		return fmt.Errorf("cache sweep interval must be positive: %v", config.Cache.SweepInterval)
	}

	if config.Database.WriteMaxRetries < 0 {
		return fmt.Errorf("write max retries must be non-negative: %d", config.Database.WriteMaxRetries)
	}

	if config.Consumer.Enabled && config.Consumer.RedisURL == "" {
		return fmt.Errorf("consumer enabled but redis URL is empty")
	}

	if config.Synthesis.Timeout <= 0 {
		return fmt.Errorf("synthesis timeout must be positive: %v", config.Synthesis.Timeout)
	}

	for name, adapter := range map[string]AdapterConfig{
		"wikipedia":    config.Adapters.Wikipedia,
		"rssfeed":      config.Adapters.RSSFeed,
		"newsapi":      config.Adapters.NewsAPI,
		"hackernews":   config.Adapters.HackerNews,
		"reddit":       config.Adapters.Reddit,
		"arxiv":        config.Adapters.Arxiv,
		"openlibrary":  config.Adapters.OpenLibrary,
		"youtube":      config.Adapters.YouTube,
		"alphavantage": config.Adapters.AlphaVantage,
	} {
		if adapter.TTL <= 0 {
			return fmt.Errorf("adapter %s TTL must be positive: %v", name, adapter.TTL)
		}
		if adapter.Timeout <= 0 {
			return fmt.Errorf("adapter %s timeout must be positive: %v", name, adapter.Timeout)
		}
		if adapter.MaxRetries < 0 {
			return fmt.Errorf("adapter %s max retries must be non-negative: %d", name, adapter.MaxRetries)
		}
	}

	return nil
}
