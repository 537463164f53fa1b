package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadConfig builds the configuration from defaults and overrides provided via environment variables.
func LoadConfig() (*Config, error) {
	config := defaultConfig()

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            9300,
			ShutdownTimeout: 30 * time.Second,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    120 * time.Second,
			IdleTimeout:     120 * time.Second,
		},
		HTTP: HTTPConfig{
			Timeout:             10 * time.Second,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
			UserAgent:           "MindForge/1.0 (content-hub; +https://mindforge.app/bot)",
			RateLimitInterval:   500 * time.Millisecond,
		},
		Retry: RetryConfig{
			MaxAttempts:   3,
			BaseDelay:     1 * time.Second,
			MaxDelay:      30 * time.Second,
			BackoffFactor: 2.0,
			JitterFactor:  0.1,
		},
		Cache: CacheConfig{
			DefaultTTL:    1 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		Database: DatabaseConfig{
			MaxConns:        10,
			ConnectTimeout:  10 * time.Second,
			WriteMaxRetries: 5,
		},
		Consumer: ConsumerConfig{
			Enabled:      false,
			RedisURL:     "redis://localhost:6379",
			StreamKey:    "mindforge:events:content",
			GroupName:    "content-hub-group",
			ConsumerName: "content-hub-1",
			BatchSize:    10,
			BlockTimeout: 5 * time.Second,
		},
		Synthesis: SynthesisConfig{
			OllamaHost:    "http://localhost:11434",
			OllamaModel:   "gemma3:4b",
			OpenAIBaseURL: "https://api.openai.com/v1",
			OpenAIModel:   "gpt-4o-mini",
			Timeout:       120 * time.Second,
		},
		Adapters: defaultAdaptersConfig(),
	}
}

// defaultAdaptersConfig encodes how fast each provider's data changes: seconds
// for live financial quotes, hours for encyclopedic text.
func defaultAdaptersConfig() AdaptersConfig {
	return AdaptersConfig{
		Wikipedia: AdapterConfig{
			BaseURL: "https://en.wikipedia.org/w/api.php",
			TTL:     24 * time.Hour,
			Timeout: 10 * time.Second, MaxRetries: 3,
		},
		RSSFeed: AdapterConfig{
			TTL:     30 * time.Minute,
			Timeout: 10 * time.Second, MaxRetries: 3,
			FeedURLs: []string{
				"https://feeds.bbci.co.uk/news/education/rss.xml",
				"https://www.sciencedaily.com/rss/top/science.xml",
			},
		},
		NewsAPI: AdapterConfig{
			BaseURL: "https://newsapi.org/v2",
			TTL:     15 * time.Minute,
			Timeout: 10 * time.Second, MaxRetries: 3,
		},
		HackerNews: AdapterConfig{
			BaseURL: "https://hn.algolia.com/api/v1",
			TTL:     30 * time.Minute,
			Timeout: 10 * time.Second, MaxRetries: 3,
		},
		Reddit: AdapterConfig{
			BaseURL: "https://www.reddit.com",
			TTL:     30 * time.Minute,
			Timeout: 10 * time.Second, MaxRetries: 3,
		},
		Arxiv: AdapterConfig{
			BaseURL: "https://export.arxiv.org/api/query",
			TTL:     12 * time.Hour,
			Timeout: 15 * time.Second, MaxRetries: 3,
		},
		OpenLibrary: AdapterConfig{
			BaseURL: "https://openlibrary.org",
			TTL:     24 * time.Hour,
			Timeout: 10 * time.Second, MaxRetries: 3,
		},
		YouTube: AdapterConfig{
			BaseURL: "https://www.googleapis.com/youtube/v3",
			TTL:     6 * time.Hour,
			Timeout: 10 * time.Second, MaxRetries: 3,
		},
		AlphaVantage: AdapterConfig{
			BaseURL: "https://www.alphavantage.co",
			TTL:     60 * time.Second,
			Timeout: 10 * time.Second, MaxRetries: 3,
		},
	}
}

func loadFromEnv(config *Config) error {
	if err := loadServerConfig(&config.Server); err != nil {
		return fmt.Errorf("failed to load server config: %w", err)
	}

	if err := loadHTTPConfig(&config.HTTP); err != nil {
		return fmt.Errorf("failed to load HTTP config: %w", err)
	}

	if err := loadRetryConfig(&config.Retry); err != nil {
		return fmt.Errorf("failed to load retry config: %w", err)
	}

	if err := loadCacheConfig(&config.Cache); err != nil {
		return fmt.Errorf("failed to load cache config: %w", err)
	}

	if err := loadDatabaseConfig(&config.Database); err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	if err := loadConsumerConfig(&config.Consumer); err != nil {
		return fmt.Errorf("failed to load consumer config: %w", err)
	}

	if err := loadSynthesisConfig(&config.Synthesis); err != nil {
		return fmt.Errorf("failed to load synthesis config: %w", err)
	}

	loadAdaptersConfig(&config.Adapters)

	return nil
}

func loadServerConfig(cfg *ServerConfig) error {
	var err error

	if cfg.Port, err = parseIntEnv("SERVER_PORT", cfg.Port); err != nil {
		return err
	}

	if cfg.ShutdownTimeout, err = parseDurationEnv("SERVER_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return err
	}

	if cfg.ReadTimeout, err = parseDurationEnv("SERVER_READ_TIMEOUT", cfg.ReadTimeout); err != nil {
		return err
	}

	if cfg.WriteTimeout, err = parseDurationEnv("SERVER_WRITE_TIMEOUT", cfg.WriteTimeout); err != nil {
		return err
	}

	if cfg.IdleTimeout, err = parseDurationEnv("SERVER_IDLE_TIMEOUT", cfg.IdleTimeout); err != nil {
		return err
	}

	return nil
}

func loadHTTPConfig(cfg *HTTPConfig) error {
	var err error

	if cfg.Timeout, err = parseDurationEnv("HTTP_TIMEOUT", cfg.Timeout); err != nil {
		return err
	}

	if cfg.MaxIdleConns, err = parseIntEnv("HTTP_MAX_IDLE_CONNS", cfg.MaxIdleConns); err != nil {
		return err
	}

	if cfg.MaxIdleConnsPerHost, err = parseIntEnv("HTTP_MAX_IDLE_CONNS_PER_HOST", cfg.MaxIdleConnsPerHost); err != nil {
		return err
	}

	if cfg.IdleConnTimeout, err = parseDurationEnv("HTTP_IDLE_CONN_TIMEOUT", cfg.IdleConnTimeout); err != nil {
		return err
	}

	if agent := os.Getenv("HTTP_USER_AGENT"); agent != "" {
		cfg.UserAgent = agent
	}

	if cfg.RateLimitInterval, err = parseDurationEnv("HTTP_RATE_LIMIT_INTERVAL", cfg.RateLimitInterval); err != nil {
		return err
	}

	return nil
}

func loadRetryConfig(cfg *RetryConfig) error {
	var err error

	if cfg.MaxAttempts, err = parseIntEnv("RETRY_MAX_ATTEMPTS", cfg.MaxAttempts); err != nil {
		return err
	}

	if cfg.BaseDelay, err = parseDurationEnv("RETRY_BASE_DELAY", cfg.BaseDelay); err != nil {
		return err
	}

	if cfg.MaxDelay, err = parseDurationEnv("RETRY_MAX_DELAY", cfg.MaxDelay); err != nil {
		return err
	}

	if cfg.BackoffFactor, err = parseFloatEnv("RETRY_BACKOFF_FACTOR", cfg.BackoffFactor); err != nil {
		return err
	}

	if cfg.JitterFactor, err = parseFloatEnv("RETRY_JITTER_FACTOR", cfg.JitterFactor); err != nil {
		return err
	}

	return nil
}

func loadCacheConfig(cfg *CacheConfig) error {
	var err error

	if cfg.DefaultTTL, err = parseDurationEnv("CACHE_DEFAULT_TTL", cfg.DefaultTTL); err != nil {
		return err
	}

	if cfg.SweepInterval, err = parseDurationEnv("CACHE_SWEEP_INTERVAL", cfg.SweepInterval); err != nil {
		return err
	}

	return nil
}

func loadDatabaseConfig(cfg *DatabaseConfig) error {
	var err error

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.URL = url
	}

	if cfg.MaxConns, err = parseIntEnv("DATABASE_MAX_CONNS", cfg.MaxConns); err != nil {
		return err
	}

	if cfg.ConnectTimeout, err = parseDurationEnv("DATABASE_CONNECT_TIMEOUT", cfg.ConnectTimeout); err != nil {
		return err
	}

	if cfg.WriteMaxRetries, err = parseIntEnv("DATABASE_WRITE_MAX_RETRIES", cfg.WriteMaxRetries); err != nil {
		return err
	}

	return nil
}

func loadConsumerConfig(cfg *ConsumerConfig) error {
	var err error

	if cfg.Enabled, err = parseBoolEnv("CONSUMER_ENABLED", cfg.Enabled); err != nil {
		return err
	}

	if url := os.Getenv("CONSUMER_REDIS_URL"); url != "" {
		cfg.RedisURL = url
	}

	if key := os.Getenv("CONSUMER_STREAM_KEY"); key != "" {
		cfg.StreamKey = key
	}

	if group := os.Getenv("CONSUMER_GROUP_NAME"); group != "" {
		cfg.GroupName = group
	}

	if name := os.Getenv("CONSUMER_NAME"); name != "" {
		cfg.ConsumerName = name
	}

	batch, err := parseIntEnv("CONSUMER_BATCH_SIZE", int(cfg.BatchSize))
	if err != nil {
		return err
	}
	cfg.BatchSize = int64(batch)

	if cfg.BlockTimeout, err = parseDurationEnv("CONSUMER_BLOCK_TIMEOUT", cfg.BlockTimeout); err != nil {
		return err
	}

	return nil
}

func loadSynthesisConfig(cfg *SynthesisConfig) error {
	var err error

	if host := os.Getenv("SYNTHESIS_OLLAMA_HOST"); host != "" {
		cfg.OllamaHost = host
	}

	if model := os.Getenv("SYNTHESIS_OLLAMA_MODEL"); model != "" {
		cfg.OllamaModel = model
	}

	if url := os.Getenv("SYNTHESIS_OPENAI_BASE_URL"); url != "" {
		cfg.OpenAIBaseURL = url
	}

	if key := os.Getenv("SYNTHESIS_OPENAI_KEY"); key != "" {
		cfg.OpenAIKey = key
	}

	if model := os.Getenv("SYNTHESIS_OPENAI_MODEL"); model != "" {
		cfg.OpenAIModel = model
	}

	if cfg.Timeout, err = parseDurationEnv("SYNTHESIS_TIMEOUT", cfg.Timeout); err != nil {
		return err
	}

	return nil
}

// loadAdaptersConfig overrides credentials and feed URLs from the environment.
// TTL/timeout defaults are per-provider policy and rarely overridden.
func loadAdaptersConfig(cfg *AdaptersConfig) {
	if key := os.Getenv("NEWSAPI_API_KEY"); key != "" {
		cfg.NewsAPI.APIKey = key
	}

	if key := os.Getenv("YOUTUBE_API_KEY"); key != "" {
		cfg.YouTube.APIKey = key
	}

	if key := os.Getenv("ALPHAVANTAGE_API_KEY"); key != "" {
		cfg.AlphaVantage.APIKey = key
	}

	if urls := os.Getenv("RSS_FEED_URLS"); urls != "" {
		cfg.RSSFeed.FeedURLs = splitAndTrim(urls)
	}
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %w", key, err)
	}

	return parsed, nil
}

func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value for %s: %w", key, err)
	}

	return parsed, nil
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean value for %s: %w", key, err)
	}

	return parsed, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value for %s: %w", key, err)
	}

	return parsed, nil
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
