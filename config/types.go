package config

import (
	"time"
)

// Config aggregates all service configuration blocks.
type Config struct {
	Server    ServerConfig    `json:"server"`
	HTTP      HTTPConfig      `json:"http"`
	Retry     RetryConfig     `json:"retry"`
	Cache     CacheConfig     `json:"cache"`
	Database  DatabaseConfig  `json:"database"`
	Consumer  ConsumerConfig  `json:"consumer"`
	Synthesis SynthesisConfig `json:"synthesis"`
	Adapters  AdaptersConfig  `json:"adapters"`
}

type ServerConfig struct {
	Port            int           `json:"port" env:"SERVER_PORT" default:"9300"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	ReadTimeout     time.Duration `json:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `json:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"120s"`
	IdleTimeout     time.Duration `json:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" default:"120s"`
}

type HTTPConfig struct {
	Timeout             time.Duration `json:"timeout" env:"HTTP_TIMEOUT" default:"10s"`
	MaxIdleConns        int           `json:"max_idle_conns" env:"HTTP_MAX_IDLE_CONNS" default:"10"`
	MaxIdleConnsPerHost int           `json:"max_idle_conns_per_host" env:"HTTP_MAX_IDLE_CONNS_PER_HOST" default:"2"`
	IdleConnTimeout     time.Duration `json:"idle_conn_timeout" env:"HTTP_IDLE_CONN_TIMEOUT" default:"90s"`
	UserAgent           string        `json:"user_agent" env:"HTTP_USER_AGENT" default:"MindForge/1.0 (content-hub; +https://mindforge.app/bot)"`
	RateLimitInterval   time.Duration `json:"rate_limit_interval" env:"HTTP_RATE_LIMIT_INTERVAL" default:"500ms"`
}

type RetryConfig struct {
	MaxAttempts   int           `json:"max_attempts" env:"RETRY_MAX_ATTEMPTS" default:"3"`
	BaseDelay     time.Duration `json:"base_delay" env:"RETRY_BASE_DELAY" default:"1s"`
	MaxDelay      time.Duration `json:"max_delay" env:"RETRY_MAX_DELAY" default:"30s"`
	BackoffFactor float64       `json:"backoff_factor" env:"RETRY_BACKOFF_FACTOR" default:"2.0"`
	JitterFactor  float64       `json:"jitter_factor" env:"RETRY_JITTER_FACTOR" default:"0.1"`
}

type CacheConfig struct {
	DefaultTTL    time.Duration `json:"default_ttl" env:"CACHE_DEFAULT_TTL" default:"1h"`
	SweepInterval time.Duration `json:"sweep_interval" env:"CACHE_SWEEP_INTERVAL" default:"5m"`
}

type DatabaseConfig struct {
	URL             string        `json:"url" env:"DATABASE_URL" default:""`
	MaxConns        int           `json:"max_conns" env:"DATABASE_MAX_CONNS" default:"10"`
	ConnectTimeout  time.Duration `json:"connect_timeout" env:"DATABASE_CONNECT_TIMEOUT" default:"10s"`
	WriteMaxRetries int           `json:"write_max_retries" env:"DATABASE_WRITE_MAX_RETRIES" default:"5"`
}

type ConsumerConfig struct {
	Enabled       bool          `json:"enabled" env:"CONSUMER_ENABLED" default:"false"`
	RedisURL      string        `json:"redis_url" env:"CONSUMER_REDIS_URL" default:"redis://localhost:6379"`
	StreamKey     string        `json:"stream_key" env:"CONSUMER_STREAM_KEY" default:"mindforge:events:content"`
	GroupName     string        `json:"group_name" env:"CONSUMER_GROUP_NAME" default:"content-hub-group"`
	ConsumerName  string        `json:"consumer_name" env:"CONSUMER_NAME" default:"content-hub-1"`
	BatchSize     int64         `json:"batch_size" env:"CONSUMER_BATCH_SIZE" default:"10"`
	BlockTimeout  time.Duration `json:"block_timeout" env:"CONSUMER_BLOCK_TIMEOUT" default:"5s"`
}

type SynthesisConfig struct {
	OllamaHost    string        `json:"ollama_host" env:"SYNTHESIS_OLLAMA_HOST" default:"http://localhost:11434"`
	OllamaModel   string        `json:"ollama_model" env:"SYNTHESIS_OLLAMA_MODEL" default:"gemma3:4b"`
	OpenAIBaseURL string        `json:"openai_base_url" env:"SYNTHESIS_OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIKey     string        `json:"openai_key" env:"SYNTHESIS_OPENAI_KEY" default:""`
	OpenAIModel   string        `json:"openai_model" env:"SYNTHESIS_OPENAI_MODEL" default:"gpt-4o-mini"`
	Timeout       time.Duration `json:"timeout" env:"SYNTHESIS_TIMEOUT" default:"120s"`
}

// AdapterConfig parameterizes one source adapter. Key is only required by
// providers that authenticate; TTL reflects how fast the source's data changes.
type AdapterConfig struct {
	BaseURL    string        `json:"base_url"`
	APIKey     string        `json:"api_key"`
	TTL        time.Duration `json:"ttl"`
	Timeout    time.Duration `json:"timeout"`
	MaxRetries int           `json:"max_retries"`
	FeedURLs   []string      `json:"feed_urls,omitempty"`
}

type AdaptersConfig struct {
	Wikipedia    AdapterConfig `json:"wikipedia"`
	RSSFeed      AdapterConfig `json:"rssfeed"`
	NewsAPI      AdapterConfig `json:"newsapi"`
	HackerNews   AdapterConfig `json:"hackernews"`
	Reddit       AdapterConfig `json:"reddit"`
	Arxiv        AdapterConfig `json:"arxiv"`
	OpenLibrary  AdapterConfig `json:"openlibrary"`
	YouTube      AdapterConfig `json:"youtube"`
	AlphaVantage AdapterConfig `json:"alphavantage"`
}
