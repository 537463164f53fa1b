// ABOUTME: This file provides slog-based structured JSON logging for content-hub
// ABOUTME: Level and service name come from environment variables
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config represents logger configuration.
type Config struct {
	Level       string `env:"LOG_LEVEL" default:"info"`
	ServiceName string `env:"SERVICE_NAME" default:"content-hub"`
}

// LoadConfigFromEnv loads logger configuration from environment variables.
func LoadConfigFromEnv() *Config {
	return &Config{
		Level:       getEnvOrDefault("LOG_LEVEL", "info"),
		ServiceName: getEnvOrDefault("SERVICE_NAME", "content-hub"),
	}
}

// Init creates the service logger and installs it as the slog default. With
// otelEnabled, records are fanned out to the otelslog bridge alongside stdout
// so they reach the OTLP log pipeline with trace context attached.
func Init(config *Config, otelEnabled bool) *slog.Logger {
	var handler slog.Handler = newJSONHandler(os.Stdout, config.Level)
	if otelEnabled {
		handler = NewMultiHandler(handler, config.ServiceName)
	}

	log := slog.New(handler).With("service", config.ServiceName)
	slog.SetDefault(log)
	return log
}

// NewWithLevel creates a JSON logger with the given level.
// Field names follow the platform log-forwarder format: lowercase level,
// "msg" and "time" keys.
func NewWithLevel(output io.Writer, serviceName, level string) *slog.Logger {
	return slog.New(newJSONHandler(output, level)).With("service", serviceName)
}

func newJSONHandler(output io.Writer, level string) slog.Handler {
	var slogLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn", "warning":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	options := &slog.HandlerOptions{
		Level:     slogLevel,
		AddSource: false,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lv, ok := a.Value.Any().(slog.Level); ok {
					return slog.Attr{Key: "level", Value: slog.StringValue(strings.ToLower(lv.String()))}
				}
			}
			return a
		},
	}

	return slog.NewJSONHandler(output, options)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
