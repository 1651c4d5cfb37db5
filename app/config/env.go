package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

func applyEnv(cfg *Config) error {
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)

	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}

	cfg.Upstream.URL = getEnv("QUERY_SERVICE_URL", cfg.Upstream.URL)
	if err := setDuration(&cfg.Upstream.Timeout, "QUERY_SERVICE_TIMEOUT", os.Getenv("QUERY_SERVICE_TIMEOUT")); err != nil {
		return err
	}
	if v := os.Getenv("QUERY_SERVICE_MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid QUERY_SERVICE_MAX_BODY_BYTES %q: %w", v, err)
		}
		cfg.Upstream.MaxBodySize = n
	}

	cfg.Static.Root = getEnv("STATIC_ROOT", cfg.Static.Root)
	cfg.Static.AssetPrefix = getEnv("STATIC_ASSET_PREFIX", cfg.Static.AssetPrefix)

	// set but empty turns the metrics listener off
	if v, ok := os.LookupEnv("METRICS_ADDR"); ok {
		cfg.Metrics.Addr = v
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}
