package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   HTTPServerConfig `json:"server"`
	Upstream UpstreamConfig   `json:"upstream"`
	Static   StaticConfig     `json:"static"`
	Metrics  MetricsConfig    `json:"metrics"`
	Log      LogConfig        `json:"log"`
}

type HTTPServerConfig struct {
	Host         string        `json:"host" default:"127.0.0.1"`
	Port         int           `json:"port" default:"8001"`
	ReadTimeout  time.Duration `json:"read_timeout" default:"30s"`
	WriteTimeout time.Duration `json:"write_timeout" default:"90s"`
	IdleTimeout  time.Duration `json:"idle_timeout" default:"120s"`
}

func (c HTTPServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// UpstreamConfig.MaxBodySize caps how much of a query service response is read.
type UpstreamConfig struct {
	URL         string        `json:"url" default:"http://127.0.0.1:8000/generate"`
	Timeout     time.Duration `json:"timeout" default:"60s"`
	MaxBodySize int64         `json:"max_body_size" default:"33554432"`
}

type StaticConfig struct {
	Root        string `json:"root" default:"./out"`
	AssetPrefix string `json:"asset_prefix" default:"/_next/"`
}

// MetricsConfig.Addr empty means the metrics listener is off.
type MetricsConfig struct {
	Addr string `json:"addr" default:":2112"`
}

type LogConfig struct {
	Level string `json:"level" default:"info"`
}

func Default() *Config {
	return &Config{
		Server: HTTPServerConfig{
			Host:         "127.0.0.1",
			Port:         8001,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Upstream: UpstreamConfig{
			URL:         "http://127.0.0.1:8000/generate",
			Timeout:     60 * time.Second,
			MaxBodySize: 32 << 20,
		},
		Static: StaticConfig{
			Root:        "./out",
			AssetPrefix: "/_next/",
		},
		Metrics: MetricsConfig{
			Addr: ":2112",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the config from defaults, then the HCL file at path (if any),
// then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.Static.AssetPrefix = normalizePrefix(cfg.Static.AssetPrefix)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}
	if c.Upstream.URL == "" {
		errs = append(errs, errors.New("upstream url is required"))
	}
	if c.Upstream.Timeout <= 0 {
		errs = append(errs, errors.New("upstream timeout must be positive"))
	}
	if c.Upstream.MaxBodySize <= 0 {
		errs = append(errs, errors.New("upstream max body size must be positive"))
	}
	if c.Server.WriteTimeout > 0 && c.Server.WriteTimeout <= c.Upstream.Timeout {
		errs = append(errs, fmt.Errorf("server write timeout %s must exceed upstream timeout %s", c.Server.WriteTimeout, c.Upstream.Timeout))
	}
	if c.Static.AssetPrefix == "/" {
		errs = append(errs, errors.New("static asset prefix must not be the site root"))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}
