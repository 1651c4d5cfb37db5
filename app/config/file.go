package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// fileConfig mirrors Config in HCL form:
//
//	server {
//	  host = "0.0.0.0"
//	  port = 8001
//	}
//	upstream {
//	  url     = "http://127.0.0.1:8000/generate"
//	  timeout = "60s"
//	}
type fileConfig struct {
	Server   *fileServer   `hcl:"server,block"`
	Upstream *fileUpstream `hcl:"upstream,block"`
	Static   *fileStatic   `hcl:"static,block"`
	Metrics  *fileMetrics  `hcl:"metrics,block"`
	Log      *fileLog      `hcl:"log,block"`
}

type fileServer struct {
	Host         string `hcl:"host,optional"`
	Port         int    `hcl:"port,optional"`
	ReadTimeout  string `hcl:"read_timeout,optional"`
	WriteTimeout string `hcl:"write_timeout,optional"`
	IdleTimeout  string `hcl:"idle_timeout,optional"`
}

type fileUpstream struct {
	URL         string `hcl:"url,optional"`
	Timeout     string `hcl:"timeout,optional"`
	MaxBodySize int64  `hcl:"max_body_size,optional"`
}

type fileStatic struct {
	Root        string `hcl:"root,optional"`
	AssetPrefix string `hcl:"asset_prefix,optional"`
}

type fileMetrics struct {
	Addr *string `hcl:"addr,optional"`
}

type fileLog struct {
	Level string `hcl:"level,optional"`
}

func applyFile(cfg *Config, path string) error {
	var fc fileConfig
	if err := hclsimple.DecodeFile(path, nil, &fc); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	if s := fc.Server; s != nil {
		setString(&cfg.Server.Host, s.Host)
		if s.Port != 0 {
			cfg.Server.Port = s.Port
		}
		if err := setDuration(&cfg.Server.ReadTimeout, "server.read_timeout", s.ReadTimeout); err != nil {
			return err
		}
		if err := setDuration(&cfg.Server.WriteTimeout, "server.write_timeout", s.WriteTimeout); err != nil {
			return err
		}
		if err := setDuration(&cfg.Server.IdleTimeout, "server.idle_timeout", s.IdleTimeout); err != nil {
			return err
		}
	}

	if u := fc.Upstream; u != nil {
		setString(&cfg.Upstream.URL, u.URL)
		if err := setDuration(&cfg.Upstream.Timeout, "upstream.timeout", u.Timeout); err != nil {
			return err
		}
		if u.MaxBodySize != 0 {
			cfg.Upstream.MaxBodySize = u.MaxBodySize
		}
	}

	if st := fc.Static; st != nil {
		setString(&cfg.Static.Root, st.Root)
		setString(&cfg.Static.AssetPrefix, st.AssetPrefix)
	}

	if m := fc.Metrics; m != nil && m.Addr != nil {
		cfg.Metrics.Addr = *m.Addr
	}

	if l := fc.Log; l != nil {
		setString(&cfg.Log.Level, l.Level)
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, name, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	*dst = d
	return nil
}
