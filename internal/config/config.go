package config

import (
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the relay's startup configuration. It is immutable for the
// process lifetime and passed by pointer into the server and its components.
type Config struct {
	// BindAddress is the local address the listener binds to.
	BindAddress string
	// Port is the TCP listen port.
	Port int
	// SharedToken is the static credential callers must present in the
	// X-Auth-Token header. Required; an empty token is a config error.
	SharedToken string
	// AllowedSubnets are the CIDR ranges requests may originate from.
	// An empty list denies all traffic.
	AllowedSubnets []string
	LogLevel       string
	// Verbose forces debug-level logging regardless of LogLevel.
	Verbose bool
	// DryRun suppresses the real URL-open action; requests succeed
	// without side effects.
	DryRun bool
	// Browser names the browser application to open URLs with.
	// Empty means the platform default handler.
	Browser string
	// OpenTimeout bounds how long a request handler waits for the
	// launch command. The command itself is not killed on expiry.
	OpenTimeout time.Duration
	// ReadTimeout bounds how long a client may take to send a request.
	ReadTimeout time.Duration
	// ShutdownGrace is how long in-flight requests get to finish after
	// a shutdown signal.
	ShutdownGrace time.Duration
}

// fileConfig mirrors Config for the optional YAML config file. Pointer
// fields distinguish "absent" from zero values so env defaults survive.
type fileConfig struct {
	BindAddress    *string  `yaml:"bind_address"`
	Port           *int     `yaml:"port"`
	SharedToken    *string  `yaml:"shared_token"`
	AllowedSubnets []string `yaml:"allowed_subnets"`
	LogLevel       *string  `yaml:"log_level"`
	Verbose        *bool    `yaml:"verbose"`
	DryRun         *bool    `yaml:"dry_run"`
	Browser        *string  `yaml:"browser"`
	OpenTimeout    *string  `yaml:"open_timeout"`
	ReadTimeout    *string  `yaml:"read_timeout"`
	ShutdownGrace  *string  `yaml:"shutdown_grace"`
}

// Load builds a Config from defaults, an optional YAML file named by
// OIS_CONFIG, and OIS_* environment variables, in increasing precedence.
func Load() (*Config, error) {
	cfg := &Config{
		BindAddress:    "0.0.0.0",
		Port:           51888,
		AllowedSubnets: []string{"10.211.55.0/24", "10.37.129.0/24"},
		LogLevel:       "info",
		Browser:        defaultBrowser(),
		OpenTimeout:    10 * time.Second,
		ReadTimeout:    10 * time.Second,
		ShutdownGrace:  5 * time.Second,
	}

	if path := os.Getenv("OIS_CONFIG"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.BindAddress != nil {
		cfg.BindAddress = *fc.BindAddress
	}
	if fc.Port != nil {
		cfg.Port = *fc.Port
	}
	if fc.SharedToken != nil {
		cfg.SharedToken = *fc.SharedToken
	}
	if fc.AllowedSubnets != nil {
		cfg.AllowedSubnets = fc.AllowedSubnets
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.Verbose != nil {
		cfg.Verbose = *fc.Verbose
	}
	if fc.DryRun != nil {
		cfg.DryRun = *fc.DryRun
	}
	if fc.Browser != nil {
		cfg.Browser = *fc.Browser
	}

	for _, d := range []struct {
		raw  *string
		dst  *time.Duration
		name string
	}{
		{fc.OpenTimeout, &cfg.OpenTimeout, "open_timeout"},
		{fc.ReadTimeout, &cfg.ReadTimeout, "read_timeout"},
		{fc.ShutdownGrace, &cfg.ShutdownGrace, "shutdown_grace"},
	} {
		if d.raw == nil {
			continue
		}
		dur, err := time.ParseDuration(*d.raw)
		if err != nil {
			return fmt.Errorf("invalid %s in config file: %w", d.name, err)
		}
		*d.dst = dur
	}

	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("OIS_BIND"); v != "" {
		cfg.BindAddress = v
	}
	if v := os.Getenv("OIS_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid OIS_PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("OIS_TOKEN"); v != "" {
		cfg.SharedToken = v
	}
	if v := os.Getenv("OIS_ALLOWED_SUBNETS"); v != "" {
		cfg.AllowedSubnets = splitSubnets(v)
	}
	if v := os.Getenv("OIS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("OIS_VERBOSE"); v != "" {
		cfg.Verbose = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("OIS_DRY_RUN"); v != "" {
		cfg.DryRun = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("OIS_BROWSER"); v != "" {
		cfg.Browser = v
	}

	for _, d := range []struct {
		key string
		dst *time.Duration
	}{
		{"OIS_OPEN_TIMEOUT", &cfg.OpenTimeout},
		{"OIS_READ_TIMEOUT", &cfg.ReadTimeout},
		{"OIS_SHUTDOWN_GRACE", &cfg.ShutdownGrace},
	} {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		dur, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.key, v, err)
		}
		*d.dst = dur
	}

	return nil
}

// Validate reports fatal configuration problems. Subnet syntax is checked
// separately when the origin filter is built.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.SharedToken == "" {
		return fmt.Errorf("OIS_TOKEN is required")
	}
	if c.OpenTimeout <= 0 {
		return fmt.Errorf("open timeout must be positive")
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	return nil
}

// ListenAddr returns the bind address in host:port form.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.BindAddress, strconv.Itoa(c.Port))
}

// RedactedToken returns a log-safe form of the shared token.
func (c *Config) RedactedToken() string {
	t := c.SharedToken
	switch {
	case t == "":
		return "<empty>"
	case len(t) <= 4:
		return "***"
	default:
		return t[:2] + "***" + t[len(t)-2:]
	}
}

func splitSubnets(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultBrowser() string {
	// The relay exists to hand URLs to Safari on the mac host; other
	// platforms fall back to the system default handler.
	if runtime.GOOS == "darwin" {
		return "Safari"
	}
	return ""
}
