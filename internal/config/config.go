package config

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config holds configuration for the bridge process.
type Config struct {
	// EndpointURL is the remote streamable-HTTP MCP endpoint, including the
	// /mcp path segment. It is the only required setting.
	EndpointURL string `yaml:"endpoint_url"`

	// AuthToken, when set, is sent as an Authorization bearer header on
	// every upstream request.
	AuthToken string `yaml:"auth_token"`

	// RequestTimeout bounds each upstream round trip.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MetricsAddr enables the Prometheus/status listener when non-empty.
	MetricsAddr string `yaml:"metrics_addr"`

	// AllowedOrigins configures CORS on the status listener.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// ClientName is a display name used in logs and status.
	ClientName string `yaml:"client_name"`

	LogLevel   string `yaml:"log_level"`
	ConfigFile string `yaml:"-"`
}

// BindFlags populates the struct with defaults from environment variables and
// binds command line flags so main can call flag.Parse().
func (c *Config) BindFlags() {
	c.ConfigFile = getEnv("CONFIG_FILE", "")
	c.LogLevel = getEnv("LOG_LEVEL", "info")

	c.EndpointURL = getEnv("MCP_ENDPOINT_URL", "")
	c.AuthToken = getEnv("AUTH_TOKEN", "")
	if v, err := strconv.ParseFloat(getEnv("REQUEST_TIMEOUT", "300"), 64); err == nil {
		c.RequestTimeout = time.Duration(v * float64(time.Second))
	} else {
		c.RequestTimeout = 5 * time.Minute
	}
	mp := getEnv("METRICS_PORT", "")
	if mp != "" && !strings.Contains(mp, ":") {
		mp = ":" + mp
	}
	c.MetricsAddr = mp
	c.AllowedOrigins = splitComma(getEnv("ALLOWED_ORIGINS", ""))
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "mcpipe-" + uuid.NewString()[:8]
	}
	c.ClientName = getEnv("CLIENT_NAME", host)

	flag.StringVar(&c.ConfigFile, "config", c.ConfigFile, "config file path")
	flag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log verbosity (all, debug, info, warn, error, fatal, none)")
	flag.StringVar(&c.EndpointURL, "endpoint-url", c.EndpointURL, "remote MCP endpoint URL (e.g. https://example.com/mcp)")
	flag.StringVar(&c.AuthToken, "auth-token", c.AuthToken, "authorization bearer token for upstream requests")
	flag.Func("request-timeout", "upstream request timeout in seconds", func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.RequestTimeout = time.Duration(f * float64(time.Second))
		return nil
	})
	flag.StringVar(&c.MetricsAddr, "metrics-port", c.MetricsAddr, "Prometheus metrics listen address or port (disabled when empty; e.g. 127.0.0.1:9090 or 9090)")
	flag.Func("allowed-origins", "comma separated CORS origins for the status listener", func(v string) error {
		c.AllowedOrigins = splitComma(v)
		return nil
	})
	flag.StringVar(&c.ClientName, "client-name", c.ClientName, "client display name shown in logs and status")
}

// LoadFile populates the config from a YAML file. Fields already set remain
// unless overwritten by corresponding entries in the file.
func (c *Config) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, c)
}

// Validate checks the settings the bridge cannot run without. It is called
// before the loop starts; a failure is fatal.
func (c *Config) Validate() error {
	if c.EndpointURL == "" {
		return fmt.Errorf("endpoint URL is required (set -endpoint-url or MCP_ENDPOINT_URL)")
	}
	u, err := url.Parse(c.EndpointURL)
	if err != nil {
		return fmt.Errorf("invalid endpoint URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint URL must be http or https, got %q", c.EndpointURL)
	}
	if !hasMCPSegment(u.Path) {
		return fmt.Errorf("endpoint URL must include the /mcp path segment, got %q", c.EndpointURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}

func hasMCPSegment(path string) bool {
	for _, seg := range strings.Split(path, "/") {
		if seg == "mcp" {
			return true
		}
	}
	return false
}

func splitComma(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
