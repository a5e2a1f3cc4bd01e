// Package config provides configuration management for the dailyagi CLI.
// Values come from built-in defaults, then an optional YAML file named by
// DAILYAGI_CONFIG_FILE, then environment variables (optionally seeded from
// a .env file). Later sources win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Verbosity represents the output verbosity level
type Verbosity string

const (
	// VerbosityNormal shows only essential output
	VerbosityNormal Verbosity = "normal"
	// VerbosityVerbose includes request details and timing
	VerbosityVerbose Verbosity = "verbose"
	// VerbosityDebug provides full debug logging
	VerbosityDebug Verbosity = "debug"
)

// Defaults
const (
	DefaultAPIURL         = "http://localhost:8000"
	DefaultAgentURL       = "http://localhost:8001"
	DefaultAgentPath      = "/sentient/agent"
	DefaultRequestTimeout = 30 * time.Second
	DefaultDemoPort       = 8001
	defaultEnvFile        = ".env"
)

// AgentConfig holds the streaming agent endpoint configuration
type AgentConfig struct {
	// URL is the base URL of the agent server
	URL string

	// Path is the streaming endpoint path on the agent server
	Path string

	// Timeout bounds a whole stream session. Zero means no limit.
	Timeout time.Duration
}

// Endpoint returns the full URL of the streaming endpoint
func (a AgentConfig) Endpoint() string {
	return strings.TrimRight(a.URL, "/") + "/" + strings.TrimLeft(a.Path, "/")
}

// APIConfig holds the REST API configuration
type APIConfig struct {
	// URL is the base URL of the reminders/spending/grocery API
	URL string

	// Timeout bounds each REST request
	Timeout time.Duration
}

// WalletConfig holds wallet session configuration
type WalletConfig struct {
	// Address is a preconfigured wallet address, used before the saved session
	Address string

	// SessionFile is where the connected wallet session is persisted
	SessionFile string
}

// DemoConfig holds demo mode configuration
type DemoConfig struct {
	// Enabled lets commands fall back to the demo wallet and demo agent
	Enabled bool

	// Port is the port the demo agent server listens on
	Port int
}

// Config holds all configuration for the dailyagi CLI
type Config struct {
	Verbosity Verbosity
	Agent     AgentConfig
	API       APIConfig
	Wallet    WalletConfig
	Demo      DemoConfig
}

// fileConfig mirrors Config for the optional YAML file. Pointer fields
// distinguish "absent" from zero values.
type fileConfig struct {
	Verbosity *string `yaml:"verbosity"`
	Agent     struct {
		URL            *string `yaml:"url"`
		Path           *string `yaml:"path"`
		TimeoutSeconds *int    `yaml:"timeout_seconds"`
	} `yaml:"agent"`
	API struct {
		URL            *string `yaml:"url"`
		TimeoutSeconds *int    `yaml:"timeout_seconds"`
	} `yaml:"api"`
	Wallet struct {
		Address     *string `yaml:"address"`
		SessionFile *string `yaml:"session_file"`
	} `yaml:"wallet"`
	Demo struct {
		Enabled *bool `yaml:"enabled"`
		Port    *int  `yaml:"port"`
	} `yaml:"demo"`
}

// New creates a new Config instance from defaults, the optional config file
// and environment variables
func New() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg := Default()

	if path := os.Getenv("DAILYAGI_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Verbosity: VerbosityNormal,
		Agent: AgentConfig{
			URL:  DefaultAgentURL,
			Path: DefaultAgentPath,
		},
		API: APIConfig{
			URL:     DefaultAPIURL,
			Timeout: DefaultRequestTimeout,
		},
		Wallet: WalletConfig{
			SessionFile: defaultSessionFile(),
		},
		Demo: DemoConfig{
			Port: DefaultDemoPort,
		},
	}
}

// IsVerbose returns true if verbosity is verbose or debug
func (c *Config) IsVerbose() bool {
	return c.Verbosity == VerbosityVerbose || c.Verbosity == VerbosityDebug
}

// IsDebug returns true if verbosity is debug
func (c *Config) IsDebug() bool {
	return c.Verbosity == VerbosityDebug
}

// loadEnvFile seeds the environment from DAILYAGI_ENV_FILE or ./.env.
// Variables already set in the environment are not overridden.
func loadEnvFile() error {
	path := os.Getenv("DAILYAGI_ENV_FILE")
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyFile(path string) error {
	ext := filepath.Ext(path)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("invalid config file %s: only .yaml and .yml files are allowed", path)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.Verbosity != nil {
		v, err := parseVerbosity(*fc.Verbosity)
		if err != nil {
			return fmt.Errorf("config file %s: %w", path, err)
		}
		c.Verbosity = v
	}
	if fc.Agent.URL != nil {
		c.Agent.URL = *fc.Agent.URL
	}
	if fc.Agent.Path != nil {
		c.Agent.Path = *fc.Agent.Path
	}
	if fc.Agent.TimeoutSeconds != nil {
		if *fc.Agent.TimeoutSeconds < 0 {
			return fmt.Errorf("config file %s: agent.timeout_seconds must not be negative", path)
		}
		c.Agent.Timeout = time.Duration(*fc.Agent.TimeoutSeconds) * time.Second
	}
	if fc.API.URL != nil {
		c.API.URL = *fc.API.URL
	}
	if fc.API.TimeoutSeconds != nil {
		if *fc.API.TimeoutSeconds <= 0 {
			return fmt.Errorf("config file %s: api.timeout_seconds must be positive", path)
		}
		c.API.Timeout = time.Duration(*fc.API.TimeoutSeconds) * time.Second
	}
	if fc.Wallet.Address != nil {
		c.Wallet.Address = *fc.Wallet.Address
	}
	if fc.Wallet.SessionFile != nil {
		c.Wallet.SessionFile = *fc.Wallet.SessionFile
	}
	if fc.Demo.Enabled != nil {
		c.Demo.Enabled = *fc.Demo.Enabled
	}
	if fc.Demo.Port != nil {
		if *fc.Demo.Port < 1 || *fc.Demo.Port > 65535 {
			return fmt.Errorf("config file %s: demo.port must be between 1 and 65535, got: %d", path, *fc.Demo.Port)
		}
		c.Demo.Port = *fc.Demo.Port
	}

	return c.validateURLs()
}

func (c *Config) applyEnv() error {
	if verbosity := os.Getenv("DAILYAGI_VERBOSITY"); verbosity != "" {
		v, err := parseVerbosity(verbosity)
		if err != nil {
			return fmt.Errorf("DAILYAGI_VERBOSITY %w", err)
		}
		c.Verbosity = v
	}

	if agentURL := os.Getenv("DAILYAGI_AGENT_URL"); agentURL != "" {
		c.Agent.URL = agentURL
	}
	if agentPath := os.Getenv("DAILYAGI_AGENT_PATH"); agentPath != "" {
		c.Agent.Path = agentPath
	}
	if apiURL := os.Getenv("DAILYAGI_API_URL"); apiURL != "" {
		c.API.URL = apiURL
	}

	if timeoutStr := os.Getenv("DAILYAGI_STREAM_TIMEOUT"); timeoutStr != "" {
		secs, err := strconv.Atoi(timeoutStr)
		if err != nil {
			return fmt.Errorf("invalid DAILYAGI_STREAM_TIMEOUT: %w", err)
		}
		if secs < 0 {
			return fmt.Errorf("DAILYAGI_STREAM_TIMEOUT must not be negative, got: %d", secs)
		}
		c.Agent.Timeout = time.Duration(secs) * time.Second
	}

	if timeoutStr := os.Getenv("DAILYAGI_REQUEST_TIMEOUT"); timeoutStr != "" {
		secs, err := strconv.Atoi(timeoutStr)
		if err != nil {
			return fmt.Errorf("invalid DAILYAGI_REQUEST_TIMEOUT: %w", err)
		}
		if secs <= 0 {
			return fmt.Errorf("DAILYAGI_REQUEST_TIMEOUT must be positive, got: %d", secs)
		}
		c.API.Timeout = time.Duration(secs) * time.Second
	}

	if address := strings.TrimSpace(os.Getenv("DAILYAGI_WALLET")); address != "" {
		c.Wallet.Address = address
	}
	if sessionFile := os.Getenv("DAILYAGI_SESSION_FILE"); sessionFile != "" {
		c.Wallet.SessionFile = sessionFile
	}

	demo, err := parseBoolEnv("DAILYAGI_DEMO_MODE", c.Demo.Enabled)
	if err != nil {
		return err
	}
	c.Demo.Enabled = demo

	if portStr := os.Getenv("DAILYAGI_DEMO_PORT"); portStr != "" {
		port, err := parsePort(portStr)
		if err != nil {
			return fmt.Errorf("DAILYAGI_DEMO_PORT %s", err)
		}
		c.Demo.Port = port
	}

	return c.validateURLs()
}

func (c *Config) validateURLs() error {
	for name, raw := range map[string]string{"agent url": c.Agent.URL, "api url": c.API.URL} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an absolute http(s) URL, got: %q", name, raw)
		}
	}
	return nil
}

func parseVerbosity(value string) (Verbosity, error) {
	switch Verbosity(value) {
	case VerbosityNormal, VerbosityVerbose, VerbosityDebug:
		return Verbosity(value), nil
	}
	return "", fmt.Errorf("must be one of: normal, verbose, debug; got: %s", value)
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".dailyagi", "session.yaml")
	}
	return filepath.Join(home, ".dailyagi", "session.yaml")
}

// parseBoolEnv parses a boolean environment variable with a default value
func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	switch value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("%s must be true or false, got: %s", key, value)
	}
}

// parsePort parses and validates a port number string
func parsePort(portStr string) (int, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid port number: %s", portStr)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("must be between 1 and 65535, got: %d", port)
	}
	return port, nil
}
