// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration. It is built once at process
// start and passed by reference; nothing mutates it after Load.
type Config struct {
	Port        string
	Env         string
	DatabaseURL string // scheme-prefixed connection string for the SQL tools and chat store
	ProjectRoot string // base directory for relative SQLite paths
	ChromaHost  string
	ChromaPort  int
	ServerCmd   string // executable the transport shim spawns for MCP calls
	AgentModel  string
	Transcript  TranscriptConfig
}

// TranscriptConfig controls NDJSON chat transcript logging.
type TranscriptConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	queueSize := getEnvInt("TRANSCRIPT_LOG_QUEUE_SIZE", 1000)
	if queueSize <= 0 {
		queueSize = 1000
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		ProjectRoot: getEnv("PROJECT_ROOT", "."),
		ChromaHost:  getEnv("CHROMA_HOST", "localhost"),
		ChromaPort:  getEnvInt("CHROMA_PORT", 8000),
		ServerCmd:   getEnv("MCP_SERVER_CMD", "mcp-server"),
		AgentModel:  getEnv("AGENT_MODEL", "gpt-4o-mini"),
		Transcript: TranscriptConfig{
			Enabled:   getEnvBool("TRANSCRIPT_LOG_ENABLED", false),
			Dir:       getEnv("TRANSCRIPT_LOG_DIR", "./data/logs/transcripts"),
			QueueSize: queueSize,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.ChromaPort <= 0 || c.ChromaPort > 65535 {
		return fmt.Errorf("CHROMA_PORT must be a valid port number")
	}
	if c.ServerCmd == "" {
		return fmt.Errorf("MCP_SERVER_CMD cannot be empty")
	}
	if c.Transcript.Enabled && c.Transcript.Dir == "" {
		return fmt.Errorf("TRANSCRIPT_LOG_DIR cannot be empty when transcript logging is enabled")
	}
	return nil
}

// ChromaURL returns the base URL of the vector-memory endpoint.
func (c *Config) ChromaURL() string {
	return fmt.Sprintf("http://%s:%d", c.ChromaHost, c.ChromaPort)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
