package config

import (
	_ "embed"
	"os"
	"strings"
	"time"
)

// Default values for configuration.
const (
	DefaultTopUsers       = 5
	DefaultTopWords       = 10
	DefaultServerAddr     = ":8080"
	DefaultMaxUploadBytes = 64 << 20
	DefaultLogLevel       = "info"
	DefaultWebhookTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvLogLevel   = "CHATLENS_LOG_LEVEL"
	EnvServerAddr = "CHATLENS_SERVER_ADDR"
)

//go:embed stopwords_en.txt
var defaultStopwordsFile string

// DefaultStopwords returns the built-in English stopword list.
func DefaultStopwords() []string {
	return parseWordList(defaultStopwordsFile)
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analytics: AnalyticsConfig{
			TopUsers: DefaultTopUsers,
			TopWords: DefaultTopWords,
		},
		Server: ServerConfig{
			Addr:           DefaultServerAddr,
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
	if addr := os.Getenv(EnvServerAddr); addr != "" {
		c.Server.Addr = addr
	}
}

// parseWordList reads one word per line, skipping blanks and # comments.
func parseWordList(s string) []string {
	var words []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words
}
