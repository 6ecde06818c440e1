// Package config provides configuration loading and validation for chatlens.
package config

import (
	"regexp"
	"time"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Analytics     AnalyticsConfig `yaml:"analytics"`
	Stopwords     []string        `yaml:"stopwords,omitempty"`
	StopwordsFile string          `yaml:"stopwords_file,omitempty"`
	Filters       FilterConfig    `yaml:"filters"`
	Webhooks      []WebhookConfig `yaml:"webhooks,omitempty"`
	Server        ServerConfig    `yaml:"server"`
	Log           LogConfig       `yaml:"log"`

	// Populated during validation.
	stopwords    []string
	systemFilter *parser.SystemFilter
}

// ResolvedStopwords returns the stopword list after merging the inline list,
// the stopwords file and the built-in defaults.
func (c *Config) ResolvedStopwords() []string {
	return c.stopwords
}

// SystemFilter returns the parser filter built from the filters section.
func (c *Config) SystemFilter() *parser.SystemFilter {
	return c.systemFilter
}

// AnalyticsConfig tunes the aggregate computations.
type AnalyticsConfig struct {
	// TopUsers is the number of senders in the busiest-users chart.
	TopUsers int `yaml:"top_users,omitempty"`
	// TopWords is the number of entries in the common-words table.
	TopWords int `yaml:"top_words,omitempty"`
	// Parallel computes independent aggregates concurrently.
	Parallel bool `yaml:"parallel,omitempty"`
}

// FilterConfig defines which entries the parser treats as system lines.
type FilterConfig struct {
	// SenderKeywords are matched case-insensitively anywhere in the sender.
	// Nil means the built-in list.
	SenderKeywords []string `yaml:"sender_keywords,omitempty"`
	// BodyPatterns are case-insensitive regular expressions matched against
	// the body. Nil means the built-in list.
	BodyPatterns []string `yaml:"body_patterns,omitempty"`

	compiledBodyPatterns []*regexp.Regexp
}

// CompiledBodyPatterns returns the compiled body patterns.
func (f *FilterConfig) CompiledBodyPatterns() []*regexp.Regexp {
	return f.compiledBodyPatterns
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
	// MaxUploadBytes limits the size of an uploaded export.
	MaxUploadBytes int64 `yaml:"max_upload_bytes,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is a zerolog level name (trace, debug, info, warn, error).
	Level string `yaml:"level,omitempty"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnRecords fires only when the export had messages (default).
	WebhookTriggerOnRecords WebhookTrigger = "on_records"
	// WebhookTriggerAlways fires after every analysis.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`
	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`
	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`
	// Trigger determines when the webhook fires.
	// Defaults to "on_records" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`
	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
