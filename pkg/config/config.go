package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// Load reads and validates a configuration file. An empty path yields the
// validated defaults, still subject to environment overrides.
func Load(_ context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors, fills defaults, compiles
// patterns and resolves the stopword list.
func Validate(cfg *Config) error {
	if err := validateAnalytics(&cfg.Analytics); err != nil {
		return fmt.Errorf("analytics: %w", err)
	}

	stopwords, err := resolveStopwords(cfg.Stopwords, cfg.StopwordsFile)
	if err != nil {
		return fmt.Errorf("stopwords_file: %w", err)
	}
	cfg.stopwords = stopwords

	if err := validateFilters(&cfg.Filters); err != nil {
		return fmt.Errorf("filters.%w", err)
	}
	keywords := cfg.Filters.SenderKeywords
	if keywords == nil {
		keywords = parser.DefaultSenderKeywords
	}
	cfg.systemFilter = parser.NewSystemFilter(keywords, cfg.Filters.compiledBodyPatterns)

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if cfg.Server.MaxUploadBytes < 0 {
		return errors.New("server.max_upload_bytes: must not be negative")
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = DefaultMaxUploadBytes
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validateAnalytics(a *AnalyticsConfig) error {
	if a.TopUsers < 0 {
		return fmt.Errorf("top_users must be positive, got %d", a.TopUsers)
	}
	if a.TopWords < 0 {
		return fmt.Errorf("top_words must be positive, got %d", a.TopWords)
	}
	if a.TopUsers == 0 {
		a.TopUsers = DefaultTopUsers
	}
	if a.TopWords == 0 {
		a.TopWords = DefaultTopWords
	}
	return nil
}

func validateFilters(f *FilterConfig) error {
	patterns := f.BodyPatterns
	if patterns == nil {
		patterns = parser.DefaultBodyPatterns
	}

	f.compiledBodyPatterns = make([]*regexp.Regexp, 0, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return fmt.Errorf("body_patterns[%d]: invalid pattern: %w", i, err)
		}
		f.compiledBodyPatterns = append(f.compiledBodyPatterns, re)
	}

	for i, kw := range f.SenderKeywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("sender_keywords[%d]: keyword must not be blank", i)
		}
	}
	return nil
}

// resolveStopwords merges the inline list with the stopwords file. When
// neither is given the built-in English list is used.
func resolveStopwords(inline []string, path string) ([]string, error) {
	words := append([]string(nil), inline...)

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided path is expected
		if err != nil {
			return nil, fmt.Errorf("reading stopwords: %w", err)
		}
		words = append(words, parseWordList(string(data))...)
	}

	if len(words) == 0 {
		return DefaultStopwords(), nil
	}
	return words, nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("url must have a host")
	}

	wh.Token = expandEnvVar(wh.Token)

	switch wh.Trigger {
	case "":
		wh.Trigger = WebhookTriggerOnRecords
	case WebhookTriggerOnRecords, WebhookTriggerAlways, WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (must be on_records, always, or never)", wh.Trigger)
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		return os.Getenv(s[1:])
	}

	return s
}
