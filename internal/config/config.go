// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	DB        DBConfig        `mapstructure:"db"`
	Publisher PublisherConfig `mapstructure:"publisher"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// CrawlerConfig governs harvest pipeline behavior. Concurrency is bounded at
// two levels: matches per wave and page fetches per wave within a match.
type CrawlerConfig struct {
	MatchConcurrency int    `mapstructure:"match_concurrency"`
	URLConcurrency   int    `mapstructure:"url_concurrency"`
	FetchTimeoutMs   int    `mapstructure:"fetch_timeout_ms"`
	SitemapTimeoutMs int    `mapstructure:"sitemap_timeout_ms"`
	UserAgent        string `mapstructure:"user_agent"`
}

// FetchTimeout returns the per-page deadline as a duration.
func (c CrawlerConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMs) * time.Millisecond
}

// SitemapTimeout returns the sitemap probe deadline as a duration.
func (c CrawlerConfig) SitemapTimeout() time.Duration {
	return time.Duration(c.SitemapTimeoutMs) * time.Millisecond
}

// DBConfig controls the match/email stores.
type DBConfig struct {
	Provider   string `mapstructure:"provider"`
	DSN        string `mapstructure:"dsn"`
	MatchTable string `mapstructure:"match_table"`
	EmailTable string `mapstructure:"email_table"`
	MaxConns   int32  `mapstructure:"max_conns"`
	MinConns   int32  `mapstructure:"min_conns"`
}

// PublisherConfig selects the harvest-completion event publisher.
type PublisherConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HARVESTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("crawler.match_concurrency", 5)
	v.SetDefault("crawler.url_concurrency", 3)
	v.SetDefault("crawler.fetch_timeout_ms", 3000)
	v.SetDefault("crawler.sitemap_timeout_ms", 2000)
	v.SetDefault("crawler.user_agent", "")
	v.SetDefault("db.provider", "memory")
	v.SetDefault("db.match_table", "matches")
	v.SetDefault("db.email_table", "investor_emails")
	v.SetDefault("publisher.provider", "memory")
	v.SetDefault("logging.development", true)
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth.enabled is true")
	}
	if c.Crawler.MatchConcurrency <= 0 {
		return fmt.Errorf("crawler.match_concurrency must be > 0")
	}
	if c.Crawler.URLConcurrency <= 0 {
		return fmt.Errorf("crawler.url_concurrency must be > 0")
	}
	if c.Crawler.FetchTimeoutMs <= 0 {
		return fmt.Errorf("crawler.fetch_timeout_ms must be > 0")
	}
	if c.Crawler.SitemapTimeoutMs <= 0 {
		return fmt.Errorf("crawler.sitemap_timeout_ms must be > 0")
	}
	switch c.DB.Provider {
	case "memory":
	case "postgres":
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn is required when db.provider is postgres")
		}
	default:
		return fmt.Errorf("unknown db provider %q", c.DB.Provider)
	}
	switch c.Publisher.Provider {
	case "memory":
	case "pubsub":
		if c.Publisher.ProjectID == "" || c.Publisher.Topic == "" {
			return fmt.Errorf("publisher.project_id and publisher.topic are required when publisher.provider is pubsub")
		}
	default:
		return fmt.Errorf("unknown publisher provider %q", c.Publisher.Provider)
	}
	return nil
}
