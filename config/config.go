package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go-simpler.org/env"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/sentiment"
)

const (
	SOURCE_PULLPUSH = "pullpush"
	SOURCE_REDDIT   = "reddit"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" default:"development"`
	Port     string `env:"PORT" default:"8080"`
	LogLevel string `env:"LOG_LEVEL" default:"info"`

	// Fetching
	Source             string        `env:"FETCH_SOURCE" default:"pullpush"`
	PullPushBaseURL    string        `env:"PULLPUSH_BASE_URL"`
	RedditClientID     string        `env:"REDDIT_CLIENT_ID"`
	RedditClientSecret string        `env:"REDDIT_CLIENT_SECRET"`
	FetchRPS           float64       `env:"FETCH_REQUESTS_PER_SECOND" default:"2"`
	FetchTimeout       time.Duration `env:"FETCH_TIMEOUT" default:"15s"`
	DefaultPostLimit   int           `env:"DEFAULT_POST_LIMIT" default:"25"`
	DefaultComments    int           `env:"DEFAULT_COMMENTS_PER_POST" default:"5"`
	MaxCommentDepth    int           `env:"MAX_COMMENT_DEPTH" default:"3"`

	// Scoring
	NegativeThreshold    float64 `env:"SENTIMENT_NEGATIVE_THRESHOLD" default:"-0.20"`
	PositiveThreshold    float64 `env:"SENTIMENT_POSITIVE_THRESHOLD" default:"0.20"`
	VaderWeight          float64 `env:"SENTIMENT_VADER_WEIGHT" default:"0.6"`
	SecondaryWeight      float64 `env:"SENTIMENT_SECONDARY_WEIGHT" default:"0.4"`
	TransformerModelPath string  `env:"TRANSFORMER_MODEL_PATH"`
	ScoringWorkers       int     `env:"SCORING_WORKERS" default:"0"`

	// Themes and insights
	TaxonomyPath            string  `env:"THEME_TAXONOMY_PATH"`
	ThemeCount              int     `env:"THEME_COUNT" default:"6"`
	HighImpactLimit         int     `env:"HIGH_IMPACT_LIMIT" default:"5"`
	ImpactPolarityThreshold float64 `env:"IMPACT_POLARITY_THRESHOLD" default:"0.20"`

	// Narrative
	LLMBaseURL        string        `env:"LLM_BASE_URL"`
	LLMAPIKey         string        `env:"LLM_API_KEY"`
	LLMModel          string        `env:"LLM_MODEL"`
	LLMTimeout        time.Duration `env:"LLM_TIMEOUT" default:"30s"`
	LLMHealthInterval time.Duration `env:"LLM_HEALTH_INTERVAL" default:"15s"`

	// Storage and sinks; empty disables the component.
	SQLitePath     string        `env:"SQLITE_PATH" default:"reports.db"`
	ValkeyAddress  string        `env:"VALKEY_ADDRESS"`
	ValkeyPassword string        `env:"VALKEY_PASSWORD"`
	CacheTTL       time.Duration `env:"REPORT_CACHE_TTL" default:"15m"`
	KafkaBroker    string        `env:"KAFKA_BROKER"`
	KafkaTopic     string        `env:"KAFKA_TOPIC"`
	DynamoTable    string        `env:"DYNAMODB_TABLE"`
	AWSRegion      string        `env:"AWS_REGION" default:"us-east-1"`
	AWSEndpoint    string        `env:"AWS_ENDPOINT"`

	AnalyzeTimeout time.Duration `env:"ANALYZE_TIMEOUT" default:"2m"`
}

// Load reads the configuration from the environment, applying defaults and
// validating the result. Call LoadEnv first to pull in a .env file.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg.Source = strings.ToLower(strings.TrimSpace(cfg.Source))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Source {
	case SOURCE_PULLPUSH:
	case SOURCE_REDDIT:
		if c.RedditClientID == "" || c.RedditClientSecret == "" {
			return fmt.Errorf("REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET are required when FETCH_SOURCE=reddit")
		}
	default:
		return fmt.Errorf("FETCH_SOURCE must be %q or %q, got %q", SOURCE_PULLPUSH, SOURCE_REDDIT, c.Source)
	}

	if err := c.Thresholds().Validate(); err != nil {
		return fmt.Errorf("invalid sentiment thresholds: %w", err)
	}
	if math.IsNaN(c.VaderWeight) || math.IsNaN(c.SecondaryWeight) || c.VaderWeight < 0 || c.SecondaryWeight < 0 {
		return fmt.Errorf("sentiment weights must be non-negative")
	}
	if c.VaderWeight+c.SecondaryWeight == 0 {
		return fmt.Errorf("sentiment weights must not both be zero")
	}
	if c.DefaultPostLimit < 1 || c.ThemeCount < 1 || c.HighImpactLimit < 1 || c.MaxCommentDepth < 1 {
		return fmt.Errorf("DEFAULT_POST_LIMIT, THEME_COUNT, HIGH_IMPACT_LIMIT and MAX_COMMENT_DEPTH must be >= 1")
	}
	if c.DefaultComments < 0 {
		return fmt.Errorf("DEFAULT_COMMENTS_PER_POST must be >= 0")
	}
	if math.IsNaN(c.ImpactPolarityThreshold) || c.ImpactPolarityThreshold < 0 || c.ImpactPolarityThreshold >= 1 {
		return fmt.Errorf("IMPACT_POLARITY_THRESHOLD must be in [0, 1)")
	}
	if c.LLMEnabled() && c.LLMHealthInterval <= 0 {
		return fmt.Errorf("LLM_HEALTH_INTERVAL must be positive")
	}
	return nil
}

func (c *Config) Thresholds() sentiment.Thresholds {
	return sentiment.Thresholds{Negative: c.NegativeThreshold, Positive: c.PositiveThreshold}
}

// LLMEnabled reports whether a narrative LLM endpoint is configured.
func (c *Config) LLMEnabled() bool {
	return c.LLMBaseURL != "" || c.LLMAPIKey != ""
}
