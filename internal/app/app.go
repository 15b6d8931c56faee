// Package app assembles the analyzer and its collaborators from Config.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/config"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/clients"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/db"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/insights"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/monitoring"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/processing"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/sentiment"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/summary"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/themes"
)

// Check is a named readiness check.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

type App struct {
	Analyzer *processing.Analyzer
	// Store is nil when SQLITE_PATH is empty.
	Store *db.SQLiteStore
	// Archive is nil when DYNAMODB_TABLE is empty.
	Archive *db.DynamoStore
	// Latest is nil when VALKEY_ADDRESS is empty.
	Latest *clients.ValkeyClient

	cfg        *config.Config
	clock      clockwork.Clock
	llmHealthy *atomic.Bool
	llmChecker monitoring.HealthChecker
	checks     []Check
	closers    []func()
}

// New connects every configured collaborator. Optional components (cache,
// sinks, LLM) are skipped when their settings are empty; a configured
// component that cannot be reached fails start-up.
func New(ctx context.Context, cfg *config.Config, clock clockwork.Clock) (*App, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	a := &App{cfg: cfg, clock: clock, llmHealthy: &atomic.Bool{}}
	a.llmHealthy.Store(true)

	if err := a.build(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.cfg

	scorer, err := a.newScorer()
	if err != nil {
		return err
	}

	extractor, err := newExtractor(cfg.TaxonomyPath)
	if err != nil {
		return err
	}

	aggregator, err := insights.NewAggregator(insights.Config{
		ImpactPolarityThreshold: cfg.ImpactPolarityThreshold,
		ThemeDisplayLimit:       cfg.ThemeCount,
		MinItems:                insights.DefaultMinItems,
	})
	if err != nil {
		return fmt.Errorf("[App] invalid insight config: %w", err)
	}

	opts := []processing.AnalyzerOption{
		processing.WithClock(a.clock),
		processing.WithAnalyzerConfig(processing.AnalyzerConfig{
			ThemeCount:      cfg.ThemeCount,
			HighImpactLimit: cfg.HighImpactLimit,
			MaxCommentDepth: cfg.MaxCommentDepth,
			CacheTTL:        cfg.CacheTTL,
		}),
		processing.WithNarrator(a.newNarrator()),
	}

	sinkOpts, err := a.connectSinks(ctx)
	if err != nil {
		return err
	}
	opts = append(opts, sinkOpts...)

	analyzer, err := processing.NewAnalyzer(a.newSource(), scorer, extractor, aggregator, opts...)
	if err != nil {
		return fmt.Errorf("[App] failed to build analyzer: %w", err)
	}
	a.Analyzer = analyzer
	return nil
}

func (a *App) newScorer() (*sentiment.Scorer, error) {
	cfg := a.cfg
	var secondary sentiment.Estimator = sentiment.NewPatternEstimator()
	if cfg.TransformerModelPath != "" {
		est, closeFn, err := newTransformerEstimator(cfg.TransformerModelPath)
		if err != nil {
			return nil, fmt.Errorf("[App] failed to load transformer estimator: %w", err)
		}
		a.closers = append(a.closers, func() { _ = closeFn() })
		secondary = est
	}

	scorer, err := sentiment.NewScorer(cfg.Thresholds(), []sentiment.WeightedEstimator{
		{Estimator: sentiment.NewVaderEstimator(), Weight: cfg.VaderWeight},
		{Estimator: secondary, Weight: cfg.SecondaryWeight},
	}, sentiment.WithWorkers(cfg.ScoringWorkers))
	if err != nil {
		return nil, fmt.Errorf("[App] failed to build scorer: %w", err)
	}
	slog.Info("[App] Sentiment scorer ready",
		slog.String("secondary", secondary.Name()),
		slog.Float64("vader_weight", cfg.VaderWeight),
		slog.Float64("secondary_weight", cfg.SecondaryWeight))
	return scorer, nil
}

func newExtractor(taxonomyPath string) (*themes.Extractor, error) {
	if taxonomyPath == "" {
		return themes.NewExtractor(), nil
	}
	taxonomy, err := themes.LoadTaxonomy(taxonomyPath)
	if err != nil {
		return nil, fmt.Errorf("[App] failed to load taxonomy: %w", err)
	}
	return themes.NewExtractor(themes.WithTaxonomy(taxonomy)), nil
}

func (a *App) newSource() processing.Source {
	cfg := a.cfg
	if cfg.Source == config.SOURCE_REDDIT {
		return clients.NewRedditClient(clients.RedditConfig{
			ClientID:          cfg.RedditClientID,
			ClientSecret:      cfg.RedditClientSecret,
			Timeout:           cfg.FetchTimeout,
			RequestsPerSecond: cfg.FetchRPS,
		})
	}
	return clients.NewPullPushClient(clients.PullPushConfig{
		BaseURL:           cfg.PullPushBaseURL,
		Timeout:           cfg.FetchTimeout,
		RequestsPerSecond: cfg.FetchRPS,
	})
}

func (a *App) newNarrator() *summary.Narrator {
	cfg := a.cfg
	if !cfg.LLMEnabled() {
		return summary.NewNarrator(nil, summary.RuleBased{}, nil)
	}
	llm := summary.NewOpenAISummarizer(clients.NewOpenAIClient(clients.OpenAIConfig{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMBaseURL,
		Timeout: cfg.LLMTimeout,
	}), cfg.LLMModel)
	a.llmChecker = llm
	return summary.NewNarrator(llm, summary.RuleBased{}, a.llmHealthy)
}

func (a *App) connectSinks(ctx context.Context) ([]processing.AnalyzerOption, error) {
	cfg := a.cfg
	var opts []processing.AnalyzerOption

	if cfg.SQLitePath != "" {
		store, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.Store = store
		a.closers = append(a.closers, func() { _ = store.Close() })
		a.checks = append(a.checks, Check{Name: "sqlite", Fn: store.Ping})
		opts = append(opts, processing.WithSink("sqlite", store))
	}

	if cfg.ValkeyAddress != "" {
		vc, err := clients.NewValkeyClient(ctx, clients.ValkeyConfig{
			Address:  cfg.ValkeyAddress,
			Password: cfg.ValkeyPassword,
		})
		if err != nil {
			return nil, err
		}
		a.Latest = vc
		a.closers = append(a.closers, vc.Close)
		a.checks = append(a.checks, Check{Name: "valkey", Fn: vc.Ping})
		opts = append(opts, processing.WithCache(vc), processing.WithSink("valkey", vc))
	}

	if cfg.KafkaBroker != "" {
		kp, err := clients.NewKafkaPublisher(clients.KafkaConfig{
			Broker: cfg.KafkaBroker,
			Topic:  cfg.KafkaTopic,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, kp.Close)
		opts = append(opts, processing.WithSink("kafka", kp))
	}

	if cfg.DynamoTable != "" {
		client, err := clients.NewDynamoDBClient(ctx, clients.AWSConfig{
			Region:   cfg.AWSRegion,
			Endpoint: cfg.AWSEndpoint,
		})
		if err != nil {
			return nil, err
		}
		a.Archive = db.NewDynamoStore(client, cfg.DynamoTable, db.DEFAULT_REPORT_TTL, a.clock)
		opts = append(opts, processing.WithSink("dynamodb", a.Archive))
	}

	return opts, nil
}

// Checks returns the readiness checks of the connected dependencies.
func (a *App) Checks() []Check {
	return a.checks
}

// MonitorLLM keeps the LLM health flag current until ctx ends. It returns
// immediately when no LLM is configured.
func (a *App) MonitorLLM(ctx context.Context) {
	if a.llmChecker == nil {
		return
	}
	monitoring.MonitorLLMHealth(ctx, a.clock, a.llmChecker, a.cfg.LLMHealthInterval, a.llmHealthy)
}

// Close releases collaborators in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
