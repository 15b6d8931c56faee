package processing

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/oklog/ulid/v2"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/insights"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/metrics"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/sentiment"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/themes"
)

const (
	MinPostLimit       = 1
	MaxPostLimit       = 100
	MaxCommentsPerPost = 50
)

// ErrFetch marks failures of the upstream source so callers can tell them
// apart from invalid requests.
var ErrFetch = errors.New("fetch failed")

type Source interface {
	Name() string
	FetchPosts(ctx context.Context, subreddit string, opts models.FetchOptions) ([]models.RedditPost, error)
}

// Narrator produces the free-text narrative for a summary. It reports which
// kind of narrative it produced.
type Narrator interface {
	Narrate(ctx context.Context, subreddit string, summary models.InsightSummary, useAI bool) (string, models.NarrativeSource)
}

// ReportSink is a best-effort destination for finished reports.
type ReportSink interface {
	SaveReport(ctx context.Context, report *models.Report) error
}

// ReportCache returns (nil, nil) on a miss.
type ReportCache interface {
	CachedReport(ctx context.Context, key string) (*models.Report, error)
	CacheReport(ctx context.Context, key string, report *models.Report, ttl time.Duration) error
}

type AnalyzerConfig struct {
	ThemeCount      int
	HighImpactLimit int
	MaxCommentDepth int
	CacheTTL        time.Duration
}

func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		ThemeCount:      insights.DefaultThemeDisplayLimit,
		HighImpactLimit: 5,
		MaxCommentDepth: 3,
		CacheTTL:        15 * time.Minute,
	}
}

type namedSink struct {
	name string
	sink ReportSink
}

type Analyzer struct {
	source     Source
	scorer     *sentiment.Scorer
	extractor  *themes.Extractor
	aggregator *insights.Aggregator
	narrator   Narrator
	cache      ReportCache
	sinks      []namedSink
	clock      clockwork.Clock
	cfg        AnalyzerConfig

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

type AnalyzerOption func(*Analyzer)

func WithNarrator(n Narrator) AnalyzerOption {
	return func(a *Analyzer) { a.narrator = n }
}

func WithCache(c ReportCache) AnalyzerOption {
	return func(a *Analyzer) { a.cache = c }
}

func WithSink(name string, sink ReportSink) AnalyzerOption {
	return func(a *Analyzer) { a.sinks = append(a.sinks, namedSink{name: name, sink: sink}) }
}

func WithClock(clock clockwork.Clock) AnalyzerOption {
	return func(a *Analyzer) { a.clock = clock }
}

func WithAnalyzerConfig(cfg AnalyzerConfig) AnalyzerOption {
	return func(a *Analyzer) { a.cfg = cfg }
}

func NewAnalyzer(source Source, scorer *sentiment.Scorer, extractor *themes.Extractor, aggregator *insights.Aggregator, opts ...AnalyzerOption) (*Analyzer, error) {
	if source == nil || scorer == nil || extractor == nil || aggregator == nil {
		return nil, fmt.Errorf("%w: analyzer needs a source, scorer, extractor and aggregator", models.ErrInvalidArgument)
	}
	a := &Analyzer{
		source:     source,
		scorer:     scorer,
		extractor:  extractor,
		aggregator: aggregator,
		clock:      clockwork.NewRealClock(),
		cfg:        DefaultAnalyzerConfig(),
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.cfg.ThemeCount < 1 || a.cfg.HighImpactLimit < 1 {
		return nil, fmt.Errorf("%w: theme count and high impact limit must be >= 1", models.ErrInvalidArgument)
	}
	return a, nil
}

// NormalizeRequest trims the subreddit name and clamps limits to what the
// upstream APIs accept.
func NormalizeRequest(req models.AnalysisRequest) (models.AnalysisRequest, error) {
	name := strings.TrimSpace(req.Subreddit)
	name = strings.TrimPrefix(strings.TrimPrefix(name, "/"), "r/")
	if name == "" {
		return req, fmt.Errorf("%w: subreddit name cannot be empty", models.ErrInvalidArgument)
	}
	req.Subreddit = name
	req.PostLimit = min(max(req.PostLimit, MinPostLimit), MaxPostLimit)
	req.CommentsPerPost = min(max(req.CommentsPerPost, 0), MaxCommentsPerPost)
	return req, nil
}

// CacheKey identifies reports that answer the same request.
func CacheKey(req models.AnalysisRequest) string {
	return fmt.Sprintf("report:%s:%d:%d:%t", strings.ToLower(req.Subreddit), req.PostLimit, req.CommentsPerPost, req.UseAI)
}

// Run executes one analysis: fetch, clean, score, extract themes, aggregate,
// narrate and hand the report to every sink.
func (a *Analyzer) Run(ctx context.Context, req models.AnalysisRequest) (*models.Report, error) {
	start := a.clock.Now()

	req, err := NormalizeRequest(req)
	if err != nil {
		metrics.AnalysisRunsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	key := CacheKey(req)

	if cached := a.cached(ctx, key, req.Refresh); cached != nil {
		metrics.AnalysisRunsTotal.WithLabelValues("cached").Inc()
		return cached, nil
	}

	slog.Info("[Analyzer] Starting analysis run",
		slog.String("subreddit", req.Subreddit),
		slog.Int("post_limit", req.PostLimit),
		slog.Int("comments_per_post", req.CommentsPerPost),
		slog.Bool("use_ai", req.UseAI))

	fetchStart := a.clock.Now()
	posts, err := a.source.FetchPosts(ctx, req.Subreddit, models.FetchOptions{
		PostLimit:       req.PostLimit,
		CommentsPerPost: req.CommentsPerPost,
		MaxCommentDepth: a.cfg.MaxCommentDepth,
	})
	metrics.FetchDuration.WithLabelValues(a.source.Name()).Observe(a.clock.Since(fetchStart).Seconds())
	if err != nil {
		metrics.AnalysisRunsTotal.WithLabelValues("fetch_error").Inc()
		return nil, fmt.Errorf("[Analyzer] %w from %s: %w", ErrFetch, a.source.Name(), err)
	}

	items := Flatten(posts, FlattenOptions{MaxCommentDepth: a.cfg.MaxCommentDepth})

	scored, err := a.scorer.ScoreItems(ctx, items)
	if err != nil {
		metrics.AnalysisRunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("[Analyzer] failed to score items: %w", err)
	}
	recordScored(scored)

	extracted, err := a.extractor.Extract(themes.FromItems(scored), a.cfg.ThemeCount)
	if err != nil {
		metrics.AnalysisRunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("[Analyzer] failed to extract themes: %w", err)
	}

	summary, err := a.aggregator.Aggregate(scored, extracted, a.cfg.HighImpactLimit)
	if err != nil {
		metrics.AnalysisRunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("[Analyzer] failed to aggregate insights: %w", err)
	}

	report := &models.Report{
		RunID:           a.newRunID(start),
		Subreddit:       req.Subreddit,
		GeneratedAt:     start.UTC(),
		Request:         req,
		Items:           scored,
		Summary:         summary,
		NarrativeSource: models.NarrativeNone,
	}
	if a.narrator != nil && !summary.InsufficientData {
		report.Narrative, report.NarrativeSource = a.narrator.Narrate(ctx, req.Subreddit, summary, req.UseAI)
	}
	metrics.NarrativesTotal.WithLabelValues(string(report.NarrativeSource)).Inc()

	duration := a.clock.Since(start)
	report.DurationMS = duration.Milliseconds()

	a.publish(ctx, key, report)

	metrics.AnalysisRunsTotal.WithLabelValues("ok").Inc()
	metrics.AnalysisRunDuration.Observe(duration.Seconds())
	slog.Info("[Analyzer] Analysis run complete",
		slog.String("run_id", report.RunID),
		slog.String("subreddit", report.Subreddit),
		slog.Int("posts", len(posts)),
		slog.Int("items", len(scored)),
		slog.Int("themes", len(summary.TopThemes)),
		slog.Duration("duration", duration))

	return report, nil
}

func (a *Analyzer) cached(ctx context.Context, key string, refresh bool) *models.Report {
	if a.cache == nil || refresh {
		return nil
	}
	report, err := a.cache.CachedReport(ctx, key)
	switch {
	case err != nil:
		metrics.ReportCacheTotal.WithLabelValues("error").Inc()
		slog.Warn("[Analyzer] Report cache lookup failed", slog.String("key", key), slog.String("error", err.Error()))
		return nil
	case report == nil:
		metrics.ReportCacheTotal.WithLabelValues("miss").Inc()
		return nil
	default:
		metrics.ReportCacheTotal.WithLabelValues("hit").Inc()
		slog.Debug("[Analyzer] Serving cached report", slog.String("key", key), slog.String("run_id", report.RunID))
		return report
	}
}

// publish writes the report to the cache and every sink. Failures are
// logged and counted only.
func (a *Analyzer) publish(ctx context.Context, key string, report *models.Report) {
	if a.cache != nil {
		if err := a.cache.CacheReport(ctx, key, report, a.cfg.CacheTTL); err != nil {
			slog.Warn("[Analyzer] Failed to cache report", slog.String("key", key), slog.String("error", err.Error()))
		}
	}

	for _, s := range a.sinks {
		if err := s.sink.SaveReport(ctx, report); err != nil {
			metrics.SinkWritesTotal.WithLabelValues(s.name, "error").Inc()
			slog.Warn("[Analyzer] Report sink failed",
				slog.String("sink", s.name),
				slog.String("run_id", report.RunID),
				slog.String("error", err.Error()))
			continue
		}
		metrics.SinkWritesTotal.WithLabelValues(s.name, "ok").Inc()
	}
}

func (a *Analyzer) newRunID(at time.Time) string {
	a.entropyMu.Lock()
	defer a.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), a.entropy).String()
}

func recordScored(items []models.ScoredItem) {
	for _, item := range items {
		metrics.ItemsScoredTotal.WithLabelValues(string(item.Kind)).Inc()
		metrics.ItemsByLabelTotal.WithLabelValues(string(item.Label)).Inc()
		if item.Degraded {
			metrics.ItemsDegradedTotal.Inc()
		}
	}
}
