package processing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/insights"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/sentiment"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/themes"
)

type fakeSource struct {
	posts []models.RedditPost
	err   error
	calls int
	opts  models.FetchOptions
	name  string
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchPosts(_ context.Context, subreddit string, opts models.FetchOptions) ([]models.RedditPost, error) {
	f.calls++
	f.name = subreddit
	f.opts = opts
	return f.posts, f.err
}

type fakeNarrator struct{ calls int }

func (f *fakeNarrator) Narrate(_ context.Context, subreddit string, _ models.InsightSummary, useAI bool) (string, models.NarrativeSource) {
	f.calls++
	if useAI {
		return "llm narrative for " + subreddit, models.NarrativeLLM
	}
	return "rule narrative for " + subreddit, models.NarrativeRuleBased
}

type memoryCache struct {
	mu      sync.Mutex
	reports map[string]*models.Report
	ttl     time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{reports: make(map[string]*models.Report)}
}

func (m *memoryCache) CachedReport(_ context.Context, key string) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reports[key], nil
}

func (m *memoryCache) CacheReport(_ context.Context, key string, report *models.Report, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[key] = report
	m.ttl = ttl
	return nil
}

type recordingSink struct {
	saved []*models.Report
	err   error
}

func (r *recordingSink) SaveReport(_ context.Context, report *models.Report) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, report)
	return nil
}

func samplePosts() []models.RedditPost {
	return []models.RedditPost{
		{
			PostID: "p1", PostTitle: "great update, love it", Score: 50, NumComments: 1,
			Comments: []models.RedditComment{
				{CommentID: "c1", Body: "the battery drains fast now", Score: 12, Depth: 1},
			},
		},
		{PostID: "p2", PostTitle: "this is terrible and broke everything", Score: 200},
		{PostID: "p3", PostTitle: "meh, fine I guess", Score: 5},
	}
}

func newTestAnalyzer(t *testing.T, source Source, opts ...AnalyzerOption) *Analyzer {
	t.Helper()
	scorer, err := sentiment.NewDefaultScorer(sentiment.DefaultThresholds(), sentiment.WithWorkers(2))
	require.NoError(t, err)
	agg, err := insights.NewAggregator(insights.DefaultConfig())
	require.NoError(t, err)

	a, err := NewAnalyzer(source, scorer, themes.NewExtractor(), agg, opts...)
	require.NoError(t, err)
	return a
}

func TestAnalyzerRun(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	source := &fakeSource{posts: samplePosts()}
	narrator := &fakeNarrator{}
	sink := &recordingSink{}
	a := newTestAnalyzer(t, source,
		WithClock(clockwork.NewFakeClockAt(now)),
		WithNarrator(narrator),
		WithSink("memory", sink))

	report, err := a.Run(context.Background(), models.AnalysisRequest{Subreddit: " r/GooglePixel ", PostLimit: 500, CommentsPerPost: -3})
	require.NoError(t, err)

	assert.Equal(t, "GooglePixel", source.name)
	assert.Equal(t, models.FetchOptions{PostLimit: 100, CommentsPerPost: 0, MaxCommentDepth: 3}, source.opts)

	assert.Equal(t, "GooglePixel", report.Subreddit)
	assert.Equal(t, now, report.GeneratedAt)
	assert.Equal(t, 100, report.Request.PostLimit)
	require.Len(t, report.Items, 4)
	assert.Equal(t, []string{"p1", "c1", "p2", "p3"}, []string{report.Items[0].ID, report.Items[1].ID, report.Items[2].ID, report.Items[3].ID})

	id, err := ulid.Parse(report.RunID)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(now), id.Time())

	assert.Equal(t, "rule narrative for GooglePixel", report.Narrative)
	assert.Equal(t, models.NarrativeRuleBased, report.NarrativeSource)
	require.Len(t, sink.saved, 1)
	assert.Same(t, report, sink.saved[0])
}

func TestAnalyzerSummaryMatchesDirectAggregate(t *testing.T) {
	a := newTestAnalyzer(t, &fakeSource{posts: samplePosts()})

	report, err := a.Run(context.Background(), models.AnalysisRequest{Subreddit: "pixel", PostLimit: 10})
	require.NoError(t, err)

	extracted, err := themes.NewExtractor().Extract(themes.FromItems(report.Items), a.cfg.ThemeCount)
	require.NoError(t, err)
	agg, err := insights.NewAggregator(insights.DefaultConfig())
	require.NoError(t, err)
	direct, err := agg.Aggregate(report.Items, extracted, a.cfg.HighImpactLimit)
	require.NoError(t, err)

	assert.Equal(t, direct, report.Summary)
	assert.Equal(t, "p2", report.Summary.HighImpact[0].ID)
}

func TestAnalyzerRejectsEmptySubreddit(t *testing.T) {
	source := &fakeSource{}
	a := newTestAnalyzer(t, source)

	_, err := a.Run(context.Background(), models.AnalysisRequest{Subreddit: "  "})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
	assert.Equal(t, 0, source.calls)
}

func TestAnalyzerFetchError(t *testing.T) {
	upstream := errors.New("boom")
	a := newTestAnalyzer(t, &fakeSource{err: upstream})

	_, err := a.Run(context.Background(), models.AnalysisRequest{Subreddit: "pixel"})
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, upstream)
}

func TestAnalyzerEmptyFetchIsInsufficientData(t *testing.T) {
	narrator := &fakeNarrator{}
	a := newTestAnalyzer(t, &fakeSource{}, WithNarrator(narrator))

	report, err := a.Run(context.Background(), models.AnalysisRequest{Subreddit: "quiet"})
	require.NoError(t, err)
	assert.True(t, report.Summary.InsufficientData)
	assert.Equal(t, models.NarrativeNone, report.NarrativeSource)
	assert.Equal(t, 0, narrator.calls)
}

func TestAnalyzerSinkFailureDoesNotFailRun(t *testing.T) {
	good := &recordingSink{}
	a := newTestAnalyzer(t, &fakeSource{posts: samplePosts()},
		WithSink("broken", &recordingSink{err: errors.New("disk full")}),
		WithSink("good", good))

	report, err := a.Run(context.Background(), models.AnalysisRequest{Subreddit: "pixel"})
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Len(t, good.saved, 1)
}

func TestAnalyzerCache(t *testing.T) {
	source := &fakeSource{posts: samplePosts()}
	cache := newMemoryCache()
	a := newTestAnalyzer(t, source, WithCache(cache))
	req := models.AnalysisRequest{Subreddit: "pixel", PostLimit: 10}

	first, err := a.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, DefaultAnalyzerConfig().CacheTTL, cache.ttl)

	second, err := a.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, source.calls)

	req.Refresh = true
	third, err := a.Run(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, third.RunID)
	assert.Equal(t, 2, source.calls)
}

func TestAnalyzerCanceledContext(t *testing.T) {
	a := newTestAnalyzer(t, &fakeSource{posts: samplePosts()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Run(ctx, models.AnalysisRequest{Subreddit: "pixel"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalizeRequest(t *testing.T) {
	tests := []struct {
		name string
		in   models.AnalysisRequest
		want models.AnalysisRequest
	}{
		{"defaults clamp up", models.AnalysisRequest{Subreddit: "pixel"}, models.AnalysisRequest{Subreddit: "pixel", PostLimit: 1}},
		{"clamp down", models.AnalysisRequest{Subreddit: "/r/pixel", PostLimit: 101, CommentsPerPost: 51}, models.AnalysisRequest{Subreddit: "pixel", PostLimit: 100, CommentsPerPost: 50}},
		{"keeps flags", models.AnalysisRequest{Subreddit: "pixel", PostLimit: 25, CommentsPerPost: 5, UseAI: true}, models.AnalysisRequest{Subreddit: "pixel", PostLimit: 25, CommentsPerPost: 5, UseAI: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeRequest(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "report:pixel:10:3:true", CacheKey(models.AnalysisRequest{Subreddit: "Pixel", PostLimit: 10, CommentsPerPost: 3, UseAI: true}))
}
