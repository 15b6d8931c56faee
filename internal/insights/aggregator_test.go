package insights

import (
	"context"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/sentiment"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/themes"
)

func scored(id string, polarity float64, label models.Label, engagement int) models.ScoredItem {
	return models.ScoredItem{
		TextItem: models.TextItem{ID: id, Kind: models.KindPost, Engagement: engagement},
		Polarity: polarity,
		Label:    label,
	}
}

func newAggregator(t *testing.T) *Aggregator {
	t.Helper()
	agg, err := NewAggregator(DefaultConfig())
	require.NoError(t, err)
	return agg
}

func TestAggregateExampleScenario(t *testing.T) {
	scorer, err := sentiment.NewDefaultScorer(sentiment.DefaultThresholds())
	require.NoError(t, err)

	raw := []models.TextItem{
		{ID: "p1", Text: "great update, love it", Engagement: 50},
		{ID: "p2", Text: "this is terrible and broke everything", Engagement: 200},
		{ID: "p3", Text: "meh, fine I guess", Engagement: 5},
	}
	items, err := scorer.ScoreItems(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, models.LabelPositive, items[0].Label)
	assert.Equal(t, models.LabelNegative, items[1].Label)
	assert.Equal(t, models.LabelNeutral, items[2].Label)

	extracted, err := themes.NewExtractor().Extract(themes.FromItems(items), 5)
	require.NoError(t, err)

	summary, err := newAggregator(t).Aggregate(items, extracted, 3)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.ItemCount)
	assert.False(t, summary.InsufficientData)
	assert.Greater(t, summary.MeanPolarity, -1.0)
	assert.Less(t, summary.MeanPolarity, 1.0)
	assert.Equal(t, models.LabelCounts{Negative: 1, Neutral: 1, Positive: 1}, summary.LabelCounts)

	require.NotEmpty(t, summary.HighImpact)
	assert.Equal(t, "p2", summary.HighImpact[0].ID)
	for _, hi := range summary.HighImpact {
		assert.NotEqual(t, "p3", hi.ID)
	}
}

func TestAggregateEmpty(t *testing.T) {
	summary, err := newAggregator(t).Aggregate(nil, nil, 5)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.ItemCount)
	assert.Equal(t, 0.0, summary.MeanPolarity)
	assert.Equal(t, models.LabelCounts{}, summary.LabelCounts)
	assert.True(t, summary.InsufficientData)
	assert.Empty(t, summary.HighImpact)
	assert.Empty(t, summary.TopThemes)
	assert.NotNil(t, summary.HighImpact)
}

func TestAggregateMinItems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinItems = 3
	agg, err := NewAggregator(cfg)
	require.NoError(t, err)

	summary, err := agg.Aggregate([]models.ScoredItem{scored("a", 0.5, models.LabelPositive, 1)}, nil, 1)
	require.NoError(t, err)
	assert.True(t, summary.InsufficientData)
	assert.Equal(t, 0.5, summary.MeanPolarity)
}

func TestAggregateLabelCountsSumToItemCount(t *testing.T) {
	var items []models.ScoredItem
	labelsCycle := []models.Label{models.LabelNegative, models.LabelNeutral, models.LabelPositive, models.LabelPositive}
	for i := 0; i < 37; i++ {
		items = append(items, scored(strconv.Itoa(i), 0, labelsCycle[i%len(labelsCycle)], i))
	}

	summary, err := newAggregator(t).Aggregate(items, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, len(items), summary.LabelCounts.Total())
}

func TestAggregateHighImpactRanking(t *testing.T) {
	items := []models.ScoredItem{
		scored("weak", 0.1, models.LabelNeutral, 10_000),
		scored("b", -0.5, models.LabelNegative, 10),
		scored("a", 0.5, models.LabelPositive, 10),
		scored("loud", 0.9, models.LabelPositive, 100),
		scored("negative-engagement", -0.9, models.LabelNegative, -40),
	}

	summary, err := newAggregator(t).Aggregate(items, nil, 10)
	require.NoError(t, err)

	var ids []string
	for _, hi := range summary.HighImpact {
		ids = append(ids, hi.ID)
	}
	assert.Equal(t, []string{"loud", "a", "b", "negative-engagement"}, ids)
	assert.InDelta(t, 0.9*math.Log(101), summary.HighImpact[0].RankScore, 1e-12)
	assert.Equal(t, 0.0, summary.HighImpact[3].RankScore)
}

func TestAggregateHighImpactTieBreaks(t *testing.T) {
	items := []models.ScoredItem{
		scored("z-low", -0.8, models.LabelNegative, -5),
		scored("y", 0.8, models.LabelPositive, 0),
		scored("x", 0.8, models.LabelPositive, 0),
	}
	summary, err := newAggregator(t).Aggregate(items, nil, 3)
	require.NoError(t, err)

	require.Len(t, summary.HighImpact, 3)
	assert.Equal(t, "x", summary.HighImpact[0].ID)
	assert.Equal(t, "y", summary.HighImpact[1].ID)
	assert.Equal(t, "z-low", summary.HighImpact[2].ID)
}

func TestAggregateHighImpactLimit(t *testing.T) {
	items := []models.ScoredItem{
		scored("a", 0.9, models.LabelPositive, 10),
		scored("b", 0.8, models.LabelPositive, 10),
		scored("c", 0.7, models.LabelPositive, 10),
	}
	summary, err := newAggregator(t).Aggregate(items, nil, 2)
	require.NoError(t, err)
	assert.Len(t, summary.HighImpact, 2)
}

func TestAggregateRejectsInvalidLimit(t *testing.T) {
	for _, limit := range []int{0, -1} {
		_, err := newAggregator(t).Aggregate(nil, nil, limit)
		assert.ErrorIs(t, err, models.ErrInvalidArgument)
	}
}

func TestAggregateThemes(t *testing.T) {
	items := []models.ScoredItem{
		scored("1", -0.7, models.LabelNegative, 3),
		scored("2", -0.4, models.LabelNegative, 3),
		scored("3", 0.6, models.LabelPositive, 3),
		scored("4", 0.0, models.LabelNeutral, 3),
	}
	items[0].Text = "Battery drains overnight\nfull details below"
	items[1].Text = "Charging is slow"
	items[2].Text = "Love the battery life"
	input := []models.Theme{
		{Label: "Battery & Power", Weight: 3, ItemIDs: []string{"1", "2", "3"}},
		{Label: "Camera & Photography", Weight: 2, ItemIDs: []string{"3", "4"}},
		{Label: "ghost", Weight: 1, ItemIDs: []string{"missing"}},
		{Label: "d", Weight: 1}, {Label: "e", Weight: 1}, {Label: "f", Weight: 1}, {Label: "g", Weight: 1},
	}

	summary, err := newAggregator(t).Aggregate(items, input, 1)
	require.NoError(t, err)

	assert.Equal(t, input[:DefaultThemeDisplayLimit], summary.TopThemes)
	require.Len(t, summary.ThemeSentiment, DefaultThemeDisplayLimit)

	battery := summary.ThemeSentiment[0]
	assert.Equal(t, models.LabelCounts{Negative: 2, Positive: 1}, battery.Counts)
	assert.Equal(t, models.MoodNegative, battery.Mood)
	assert.Equal(t, models.MoodMixed, summary.ThemeSentiment[1].Mood)
	assert.Equal(t, models.MoodNeutral, summary.ThemeSentiment[2].Mood)
	assert.Equal(t, 0, summary.ThemeSentiment[2].Counts.Total())

	assert.Equal(t, []string{"Battery drains overnight", "Charging is slow"}, battery.Examples)
	assert.Equal(t, []string{"Love the battery life"}, summary.ThemeSentiment[1].Examples)
	assert.Empty(t, summary.ThemeSentiment[2].Examples)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "first line", excerpt("  first line\nsecond"))
	assert.Equal(t, "", excerpt("   "))

	long := strings.Repeat("é", exampleRunes+10)
	got := excerpt(long)
	assert.Equal(t, strings.Repeat("é", exampleRunes)+"...", got)
}

func TestAggregateIdempotent(t *testing.T) {
	items := []models.ScoredItem{
		scored("a", 0.9, models.LabelPositive, 10),
		scored("b", -0.3, models.LabelNegative, 4),
		scored("c", 0.1, models.LabelNeutral, 0),
	}
	input := []models.Theme{{Label: "x", Weight: 2, ItemIDs: []string{"a", "b"}}}
	agg := newAggregator(t)

	first, err := agg.Aggregate(items, input, 2)
	require.NoError(t, err)
	second, err := agg.Aggregate(items, input, 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "a", items[0].ID)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative threshold", Config{ImpactPolarityThreshold: -0.1, ThemeDisplayLimit: 6, MinItems: 1}},
		{"threshold of one", Config{ImpactPolarityThreshold: 1, ThemeDisplayLimit: 6, MinItems: 1}},
		{"no themes", Config{ImpactPolarityThreshold: 0.2, ThemeDisplayLimit: 0, MinItems: 1}},
		{"no items", Config{ImpactPolarityThreshold: 0.2, ThemeDisplayLimit: 6, MinItems: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAggregator(tt.cfg)
			assert.ErrorIs(t, err, models.ErrInvalidArgument)
		})
	}
}
