// Package insights folds scored items and extracted themes into the
// subreddit-level InsightSummary.
package insights

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
)

const (
	DefaultImpactPolarityThreshold = 0.20
	DefaultThemeDisplayLimit       = 6
	DefaultMinItems                = 1

	themeExampleLimit = 2
	exampleRunes      = 120
)

type Config struct {
	// Items need |polarity| strictly above this value to be ranked as high impact.
	ImpactPolarityThreshold float64
	ThemeDisplayLimit       int
	// Summaries over fewer items are flagged as insufficient data.
	MinItems int
}

func DefaultConfig() Config {
	return Config{
		ImpactPolarityThreshold: DefaultImpactPolarityThreshold,
		ThemeDisplayLimit:       DefaultThemeDisplayLimit,
		MinItems:                DefaultMinItems,
	}
}

func (c Config) Validate() error {
	if c.ImpactPolarityThreshold < 0 || c.ImpactPolarityThreshold >= 1 || math.IsNaN(c.ImpactPolarityThreshold) {
		return fmt.Errorf("%w: impact polarity threshold %v outside [0, 1)", models.ErrInvalidArgument, c.ImpactPolarityThreshold)
	}
	if c.ThemeDisplayLimit < 1 {
		return fmt.Errorf("%w: theme display limit must be >= 1, got %d", models.ErrInvalidArgument, c.ThemeDisplayLimit)
	}
	if c.MinItems < 1 {
		return fmt.Errorf("%w: min items must be >= 1, got %d", models.ErrInvalidArgument, c.MinItems)
	}
	return nil
}

type Aggregator struct {
	cfg Config
}

func NewAggregator(cfg Config) (*Aggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Aggregator{cfg: cfg}, nil
}

// RankScore is |polarity| * ln(1 + max(engagement, 0)).
func RankScore(polarity float64, engagement int) float64 {
	return math.Abs(polarity) * math.Log1p(float64(max(engagement, 0)))
}

// Aggregate never mutates its inputs and returns the same summary for the
// same arguments.
func (a *Aggregator) Aggregate(items []models.ScoredItem, themes []models.Theme, highImpactLimit int) (models.InsightSummary, error) {
	if highImpactLimit < 1 {
		return models.InsightSummary{}, fmt.Errorf("%w: high impact limit must be >= 1, got %d", models.ErrInvalidArgument, highImpactLimit)
	}

	summary := models.InsightSummary{
		ItemCount:        len(items),
		InsufficientData: len(items) < a.cfg.MinItems,
		TopThemes:        []models.Theme{},
		ThemeSentiment:   []models.ThemeSentiment{},
		HighImpact:       []models.HighImpactItem{},
	}

	var sum float64
	for _, item := range items {
		sum += item.Polarity
		summary.LabelCounts.Add(item.Label)
	}
	if len(items) > 0 {
		summary.MeanPolarity = sum / float64(len(items))
	}

	displayed := themes
	if len(displayed) > a.cfg.ThemeDisplayLimit {
		displayed = displayed[:a.cfg.ThemeDisplayLimit]
	}
	summary.TopThemes = append(summary.TopThemes, displayed...)
	summary.ThemeSentiment = themeSentiment(items, displayed)
	summary.HighImpact = a.highImpact(items, highImpactLimit)

	return summary, nil
}

func (a *Aggregator) highImpact(items []models.ScoredItem, limit int) []models.HighImpactItem {
	candidates := make([]models.HighImpactItem, 0, len(items))
	for _, item := range items {
		if math.Abs(item.Polarity) <= a.cfg.ImpactPolarityThreshold {
			continue
		}
		candidates = append(candidates, models.HighImpactItem{
			ScoredItem: item,
			RankScore:  RankScore(item.Polarity, item.Engagement),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if ci.RankScore != cj.RankScore {
			return ci.RankScore > cj.RankScore
		}
		if ci.Engagement != cj.Engagement {
			return ci.Engagement > cj.Engagement
		}
		return ci.ID < cj.ID
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// themeSentiment counts the labels of the items behind each theme. Items
// referenced by a theme but absent from items are ignored.
func themeSentiment(items []models.ScoredItem, themes []models.Theme) []models.ThemeSentiment {
	byID := make(map[string]models.ScoredItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	out := make([]models.ThemeSentiment, 0, len(themes))
	for _, theme := range themes {
		var counts models.LabelCounts
		var examples []string
		seen := make(map[string]struct{}, len(theme.ItemIDs))
		for _, id := range theme.ItemIDs {
			item, ok := byID[id]
			if !ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			counts.Add(item.Label)
			if len(examples) < themeExampleLimit {
				if ex := excerpt(item.Text); ex != "" {
					examples = append(examples, ex)
				}
			}
		}
		out = append(out, models.ThemeSentiment{
			Theme:    theme.Label,
			Counts:   counts,
			Mood:     mood(counts),
			Examples: examples,
		})
	}
	return out
}

// excerpt keeps the first line of text, cut to exampleRunes runes.
func excerpt(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) <= exampleRunes {
		return line
	}
	r := []rune(line)
	return strings.TrimSpace(string(r[:exampleRunes])) + "..."
}

func mood(c models.LabelCounts) models.Mood {
	total := c.Total()
	switch {
	case total == 0:
		return models.MoodNeutral
	case float64(c.Negative)/float64(total) > 0.5:
		return models.MoodNegative
	case float64(c.Positive)/float64(total) > 0.5:
		return models.MoodPositive
	case float64(c.Neutral)/float64(total) > 0.5:
		return models.MoodNeutral
	default:
		return models.MoodMixed
	}
}
