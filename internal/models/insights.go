package models

import "math"

// Theme is a recurring topic surfaced from one corpus.
type Theme struct {
	Label    string   `json:"label"`
	Weight   float64  `json:"weight"`
	Mentions int      `json:"mentions"`
	Keywords []string `json:"keywords"`
	ItemIDs  []string `json:"item_ids"`
}

type LabelCounts struct {
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
	Positive int `json:"positive"`
}

func (c LabelCounts) Total() int {
	return c.Negative + c.Neutral + c.Positive
}

func (c *LabelCounts) Add(label Label) {
	switch label {
	case LabelNegative:
		c.Negative++
	case LabelPositive:
		c.Positive++
	default:
		c.Neutral++
	}
}

// Percentages returns the share of each label rounded to one decimal place.
// An empty count yields all zeros.
func (c LabelCounts) Percentages() map[Label]float64 {
	out := map[Label]float64{LabelNegative: 0, LabelNeutral: 0, LabelPositive: 0}
	total := c.Total()
	if total == 0 {
		return out
	}
	pct := func(n int) float64 {
		return math.Round(float64(n)/float64(total)*1000) / 10
	}
	out[LabelNegative] = pct(c.Negative)
	out[LabelNeutral] = pct(c.Neutral)
	out[LabelPositive] = pct(c.Positive)
	return out
}

type HighImpactItem struct {
	ScoredItem
	RankScore float64 `json:"rank_score"`
}

type Mood string

const (
	MoodPositive Mood = "positive"
	MoodNegative Mood = "negative"
	MoodMixed    Mood = "mixed"
	MoodNeutral  Mood = "neutral"
)

// ThemeSentiment carries up to two example excerpts taken from the theme's
// scored items, in theme order.
type ThemeSentiment struct {
	Theme    string      `json:"theme"`
	Counts   LabelCounts `json:"counts"`
	Mood     Mood        `json:"mood"`
	Examples []string    `json:"examples,omitempty"`
}

// InsightSummary is the aggregate view of one analysis run. Field names are
// part of the JSON contract consumed by the report and LLM collaborators.
type InsightSummary struct {
	ItemCount        int              `json:"item_count"`
	MeanPolarity     float64          `json:"mean_polarity"`
	LabelCounts      LabelCounts      `json:"label_counts"`
	TopThemes        []Theme          `json:"top_themes"`
	ThemeSentiment   []ThemeSentiment `json:"theme_sentiment"`
	HighImpact       []HighImpactItem `json:"high_impact"`
	InsufficientData bool             `json:"insufficient_data"`
}
