package models

import "time"

type NarrativeSource string

const (
	NarrativeNone      NarrativeSource = "none"
	NarrativeLLM       NarrativeSource = "llm"
	NarrativeRuleBased NarrativeSource = "rule-based"
)

type AnalysisRequest struct {
	Subreddit       string `json:"subreddit"`
	PostLimit       int    `json:"post_limit"`
	CommentsPerPost int    `json:"comments_per_post"`
	UseAI           bool   `json:"use_ai"`
	Refresh         bool   `json:"refresh,omitempty"`
}

type Report struct {
	RunID           string          `json:"run_id"`
	Subreddit       string          `json:"subreddit"`
	GeneratedAt     time.Time       `json:"generated_at"`
	Request         AnalysisRequest `json:"request"`
	Items           []ScoredItem    `json:"items"`
	Summary         InsightSummary  `json:"summary"`
	Narrative       string          `json:"narrative,omitempty"`
	NarrativeSource NarrativeSource `json:"narrative_source"`
	DurationMS      int64           `json:"duration_ms"`
}

// ReportMeta is the listing view of a stored report.
type ReportMeta struct {
	RunID           string          `json:"run_id"`
	Subreddit       string          `json:"subreddit"`
	GeneratedAt     time.Time       `json:"generated_at"`
	ItemCount       int             `json:"item_count"`
	MeanPolarity    float64         `json:"mean_polarity"`
	NarrativeSource NarrativeSource `json:"narrative_source"`
}

func (r *Report) Meta() ReportMeta {
	return ReportMeta{
		RunID:           r.RunID,
		Subreddit:       r.Subreddit,
		GeneratedAt:     r.GeneratedAt,
		ItemCount:       r.Summary.ItemCount,
		MeanPolarity:    r.Summary.MeanPolarity,
		NarrativeSource: r.NarrativeSource,
	}
}
