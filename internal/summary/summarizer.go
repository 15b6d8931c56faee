// Package summary turns an InsightSummary into a short narrative, either
// through an OpenAI-compatible LLM or with a deterministic rule-based writer.
package summary

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
)

// MinNarrativeLength is the shortest LLM answer accepted as a narrative.
const MinNarrativeLength = 50

type Summarizer interface {
	Summarize(ctx context.Context, subreddit string, summary models.InsightSummary) (string, error)
}

// Narrator prefers the LLM when asked to and when it is healthy, and falls
// back to the rule-based writer otherwise.
type Narrator struct {
	LLM      Summarizer
	Fallback Summarizer
	// Healthy gates LLM use; nil means always healthy.
	Healthy   *atomic.Bool
	MinLength int
}

func NewNarrator(llm, fallback Summarizer, healthy *atomic.Bool) *Narrator {
	return &Narrator{LLM: llm, Fallback: fallback, Healthy: healthy, MinLength: MinNarrativeLength}
}

func (n *Narrator) Narrate(ctx context.Context, subreddit string, summary models.InsightSummary, useAI bool) (string, models.NarrativeSource) {
	if useAI && n.llmAvailable() {
		text, err := n.LLM.Summarize(ctx, subreddit, summary)
		text = strings.TrimSpace(text)
		switch {
		case err != nil:
			slog.Warn("[Narrator] LLM summary failed, using rule-based summary",
				slog.String("subreddit", subreddit),
				slog.String("error", err.Error()))
		case len(text) <= n.MinLength:
			slog.Warn("[Narrator] LLM summary too short, using rule-based summary",
				slog.String("subreddit", subreddit),
				slog.Int("length", len(text)))
		default:
			return text, models.NarrativeLLM
		}
	}

	if n.Fallback == nil {
		return "", models.NarrativeNone
	}
	text, err := n.Fallback.Summarize(ctx, subreddit, summary)
	if err != nil {
		slog.Error("[Narrator] Rule-based summary failed", slog.String("error", err.Error()))
		return "", models.NarrativeNone
	}
	return text, models.NarrativeRuleBased
}

func (n *Narrator) llmAvailable() bool {
	if n.LLM == nil {
		return false
	}
	return n.Healthy == nil || n.Healthy.Load()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}
