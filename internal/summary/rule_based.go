package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
)

// RuleBased writes an executive summary from the statistics alone.
type RuleBased struct{}

func (RuleBased) Summarize(_ context.Context, subreddit string, s models.InsightSummary) (string, error) {
	if s.ItemCount == 0 {
		return "No posts available for analysis.", nil
	}

	pct := s.LabelCounts.Percentages()
	neg, pos, neu := pct[models.LabelNegative], pct[models.LabelPositive], pct[models.LabelNeutral]

	var parts []string
	switch {
	case neg > 50:
		parts = append(parts, fmt.Sprintf(
			"Analysis of %d recent posts and comments from r/%s reveals predominantly negative sentiment (%.0f%%), indicating widespread user concerns.",
			s.ItemCount, subreddit, neg))
	case pos > 50:
		parts = append(parts, fmt.Sprintf(
			"Analysis of %d recent posts and comments from r/%s shows generally positive sentiment (%.0f%%), reflecting user satisfaction.",
			s.ItemCount, subreddit, pos))
	default:
		parts = append(parts, fmt.Sprintf(
			"Analysis of %d recent posts and comments from r/%s reveals mixed sentiment (Positive: %.0f%%, Neutral: %.0f%%, Negative: %.0f%%).",
			s.ItemCount, subreddit, pos, neu, neg))
	}

	if len(s.TopThemes) > 0 {
		var names []string
		for _, th := range s.TopThemes[:min(3, len(s.TopThemes))] {
			names = append(names, th.Label)
		}
		parts = append(parts, fmt.Sprintf("Key discussion areas include %s.", strings.Join(names, ", ")))
	}

	var worsening, improving []string
	for _, ts := range s.ThemeSentiment {
		switch ts.Mood {
		case models.MoodNegative:
			worsening = append(worsening, ts.Theme)
		case models.MoodPositive:
			improving = append(improving, ts.Theme)
		}
	}
	if len(worsening) > 0 {
		parts = append(parts, fmt.Sprintf("Discussion of %s is predominantly negative.", strings.Join(worsening, ", ")))
	}
	if len(improving) > 0 {
		parts = append(parts, fmt.Sprintf("Users speak well of %s.", strings.Join(improving, ", ")))
	}

	if issue, ok := firstWithLabel(s.HighImpact, models.LabelNegative); ok {
		parts = append(parts, fmt.Sprintf("Notable concerns include: %q", truncateRunes(firstLine(issue.Text), 60)))
	}
	if praise, ok := firstWithLabel(s.HighImpact, models.LabelPositive); ok {
		parts = append(parts, fmt.Sprintf("Users appreciate certain aspects, as shown in: %q", truncateRunes(firstLine(praise.Text), 50)))
	}

	parts = append(parts, Interpretation(s.LabelCounts))
	return strings.Join(parts, " "), nil
}

// Interpretation is a one-line reading of the sentiment split.
func Interpretation(c models.LabelCounts) string {
	pct := c.Percentages()
	neg, pos := pct[models.LabelNegative], pct[models.LabelPositive]
	switch {
	case neg > 60:
		return "Critical: community sentiment is heavily negative and needs immediate attention."
	case neg > 40:
		return "Warning: significant negative sentiment; the product team should investigate."
	case pos > 60:
		return "Positive: users are generally satisfied."
	case pos > 40:
		return "Healthy: mostly positive feedback with some areas for improvement."
	default:
		return "Mixed: varied user experiences; focus on reducing friction points."
	}
}

func firstWithLabel(items []models.HighImpactItem, label models.Label) (models.HighImpactItem, bool) {
	for _, item := range items {
		if item.Label == label {
			return item, true
		}
	}
	return models.HighImpactItem{}, false
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return line
}
