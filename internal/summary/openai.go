package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/clients"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
)

const (
	DefaultModel     = "llama-3.1-8b-instant"
	defaultMaxTokens = 400
	maxPromptItems   = 12
)

type OpenAISummarizer struct {
	client *openai.Client
	model  string
}

func NewOpenAISummarizer(c *clients.OpenAIClient, model string) *OpenAISummarizer {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAISummarizer{client: c.Client, model: model}
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, subreddit string, summary models.InsightSummary) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(subreddit, summary)},
		},
		Temperature: 0.7,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("[OpenAISummarizer] chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("[OpenAISummarizer] chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Healthy reports whether the endpoint answers a model listing.
func (s *OpenAISummarizer) Healthy(ctx context.Context) bool {
	_, err := s.client.ListModels(ctx)
	return err == nil
}

// BuildPrompt renders the single prompt sent to the LLM.
func BuildPrompt(subreddit string, s models.InsightSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a senior product analyst reviewing Reddit discussions from r/%s.\n\n", subreddit)

	b.WriteString("HIGH-IMPACT POSTS AND COMMENTS:\n")
	for i, item := range s.HighImpact[:min(len(s.HighImpact), maxPromptItems)] {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, strings.ToUpper(string(item.Label)), truncateRunes(strings.ReplaceAll(item.Text, "\n", " "), 200))
	}

	if len(s.ThemeSentiment) > 0 {
		b.WriteString("\nTHEMES:\n")
		for _, ts := range s.ThemeSentiment {
			fmt.Fprintf(&b, "- %s (%s, %d items)\n", ts.Theme, ts.Mood, ts.Counts.Total())
			for _, ex := range ts.Examples {
				fmt.Fprintf(&b, "  e.g. %q\n", ex)
			}
		}
	}

	pct := s.LabelCounts.Percentages()
	fmt.Fprintf(&b, "\nSENTIMENT BREAKDOWN:\n- Positive: %.1f%%\n- Neutral: %.1f%%\n- Negative: %.1f%%\n",
		pct[models.LabelPositive], pct[models.LabelNeutral], pct[models.LabelNegative])

	b.WriteString("\nWrite an executive summary (4-5 sentences) that names the specific issues users discuss, " +
		"explains why they feel that way, highlights the most critical pain points, notes what users appreciate " +
		"and ends with one actionable recommendation. Answer in plain text.")
	return b.String()
}
