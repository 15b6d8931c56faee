package summary

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/clients"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
)

type stubSummarizer struct {
	text  string
	err   error
	calls int
}

func (s *stubSummarizer) Summarize(context.Context, string, models.InsightSummary) (string, error) {
	s.calls++
	return s.text, s.err
}

func sampleSummary() models.InsightSummary {
	hi := func(id, text string, label models.Label, p float64) models.HighImpactItem {
		return models.HighImpactItem{ScoredItem: models.ScoredItem{
			TextItem: models.TextItem{ID: id, Text: text},
			Polarity: p,
			Label:    label,
		}}
	}
	return models.InsightSummary{
		ItemCount:   4,
		LabelCounts: models.LabelCounts{Negative: 3, Neutral: 0, Positive: 1},
		TopThemes: []models.Theme{
			{Label: "Battery & Power", Weight: 3},
			{Label: "Camera & Photography", Weight: 1},
		},
		ThemeSentiment: []models.ThemeSentiment{
			{Theme: "Battery & Power", Counts: models.LabelCounts{Negative: 3}, Mood: models.MoodNegative, Examples: []string{"battery dies by noon"}},
			{Theme: "Camera & Photography", Counts: models.LabelCounts{Positive: 1}, Mood: models.MoodPositive},
		},
		HighImpact: []models.HighImpactItem{
			hi("p2", "this is terrible and broke everything", models.LabelNegative, -0.8),
			hi("p1", "camera is great\nlong body", models.LabelPositive, 0.7),
		},
	}
}

var longNarrative = strings.Repeat("Battery complaints dominate the subreddit. ", 3)

func TestNarratorUsesLLM(t *testing.T) {
	llm := &stubSummarizer{text: longNarrative}
	fallback := &stubSummarizer{text: "rule"}

	text, source := NewNarrator(llm, fallback, nil).Narrate(context.Background(), "pixel", sampleSummary(), true)
	assert.Equal(t, strings.TrimSpace(longNarrative), text)
	assert.Equal(t, models.NarrativeLLM, source)
	assert.Equal(t, 0, fallback.calls)
}

func TestNarratorFallsBack(t *testing.T) {
	unhealthy := &atomic.Bool{}
	tests := []struct {
		name    string
		llm     *stubSummarizer
		healthy *atomic.Bool
		useAI   bool
		llmHits int
	}{
		{"ai not requested", &stubSummarizer{text: longNarrative}, nil, false, 0},
		{"llm error", &stubSummarizer{err: errors.New("rate limited")}, nil, true, 1},
		{"llm too short", &stubSummarizer{text: "Too short."}, nil, true, 1},
		{"llm unhealthy", &stubSummarizer{text: longNarrative}, unhealthy, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, source := NewNarrator(tt.llm, &stubSummarizer{text: "rule"}, tt.healthy).Narrate(context.Background(), "pixel", sampleSummary(), tt.useAI)
			assert.Equal(t, "rule", text)
			assert.Equal(t, models.NarrativeRuleBased, source)
			assert.Equal(t, tt.llmHits, tt.llm.calls)
		})
	}
}

func TestNarratorWithoutFallback(t *testing.T) {
	text, source := NewNarrator(nil, nil, nil).Narrate(context.Background(), "pixel", sampleSummary(), true)
	assert.Empty(t, text)
	assert.Equal(t, models.NarrativeNone, source)
}

func TestRuleBased(t *testing.T) {
	text, err := RuleBased{}.Summarize(context.Background(), "GooglePixel", sampleSummary())
	require.NoError(t, err)

	assert.Contains(t, text, "Analysis of 4 recent posts and comments from r/GooglePixel reveals predominantly negative sentiment (75%)")
	assert.Contains(t, text, "Key discussion areas include Battery & Power, Camera & Photography.")
	assert.Contains(t, text, "Discussion of Battery & Power is predominantly negative.")
	assert.Contains(t, text, "Users speak well of Camera & Photography.")
	assert.Contains(t, text, `Notable concerns include: "this is terrible and broke everything"`)
	assert.Contains(t, text, `as shown in: "camera is great"`)
	assert.True(t, strings.HasSuffix(text, "Critical: community sentiment is heavily negative and needs immediate attention."))

	again, err := RuleBased{}.Summarize(context.Background(), "GooglePixel", sampleSummary())
	require.NoError(t, err)
	assert.Equal(t, text, again)
}

func TestRuleBasedEmpty(t *testing.T) {
	text, err := RuleBased{}.Summarize(context.Background(), "pixel", models.InsightSummary{})
	require.NoError(t, err)
	assert.Equal(t, "No posts available for analysis.", text)
}

func TestInterpretation(t *testing.T) {
	tests := []struct {
		counts models.LabelCounts
		prefix string
	}{
		{models.LabelCounts{Negative: 7, Neutral: 3}, "Critical"},
		{models.LabelCounts{Negative: 5, Positive: 5}, "Warning"},
		{models.LabelCounts{Positive: 7, Neutral: 3}, "Positive"},
		{models.LabelCounts{Positive: 5, Neutral: 5}, "Healthy"},
		{models.LabelCounts{Neutral: 10}, "Mixed"},
	}
	for _, tt := range tests {
		assert.True(t, strings.HasPrefix(Interpretation(tt.counts), tt.prefix), tt.prefix)
	}
}

func newLLMServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		if assert.Len(t, req.Messages, 1) {
			assert.Contains(t, req.Messages[0].Content, "r/GooglePixel")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1735689600,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	})
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[{"id":"test-model","object":"model","created":1,"owned_by":"test"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAISummarizer(t *testing.T) {
	srv := newLLMServer(t, "  "+longNarrative+"\n")
	s := NewOpenAISummarizer(clients.NewOpenAIClient(clients.OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"}), "test-model")

	text, err := s.Summarize(context.Background(), "GooglePixel", sampleSummary())
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(longNarrative), text)
	assert.True(t, s.Healthy(context.Background()))
}

func TestOpenAISummarizerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"down","type":"server_error"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewOpenAISummarizer(clients.NewOpenAIClient(clients.OpenAIConfig{APIKey: "k", BaseURL: srv.URL + "/v1"}), "")
	_, err := s.Summarize(context.Background(), "pixel", sampleSummary())
	assert.Error(t, err)
	assert.False(t, s.Healthy(context.Background()))
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("GooglePixel", sampleSummary())

	assert.Contains(t, prompt, "r/GooglePixel")
	assert.Contains(t, prompt, "1. [NEGATIVE] this is terrible and broke everything")
	assert.Contains(t, prompt, "2. [POSITIVE] camera is great long body")
	assert.Contains(t, prompt, "- Battery & Power (negative, 3 items)\n  e.g. \"battery dies by noon\"\n")
	assert.Contains(t, prompt, "- Negative: 75.0%")
}
