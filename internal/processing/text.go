package processing

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/sentiment"
)

const (
	MaxBodyLength    = 1000
	MaxCommentLength = 2000
)

var (
	htmlEntityPattern = regexp.MustCompile(`(?i)&[a-z]+;|&#\d+;`)
	emojiPattern      = regexp.MustCompile("[\U0001F600-\U0001F64F\U0001F300-\U0001F5FF\U0001F680-\U0001F6FF\U0001F1E0-\U0001F1FF☀-⛿✀-➿\U0001F900-\U0001F9FF️]+")
	whitespacePattern = regexp.MustCompile(`\s+`)

	redditNoise = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bedit\s*\d*\s*:`),
		regexp.MustCompile(`(?i)\btl;?dr:?`),
		regexp.MustCompile(`(?i)thanks for (reading|coming to my ted talk)`),
		regexp.MustCompile(`(?i)obligatory .* disclaimer`),
		regexp.MustCompile(`(?im)^(source|sauce):?\s*`),
		regexp.MustCompile(`(?i)\[removed\]|\[deleted\]`),
	}
)

// CleanText turns Reddit markdown into plain text and strips links, emoji,
// leftover entities and boilerplate such as "EDIT:" or "[removed]". The
// result is truncated to maxLen runes when maxLen > 0.
func CleanText(text string, maxLen int) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	// Noise is matched line by line before markdown rendering joins lines.
	cleaned := text
	for _, pattern := range redditNoise {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}

	cleaned = sentiment.ConvertMarkdownToText(cleaned)
	cleaned = htmlEntityPattern.ReplaceAllString(cleaned, " ")
	cleaned = emojiPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(whitespacePattern.ReplaceAllString(cleaned, " "))

	return truncate(cleaned, maxLen)
}

func truncate(text string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxLen])) + "..."
}

func isRemoved(body string) bool {
	switch strings.ToLower(strings.TrimSpace(body)) {
	case "[removed]", "[deleted]":
		return true
	}
	return false
}

type FlattenOptions struct {
	// Comments nested deeper than this are skipped. Zero keeps every level.
	MaxCommentDepth int
}

// Flatten turns posts and their comments into analysis items in a stable
// order: each post followed by its comments as fetched. Posts become depth-0
// items with the title and body joined; empty, removed and deleted texts are
// dropped.
func Flatten(posts []models.RedditPost, opts FlattenOptions) []models.TextItem {
	items := make([]models.TextItem, 0, len(posts))
	for _, post := range posts {
		title := CleanText(post.PostTitle, 0)
		body := ""
		if !isRemoved(post.PostContent) {
			body = CleanText(post.PostContent, MaxBodyLength)
		}

		if text := strings.TrimSpace(title + "\n" + body); text != "" {
			items = append(items, models.TextItem{
				ID:         post.PostID,
				Kind:       models.KindPost,
				Text:       text,
				Author:     post.Author,
				Engagement: post.Score,
				Replies:    post.NumComments,
				CreatedAt:  post.CreatedAt,
			})
		}

		for _, c := range post.Comments {
			depth := max(c.Depth, 1)
			if opts.MaxCommentDepth > 0 && depth > opts.MaxCommentDepth {
				continue
			}
			if isRemoved(c.Body) || c.Author == "[deleted]" && strings.TrimSpace(c.Body) == "" {
				continue
			}
			text := CleanText(c.Body, MaxCommentLength)
			if text == "" {
				continue
			}
			parent := c.ParentID
			if parent == "" {
				parent = post.PostID
			}
			items = append(items, models.TextItem{
				ID:         c.CommentID,
				Kind:       models.KindComment,
				Text:       text,
				Author:     c.Author,
				Engagement: c.Score,
				CreatedAt:  c.CreatedAt,
				Depth:      depth,
				ParentID:   parent,
			})
		}
	}
	return items
}
