package clients

import (
	"errors"
	"time"
)

const (
	USER_AGENT           = "reddit-insight-analyzer/1.0 (+https://github.com/Tripathiatharvv/reddit-insight-analyzer)"
	DEFAULT_HTTP_TIMEOUT = 15 * time.Second
	// Only the first posts of a fetch get their comments loaded.
	MAX_COMMENT_POSTS = 10
)

var ErrSubredditNotFound = errors.New("subreddit not found")

func isRemovedBody(body string) bool {
	switch body {
	case "", "[deleted]", "[removed]":
		return true
	}
	return false
}
