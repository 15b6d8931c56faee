package models

import "time"

// RedditPost is a submission normalized from either upstream source.
type RedditPost struct {
	PostID      string          `json:"id"`
	Subreddit   string          `json:"subreddit"`
	Author      string          `json:"author"`
	PostTitle   string          `json:"post_title"`
	PostContent string          `json:"post_content"`
	Score       int             `json:"score"`
	NumComments int             `json:"num_comments"`
	CreatedAt   time.Time       `json:"created_at"`
	Comments    []RedditComment `json:"comments,omitempty"`
}

type RedditComment struct {
	CommentID string    `json:"id"`
	ParentID  string    `json:"parent_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	Score     int       `json:"score"`
	Depth     int       `json:"depth"`
	CreatedAt time.Time `json:"created_at"`
}

// Reddit OAuth API listing payloads.

type RedditAPIResponse struct {
	Kind string        `json:"kind"`
	Data RedditAPIData `json:"data"`
}

type RedditAPIData struct {
	After    string           `json:"after"`
	Children []RedditAPIChild `json:"children"`
}

type RedditAPIChild struct {
	Kind string             `json:"kind"`
	Data RedditAPIChildData `json:"data"`
}

type RedditAPIChildData struct {
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Body        string  `json:"body"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ParentID    string  `json:"parent_id"`
	Stickied    bool    `json:"stickied"`
	Depth       int     `json:"depth"`
	// Replies is either an empty string or a nested listing.
	Replies RedditReplies `json:"replies"`
}

// PullPush archive payloads.

type PullPushResponse[T any] struct {
	Data []T `json:"data"`
}

type PullPushSubmission struct {
	ID          string  `json:"id"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
}

type PullPushComment struct {
	ID         string  `json:"id"`
	ParentID   string  `json:"parent_id"`
	LinkID     string  `json:"link_id"`
	Author     string  `json:"author"`
	Body       string  `json:"body"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
}

func UnixToTime(sec float64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(int64(sec), 0).UTC()
}

// FetchOptions bounds one fetch from an upstream source.
type FetchOptions struct {
	PostLimit       int
	CommentsPerPost int
	MaxCommentDepth int
}
