package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
)

const PULLPUSH_API_URL = "https://api.pullpush.io"

type PullPushConfig struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond paces every call to the archive, comment lookups included.
	RequestsPerSecond float64
}

// PullPushClient reads submissions and comments from the PullPush archive,
// which serves subreddit data without Reddit API credentials.
type PullPushClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

func NewPullPushClient(cfg PullPushConfig) *PullPushClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = PULLPUSH_API_URL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DEFAULT_HTTP_TIMEOUT
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &PullPushClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (pc *PullPushClient) Name() string { return "pullpush" }

// FetchPosts returns the newest submissions of subreddit. Comments are loaded
// for the first MAX_COMMENT_POSTS posts that have any; a failed comment lookup
// leaves that post without comments.
func (pc *PullPushClient) FetchPosts(ctx context.Context, subreddit string, opts models.FetchOptions) ([]models.RedditPost, error) {
	params := url.Values{}
	params.Set("subreddit", subreddit)
	params.Set("size", strconv.Itoa(opts.PostLimit))
	params.Set("sort", "desc")
	params.Set("sort_type", "created_utc")

	var resp models.PullPushResponse[models.PullPushSubmission]
	if err := pc.get(ctx, "/reddit/search/submission/", params, &resp); err != nil {
		return nil, err
	}

	posts := make([]models.RedditPost, 0, len(resp.Data))
	for _, s := range resp.Data {
		posts = append(posts, models.RedditPost{
			PostID:      s.ID,
			Subreddit:   s.Subreddit,
			Author:      s.Author,
			PostTitle:   s.Title,
			PostContent: s.Selftext,
			Score:       s.Score,
			NumComments: s.NumComments,
			CreatedAt:   models.UnixToTime(s.CreatedUTC),
		})
	}

	if opts.CommentsPerPost > 0 {
		for i := range posts[:min(len(posts), MAX_COMMENT_POSTS)] {
			if posts[i].NumComments == 0 {
				continue
			}
			comments, err := pc.fetchComments(ctx, posts[i].PostID, opts.CommentsPerPost)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				slog.Warn("[PullPushClient] Failed to fetch comments",
					slog.String("post_id", posts[i].PostID),
					slog.String("error", err.Error()))
				continue
			}
			posts[i].Comments = comments
		}
	}

	slog.Debug("[PullPushClient] Fetched posts",
		slog.String("subreddit", subreddit),
		slog.Int("posts", len(posts)))
	return posts, nil
}

func (pc *PullPushClient) fetchComments(ctx context.Context, postID string, limit int) ([]models.RedditComment, error) {
	params := url.Values{}
	params.Set("link_id", "t3_"+postID)
	params.Set("size", strconv.Itoa(limit))
	params.Set("sort", "desc")
	params.Set("sort_type", "score")

	var resp models.PullPushResponse[models.PullPushComment]
	if err := pc.get(ctx, "/reddit/search/comment/", params, &resp); err != nil {
		return nil, err
	}

	comments := make([]models.RedditComment, 0, len(resp.Data))
	for _, c := range resp.Data {
		if isRemovedBody(c.Body) {
			continue
		}
		// The archive only tells top-level replies apart from nested ones.
		depth := 2
		if c.ParentID == "" || strings.HasPrefix(c.ParentID, "t3_") {
			depth = 1
		}
		comments = append(comments, models.RedditComment{
			CommentID: c.ID,
			ParentID:  c.ParentID,
			Author:    c.Author,
			Body:      c.Body,
			Score:     c.Score,
			Depth:     depth,
			CreatedAt: models.UnixToTime(c.CreatedUTC),
		})
	}
	return comments, nil
}

func (pc *PullPushClient) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := pc.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pc.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("[PullPushClient] Failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", USER_AGENT)
	req.Header.Set("Accept", "application/json")

	resp, err := pc.client.Do(req)
	if err != nil {
		return fmt.Errorf("[PullPushClient] Request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("[PullPushClient] %w: r/%s", ErrSubredditNotFound, params.Get("subreddit"))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("[PullPushClient] API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("[PullPushClient] Failed to decode response: %w", err)
	}
	return nil
}
