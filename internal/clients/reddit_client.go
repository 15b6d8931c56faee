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
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
)

const (
	REDDIT_AUTH_URL = "https://www.reddit.com/api/v1/access_token"
	REDDIT_API_URL  = "https://oauth.reddit.com"
)

type RedditConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	APIURL       string
	Timeout      time.Duration
	// RequestsPerSecond stays under Reddit's per-client quota.
	RequestsPerSecond float64
}

// RedditClient reads listings through the Reddit OAuth API using the
// application-only client credentials grant.
type RedditClient struct {
	config  *clientcredentials.Config
	apiURL  string
	timeout time.Duration
	limiter *rate.Limiter

	mu     sync.Mutex
	client *http.Client
}

func NewRedditClient(cfg RedditConfig) *RedditClient {
	if cfg.TokenURL == "" {
		cfg.TokenURL = REDDIT_AUTH_URL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = REDDIT_API_URL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DEFAULT_HTTP_TIMEOUT
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	rc := &RedditClient{
		config: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		apiURL:  strings.TrimRight(cfg.APIURL, "/"),
		timeout: cfg.Timeout,
		limiter: rate.NewLimiter(limit, 1),
	}
	rc.refreshClient()
	return rc
}

func (rc *RedditClient) Name() string { return "reddit" }

func (rc *RedditClient) refreshClient() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: rc.timeout})
	rc.client = rc.config.Client(ctx)
	rc.client.Timeout = rc.timeout
}

func (rc *RedditClient) httpClient() *http.Client {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.client
}

// FetchPosts reads the newest posts of subreddit, skipping stickied ones, and
// walks the comment tree of the first MAX_COMMENT_POSTS posts down to
// opts.MaxCommentDepth.
func (rc *RedditClient) FetchPosts(ctx context.Context, subreddit string, opts models.FetchOptions) ([]models.RedditPost, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(opts.PostLimit))
	params.Set("raw_json", "1")

	var listing models.RedditAPIResponse
	if err := rc.get(ctx, fmt.Sprintf("/r/%s/new", url.PathEscape(subreddit)), params, &listing); err != nil {
		return nil, err
	}

	var posts []models.RedditPost
	for _, child := range listing.Data.Children {
		if child.Kind != "t3" || child.Data.Stickied {
			continue
		}
		d := child.Data
		posts = append(posts, models.RedditPost{
			PostID:      d.ID,
			Subreddit:   d.Subreddit,
			Author:      d.Author,
			PostTitle:   d.Title,
			PostContent: d.Selftext,
			Score:       d.Score,
			NumComments: d.NumComments,
			CreatedAt:   models.UnixToTime(d.CreatedUTC),
		})
	}

	if opts.CommentsPerPost > 0 {
		for i := range posts[:min(len(posts), MAX_COMMENT_POSTS)] {
			if posts[i].NumComments == 0 {
				continue
			}
			comments, err := rc.fetchComments(ctx, subreddit, posts[i].PostID, opts)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				slog.Warn("[RedditClient] Failed to fetch comments",
					slog.String("post_id", posts[i].PostID),
					slog.String("error", err.Error()))
				continue
			}
			posts[i].Comments = comments
		}
	}

	return posts, nil
}

func (rc *RedditClient) fetchComments(ctx context.Context, subreddit, postID string, opts models.FetchOptions) ([]models.RedditComment, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(opts.CommentsPerPost))
	params.Set("sort", "top")
	params.Set("raw_json", "1")
	if opts.MaxCommentDepth > 0 {
		params.Set("depth", strconv.Itoa(opts.MaxCommentDepth))
	}

	// The comments endpoint answers with two listings: the post, then its comments.
	var listings []models.RedditAPIResponse
	path := fmt.Sprintf("/r/%s/comments/%s", url.PathEscape(subreddit), url.PathEscape(postID))
	if err := rc.get(ctx, path, params, &listings); err != nil {
		return nil, err
	}
	if len(listings) < 2 {
		return nil, nil
	}

	var comments []models.RedditComment
	walkComments(listings[1].Data.Children, opts, &comments)
	return comments, nil
}

// walkComments flattens a comment tree depth-first. Reddit depths start at 0
// for top-level comments; RedditComment depths start at 1.
func walkComments(children []models.RedditAPIChild, opts models.FetchOptions, out *[]models.RedditComment) {
	for _, child := range children {
		if len(*out) >= opts.CommentsPerPost {
			return
		}
		if child.Kind != "t1" {
			continue
		}
		d := child.Data
		depth := d.Depth + 1
		if opts.MaxCommentDepth > 0 && depth > opts.MaxCommentDepth {
			continue
		}
		if !isRemovedBody(d.Body) {
			*out = append(*out, models.RedditComment{
				CommentID: d.ID,
				ParentID:  d.ParentID,
				Author:    d.Author,
				Body:      d.Body,
				Score:     d.Score,
				Depth:     depth,
				CreatedAt: models.UnixToTime(d.CreatedUTC),
			})
		}
		if d.Replies.Listing != nil {
			walkComments(d.Replies.Listing.Data.Children, opts, out)
		}
	}
}

func (rc *RedditClient) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := rc.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := rc.do(ctx, path, params)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		slog.Warn("[RedditClient] Token rejected - refreshing client and retrying once")
		rc.refreshClient()
		if resp, err = rc.do(ctx, path, params); err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("[RedditClient] %w: %s", ErrSubredditNotFound, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("[RedditClient] API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("[RedditClient] Failed to decode response: %w", err)
	}
	return nil
}

func (rc *RedditClient) do(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rc.apiURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("[RedditClient] Failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := rc.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("[RedditClient] Request to %s failed: %w", path, err)
	}
	return resp, nil
}
