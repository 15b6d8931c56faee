package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
)

func TestPullPushFetchPosts(t *testing.T) {
	var commentCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/reddit/search/submission/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GooglePixel", r.URL.Query().Get("subreddit"))
		assert.Equal(t, "2", r.URL.Query().Get("size"))
		assert.Equal(t, "created_utc", r.URL.Query().Get("sort_type"))
		assert.Equal(t, USER_AGENT, r.Header.Get("User-Agent"))
		w.Write([]byte(`{"data":[
			{"id":"abc","subreddit":"GooglePixel","author":"alice","title":"Battery drain","selftext":"since the update","score":42,"num_comments":3,"created_utc":1735689600},
			{"id":"def","subreddit":"GooglePixel","author":"bob","title":"Camera is great","selftext":"","score":7,"num_comments":0,"created_utc":1735689700.5}
		]}`))
	})
	mux.HandleFunc("/reddit/search/comment/", func(w http.ResponseWriter, r *http.Request) {
		commentCalls.Add(1)
		assert.Equal(t, "t3_abc", r.URL.Query().Get("link_id"))
		assert.Equal(t, "5", r.URL.Query().Get("size"))
		w.Write([]byte(`{"data":[
			{"id":"c1","parent_id":"t3_abc","author":"carol","body":"same here","score":5,"created_utc":1735690000},
			{"id":"c2","parent_id":"t1_c1","author":"dave","body":"[removed]","score":1},
			{"id":"c3","parent_id":"t1_c1","author":"erin","body":"fixed after reboot","score":2}
		]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewPullPushClient(PullPushConfig{BaseURL: srv.URL})
	posts, err := client.FetchPosts(context.Background(), "GooglePixel", models.FetchOptions{PostLimit: 2, CommentsPerPost: 5})
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "abc", posts[0].PostID)
	assert.Equal(t, "Battery drain", posts[0].PostTitle)
	assert.Equal(t, 42, posts[0].Score)
	assert.Equal(t, int64(1735689600), posts[0].CreatedAt.Unix())

	require.Len(t, posts[0].Comments, 2)
	assert.Equal(t, "c1", posts[0].Comments[0].CommentID)
	assert.Equal(t, 1, posts[0].Comments[0].Depth)
	assert.Equal(t, "c3", posts[0].Comments[1].CommentID)
	assert.Equal(t, 2, posts[0].Comments[1].Depth)

	assert.Empty(t, posts[1].Comments)
	assert.Equal(t, int32(1), commentCalls.Load())
}

func TestPullPushSkipsCommentsWhenNotRequested(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/reddit/search/submission/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"abc","title":"t","num_comments":9}]}`))
	})
	mux.HandleFunc("/reddit/search/comment/", func(w http.ResponseWriter, r *http.Request) {
		t.Error("comments must not be requested")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	posts, err := NewPullPushClient(PullPushConfig{BaseURL: srv.URL}).FetchPosts(context.Background(), "x", models.FetchOptions{PostLimit: 1})
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestPullPushCommentFailureKeepsPosts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/reddit/search/submission/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"abc","title":"t","num_comments":9}]}`))
	})
	mux.HandleFunc("/reddit/search/comment/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	posts, err := NewPullPushClient(PullPushConfig{BaseURL: srv.URL}).FetchPosts(context.Background(), "x", models.FetchOptions{PostLimit: 1, CommentsPerPost: 3})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Empty(t, posts[0].Comments)
}

func TestPullPushErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		notFound bool
	}{
		{"not found", http.StatusNotFound, true},
		{"server error", http.StatusInternalServerError, false},
		{"forbidden", http.StatusForbidden, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := NewPullPushClient(PullPushConfig{BaseURL: srv.URL}).FetchPosts(context.Background(), "missing", models.FetchOptions{PostLimit: 1})
			require.Error(t, err)
			assert.Equal(t, tt.notFound, errors.Is(err, ErrSubredditNotFound))
		})
	}
}

func TestPullPushBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [`))
	}))
	defer srv.Close()

	_, err := NewPullPushClient(PullPushConfig{BaseURL: srv.URL}).FetchPosts(context.Background(), "x", models.FetchOptions{PostLimit: 1})
	assert.ErrorContains(t, err, "decode")
}
