package models

import (
	"bytes"
	"encoding/json"
)

// RedditReplies decodes the "replies" field of a Reddit comment, which the API
// sends as "" when a comment has no children.
type RedditReplies struct {
	Listing *RedditAPIResponse
}

func (r *RedditReplies) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		r.Listing = nil
		return nil
	}
	var listing RedditAPIResponse
	if err := json.Unmarshal(trimmed, &listing); err != nil {
		return err
	}
	r.Listing = &listing
	return nil
}

func (r RedditReplies) MarshalJSON() ([]byte, error) {
	if r.Listing == nil {
		return []byte(`""`), nil
	}
	return json.Marshal(r.Listing)
}
