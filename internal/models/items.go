package models

import (
	"errors"
	"time"
)

// ErrInvalidArgument is returned by the analysis core when a caller passes a
// limit or configuration value it cannot honor.
var ErrInvalidArgument = errors.New("invalid argument")

type Label string

const (
	LabelNegative Label = "negative"
	LabelNeutral  Label = "neutral"
	LabelPositive Label = "positive"
)

type ItemKind string

const (
	KindPost    ItemKind = "post"
	KindComment ItemKind = "comment"
)

// TextItem is one post or comment as handed to the analysis core.
type TextItem struct {
	ID         string    `json:"id"`
	Kind       ItemKind  `json:"kind"`
	Text       string    `json:"text"`
	Author     string    `json:"author"`
	Engagement int       `json:"engagement"`
	Replies    int       `json:"replies"`
	CreatedAt  time.Time `json:"created_at"`
	Depth      int       `json:"depth"`
	ParentID   string    `json:"parent_id,omitempty"`
}

type Estimate struct {
	Estimator string  `json:"estimator"`
	Polarity  float64 `json:"polarity"`
}

type ScoredItem struct {
	TextItem
	Polarity  float64    `json:"polarity"`
	Label     Label      `json:"label"`
	Estimates []Estimate `json:"estimates,omitempty"`
	Degraded  bool       `json:"degraded,omitempty"`
}
