package sentiment

import (
	"fmt"
	"math"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
)

const (
	DefaultNegativeThreshold = -0.20
	DefaultPositiveThreshold = 0.20
)

// Thresholds map a polarity onto a label: below Negative is negative, above
// Positive is positive, anything in between (inclusive) is neutral.
type Thresholds struct {
	Negative float64
	Positive float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Negative: DefaultNegativeThreshold, Positive: DefaultPositiveThreshold}
}

func (t Thresholds) Validate() error {
	if math.IsNaN(t.Negative) || math.IsNaN(t.Positive) {
		return fmt.Errorf("%w: thresholds must be numbers", models.ErrInvalidArgument)
	}
	if t.Negative > t.Positive {
		return fmt.Errorf("%w: negative threshold %.3f is above positive threshold %.3f",
			models.ErrInvalidArgument, t.Negative, t.Positive)
	}
	if t.Negative < -1 || t.Positive > 1 {
		return fmt.Errorf("%w: thresholds must lie in [-1, 1]", models.ErrInvalidArgument)
	}
	return nil
}

func (t Thresholds) Label(score float64) models.Label {
	switch {
	case score < t.Negative:
		return models.LabelNegative
	case score > t.Positive:
		return models.LabelPositive
	default:
		return models.LabelNeutral
	}
}
