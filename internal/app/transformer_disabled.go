//go:build !transformer

package app

import (
	"errors"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/sentiment"
)

var ErrTransformerUnavailable = errors.New("binary built without the transformer tag; rebuild with -tags transformer to use TRANSFORMER_MODEL_PATH")

func newTransformerEstimator(string) (sentiment.Estimator, func() error, error) {
	return nil, nil, ErrTransformerUnavailable
}
