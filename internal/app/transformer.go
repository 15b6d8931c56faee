//go:build transformer

package app

import (
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/sentiment"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/sentiment/transformer"
)

func newTransformerEstimator(modelPath string) (sentiment.Estimator, func() error, error) {
	est, err := transformer.NewEstimator(modelPath)
	if err != nil {
		return nil, nil, err
	}
	return est, est.Close, nil
}
