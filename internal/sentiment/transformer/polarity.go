// Package transformer holds the hugot-backed sentiment estimator. The model
// runtime needs cgo libraries (onnxruntime, tokenizers), so the estimator is
// only compiled with the "transformer" build tag.
package transformer

import (
	"math"
	"strings"
)

const NAME = "transformer"

// PolarityFromClass converts a binary classifier's top label and its
// probability into a signed polarity in [-1, 1].
func PolarityFromClass(label string, score float64) float64 {
	positive := score
	if strings.HasPrefix(strings.ToUpper(label), "NEG") || label == "LABEL_0" {
		positive = 1 - score
	}
	return math.Max(-1, math.Min(1, 2*positive-1))
}
