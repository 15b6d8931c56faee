//go:build transformer

package transformer

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

// Estimator runs a local text-classification model (an SST-2 fine-tuned
// distilbert export, for example) through hugot's ONNX Runtime backend.
// hugot allows one ORT session per process, so build a single Estimator.
type Estimator struct {
	mu       sync.Mutex
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
}

func NewEstimator(modelPath string) (*Estimator, error) {
	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("[TransformerEstimator] failed to initialize Hugot session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "sentimentPipeline",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		_ = session.Destroy()
		return nil, fmt.Errorf("[TransformerEstimator] failed to load model %q: %w", modelPath, err)
	}

	slog.Info("[TransformerEstimator] Model loaded", slog.String("model_path", modelPath))
	return &Estimator{session: session, pipeline: pipeline}, nil
}

func (e *Estimator) Name() string { return NAME }

func (e *Estimator) Polarity(text string) (float64, error) {
	e.mu.Lock()
	out, err := e.pipeline.RunPipeline([]string{text})
	e.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("[TransformerEstimator] inference failed: %w", err)
	}
	if len(out.ClassificationOutputs) == 0 || len(out.ClassificationOutputs[0]) == 0 {
		return 0, fmt.Errorf("[TransformerEstimator] model returned no classification")
	}

	top := out.ClassificationOutputs[0][0]
	return PolarityFromClass(top.Label, float64(top.Score)), nil
}

func (e *Estimator) Close() error {
	return e.session.Destroy()
}
