package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
)

const (
	DefaultVaderWeight     = 0.6
	DefaultSecondaryWeight = 0.4
)

// Estimator produces one independent polarity estimate in [-1, 1].
type Estimator interface {
	Name() string
	Polarity(text string) (float64, error)
}

type WeightedEstimator struct {
	Estimator Estimator
	Weight    float64
}

type Result struct {
	Polarity  float64
	Label     models.Label
	Estimates []models.Estimate
	Degraded  bool
}

// Scorer combines its estimators with a fixed weighted average. Weights are
// normalized to sum to one when the scorer is built.
type Scorer struct {
	estimators []WeightedEstimator
	thresholds Thresholds
	workers    int
}

type Option func(*Scorer)

func WithWorkers(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.workers = n
		}
	}
}

func NewScorer(thresholds Thresholds, estimators []WeightedEstimator, opts ...Option) (*Scorer, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	if len(estimators) == 0 {
		return nil, fmt.Errorf("%w: scorer needs at least one estimator", models.ErrInvalidArgument)
	}

	var total float64
	for _, e := range estimators {
		if e.Weight < 0 || math.IsNaN(e.Weight) {
			return nil, fmt.Errorf("%w: estimator %s has weight %v", models.ErrInvalidArgument, e.Estimator.Name(), e.Weight)
		}
		total += e.Weight
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: estimator weights sum to zero", models.ErrInvalidArgument)
	}

	normalized := make([]WeightedEstimator, len(estimators))
	for i, e := range estimators {
		normalized[i] = WeightedEstimator{Estimator: e.Estimator, Weight: e.Weight / total}
	}

	s := &Scorer{
		estimators: normalized,
		thresholds: thresholds,
		workers:    runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewDefaultScorer is the VADER (0.6) + pattern (0.4) ensemble.
func NewDefaultScorer(thresholds Thresholds, opts ...Option) (*Scorer, error) {
	return NewScorer(thresholds, []WeightedEstimator{
		{Estimator: NewVaderEstimator(), Weight: DefaultVaderWeight},
		{Estimator: NewPatternEstimator(), Weight: DefaultSecondaryWeight},
	}, opts...)
}

func (s *Scorer) Thresholds() Thresholds { return s.thresholds }

// Score never fails: text without any letters or digits is neutral, and an
// estimator error or panic degrades the item to neutral.
func (s *Scorer) Score(text string) Result {
	plain := ConvertMarkdownToText(text)
	if !hasContent(plain) {
		return Result{Polarity: 0, Label: models.LabelNeutral}
	}

	estimates := make([]models.Estimate, 0, len(s.estimators))
	var combined float64
	for _, e := range s.estimators {
		p, err := safePolarity(e.Estimator, plain)
		if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
			slog.Warn("[Scorer] Estimator failed, scoring item as neutral",
				slog.String("estimator", e.Estimator.Name()),
				slog.Any("error", err))
			return Result{Polarity: 0, Label: models.LabelNeutral, Degraded: true}
		}
		p = clamp(p)
		estimates = append(estimates, models.Estimate{Estimator: e.Estimator.Name(), Polarity: p})
		combined += e.Weight * p
	}

	combined = clamp(combined)
	return Result{
		Polarity:  combined,
		Label:     s.thresholds.Label(combined),
		Estimates: estimates,
	}
}

// ScoreItems scores a batch on a bounded worker pool. The returned slice has
// the same order as items.
func (s *Scorer) ScoreItems(ctx context.Context, items []models.TextItem) ([]models.ScoredItem, error) {
	scored := make([]models.ScoredItem, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r := s.Score(items[i].Text)
			scored[i] = models.ScoredItem{
				TextItem:  items[i],
				Polarity:  r.Polarity,
				Label:     r.Label,
				Estimates: r.Estimates,
				Degraded:  r.Degraded,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scored, nil
}

func safePolarity(e Estimator, text string) (p float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("estimator %s panicked: %v", e.Name(), r)
		}
	}()
	return e.Polarity(text)
}

func hasContent(text string) bool {
	return strings.IndexFunc(text, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}
