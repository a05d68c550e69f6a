// Package weighting computes the per-record scalar weight combining
// tiered recency decay with asymmetric sentiment weighting. Negative
// signals are weighted higher than positive ones because they matter
// more for churn prevention.
package weighting

import (
	"time"

	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/models"
)

// Engine computes record weights relative to a fixed reference time so a
// whole aggregation run is internally consistent and reproducible.
type Engine struct {
	reference time.Time
}

// NewEngine creates a weighting engine anchored at reference. A zero
// reference means time.Now at construction.
func NewEngine(reference time.Time) *Engine {
	if reference.IsZero() {
		reference = time.Now().UTC()
	}
	return &Engine{reference: reference}
}

// Weight is recency weight times sentiment weight.
func (e *Engine) Weight(rec models.SentimentRecord) float64 {
	return e.RecencyWeight(rec.CreatedAt) * SentimentWeight(rec.Score, rec.Label)
}

// RecencyWeight returns the tiered decay multiplier. The tiers are
// deliberately step-wise rather than a smooth exponential so that any
// record's contribution can be audited by hand. A zero timestamp (the
// malformed-data case) defaults to 1.0, never an error.
func (e *Engine) RecencyWeight(createdAt time.Time) float64 {
	if createdAt.IsZero() {
		return 1.0
	}

	days := int(e.reference.Sub(createdAt).Hours() / 24)
	switch {
	case days <= 7:
		return 2.0
	case days <= 30:
		return 1.5
	case days <= 90:
		return 1.0
	default:
		return 0.5
	}
}

// SentimentWeight returns the asymmetric multiplier. Mixed appears here
// only as an upstream input label; the core's own scoring never emits it.
func SentimentWeight(score float64, label models.Label) float64 {
	switch {
	case label == models.LabelNegative || score < -0.3:
		return 2.5
	case label == models.LabelMixed || (score >= -0.3 && score < 0):
		return 1.5
	case label == models.LabelNeutral || (score >= -0.1 && score <= 0.1):
		return 1.0
	default:
		return 1.2
	}
}
