// Package scoring turns a conversation's classified units into a single
// numeric sentiment score and categorical label, applying business-domain
// correction rules on top of the raw classifier output.
package scoring

import (
	"math"
	"strings"

	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/classifier"
	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/extractor"
	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/models"
)

// Outcome is the per-conversation scoring result.
type Outcome struct {
	Score float64
	Label models.Label
	// AspectScores maps detected aspects to their sentiment in [-1,1].
	AspectScores map[string]float64
	// Excluded marks conversations with no scorable units. Excluded
	// conversations produce no record and never reach aggregation.
	Excluded bool
}

// Scorer converts classified units into conversation-level sentiment.
type Scorer struct {
	rules Rules
}

func NewScorer(rules Rules) *Scorer {
	return &Scorer{rules: rules}
}

// minAspectConfidence drops weakly detected aspects from the per-record
// aspect sentiment map.
const minAspectConfidence = 0.3

// Score combines classified units with the extractor's output into the
// conversation's final score, label and aspect sentiment. text is the
// conversation's combined lowercased customer text, used for keyword
// rules.
func (s *Scorer) Score(units []classifier.Result, ext extractor.Extraction, text string) Outcome {
	if len(units) == 0 {
		return Outcome{Score: 0.0, Label: models.LabelNeutral, Excluded: true}
	}

	score := NumericScore(units)
	label := OverallLabel(units, score)

	aspects := s.aspectSentiment(score, ext.Aspects, text)
	label, score = s.applyBusinessRules(label, score, ext, text)

	return Outcome{
		Score:        score,
		Label:        label,
		AspectScores: aspects,
	}
}

// NumericScore is the confidence-weighted mean of the units' signed
// values, clamped to [-1,1] and rounded to 4 decimals. An empty or
// zero-confidence unit list scores 0.
func NumericScore(units []classifier.Result) float64 {
	var sum, weight float64
	for _, u := range units {
		sum += u.Label.SignedValue() * u.Confidence
		weight += u.Confidence
	}
	if weight == 0 {
		return 0.0
	}
	return round4(clamp(sum/weight, -1.0, 1.0))
}

// OverallLabel resolves the conversation label in two tiers: a weighted
// majority (at least half the units by count and the highest
// confidence-weighted sum), then a strict comparison of the weighted
// sums, then numeric thresholding on the score. The result is always
// exactly one of Positive, Neutral or Negative.
func OverallLabel(units []classifier.Result, score float64) models.Label {
	if len(units) == 0 {
		return models.LabelNeutral
	}

	var posN, negN, neuN int
	var posW, negW, neuW float64
	for _, u := range units {
		switch u.Label {
		case models.LabelPositive:
			posN++
			posW += u.Confidence
		case models.LabelNegative:
			negN++
			negW += u.Confidence
		default:
			neuN++
			neuW += u.Confidence
		}
	}

	total := float64(len(units))
	switch {
	case float64(posN)/total >= 0.5 && posW >= math.Max(negW, neuW):
		return models.LabelPositive
	case float64(negN)/total >= 0.5 && negW >= math.Max(posW, neuW):
		return models.LabelNegative
	case float64(neuN)/total >= 0.5 && neuW >= math.Max(posW, negW):
		return models.LabelNeutral
	case posW > negW && posW > neuW:
		return models.LabelPositive
	case negW > posW && negW > neuW:
		return models.LabelNegative
	case neuW > posW && neuW > negW:
		return models.LabelNeutral
	}

	// No strict winner among the weighted sums: resolve on the numeric
	// score rather than emitting a mixed category.
	switch {
	case score > 0.1:
		return models.LabelPositive
	case score < -0.1:
		return models.LabelNegative
	default:
		return models.LabelNeutral
	}
}

// applyBusinessRules overrides tone-model output where the business
// outcome contradicts it. Rules run in a fixed order; later rules may
// adjust a score already adjusted by an earlier one. Label and score are
// always updated together.
func (s *Scorer) applyBusinessRules(label models.Label, score float64, ext extractor.Extraction, text string) (models.Label, float64) {
	// Rule 1: billing and refund issues are negative even when polite.
	if containsAny(text, s.rules.BillingNegative) {
		switch label {
		case models.LabelPositive:
			label = models.LabelNegative
			score = math.Min(score, -0.3)
		case models.LabelNeutral:
			label = models.LabelNegative
			score = -0.2
		}
	}

	// Rule 2: card/wallet conversations rarely carry genuinely positive
	// sentiment.
	if ext.Aspects["card_wallet"] > 0.5 && score > 0 {
		score = math.Max(score-0.2, -0.5)
		if score < 0 {
			label = models.LabelNegative
		}
	}

	// Rule 3: polite technical support requests are help-seeking, not
	// complaints; soften strongly negative scores.
	if s.isTechnicalCategory(ext.IssueCategory) &&
		containsAny(text, s.rules.PoliteMarkers) &&
		containsAny(text, s.rules.TechnicalKeywords) {
		if label == models.LabelNegative && score < -0.5 {
			label = models.LabelNeutral
			score = math.Max(score, -0.2)
		} else if score < -0.7 {
			score = math.Max(score, -0.3)
		}
	}

	return label, round4(score)
}

// aspectSentiment derives a per-aspect score from the conversation
// score, capped down by aspect-specific negative keyword hits. Aspects
// detected below the confidence threshold are dropped.
func (s *Scorer) aspectSentiment(score float64, aspects map[string]float64, text string) map[string]float64 {
	if len(aspects) == 0 {
		return nil
	}

	out := make(map[string]float64)
	for aspect, confidence := range aspects {
		if confidence < minAspectConfidence {
			continue
		}

		aspectScore := score
		switch aspect {
		case "payments":
			if containsAny(text, s.rules.PaymentAspectNegative) {
				aspectScore = math.Min(aspectScore, -0.4)
			}
		case "card_wallet":
			if containsAny(text, s.rules.CardWalletNegative) {
				aspectScore = math.Min(aspectScore, -0.3)
			}
		case "contracts":
			if containsAny(text, s.rules.ContractNegative) {
				aspectScore = math.Min(aspectScore, -0.1)
			}
		}
		out[aspect] = round4(aspectScore)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (s *Scorer) isTechnicalCategory(category string) bool {
	if category == "" {
		return false
	}
	for _, c := range s.rules.TechnicalCategories {
		if strings.EqualFold(category, c) {
			return true
		}
	}
	return false
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
