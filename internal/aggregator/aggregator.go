// Package aggregator rolls per-conversation sentiment records up into
// one weighted client-level score, category and narrative conclusion.
package aggregator

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/models"
	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/weighting"
)

// Source blending weights applied when a client has records from both
// sources. Ticket sentiment is treated as the more reliable signal.
const (
	ticketSourceWeight     = 0.7
	transcriptSourceWeight = 0.3
	singleSourceWeight     = 1.0
)

// Classification thresholds for the client-level category. Boundaries
// are inclusive on the Neutral side.
const (
	positiveThreshold = 0.2
	negativeThreshold = -0.2
)

// negativeAspectThreshold flags aspects whose mean score indicates a
// pain point.
const negativeAspectThreshold = -0.2

// Aggregator combines a client's weighted records into a summary.
type Aggregator struct {
	engine *weighting.Engine
	now    func() time.Time
}

// New creates an aggregator. The weighting engine carries the reference
// time used for recency decay; now stamps LastCalculatedAt and defaults
// to time.Now.
func New(engine *weighting.Engine, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{engine: engine, now: now}
}

// Aggregate computes the client's summary from its records within the
// period. A client with no records yields nil: callers skip the write
// rather than persisting a zero-record row.
func (a *Aggregator) Aggregate(clientID string, records []models.SentimentRecord, period models.Period) *models.ClientSentimentSummary {
	if len(records) == 0 {
		return nil
	}

	ticketWeight, transcriptWeight := sourceWeights(records)

	var weightedSum, totalWeight float64
	var positive, negative, neutral, mixed int

	for _, rec := range records {
		weight := a.engine.Weight(rec)
		switch rec.SourceKind {
		case models.SourceTranscript:
			weight *= transcriptWeight
		default:
			weight *= ticketWeight
		}

		weightedSum += rec.Score * weight
		totalWeight += weight

		switch rec.Label {
		case models.LabelPositive:
			positive++
		case models.LabelNegative:
			negative++
		case models.LabelMixed:
			mixed++
		default:
			neutral++
		}
	}

	finalScore := 0.0
	if totalWeight > 0 {
		finalScore = round4(weightedSum / totalWeight)
	}

	category := Classify(finalScore)
	if totalWeight == 0 {
		// Cannot happen with the current weight tables (every record
		// weighs at least 0.5×1.0×0.3), but a zero denominator must not
		// produce garbage.
		category = models.LabelNeutral
	}

	aspectMeans := aspectSentimentMeans(records)
	negativeAspects := negativeAspectsSummary(aspectMeans)

	total := len(records)
	summary := &models.ClientSentimentSummary{
		ClientID:    clientID,
		PeriodStart: period.Start,
		PeriodEnd:   period.End,

		TotalRecords:  total,
		PositiveCount: positive,
		NegativeCount: negative,
		NeutralCount:  neutral,
		MixedCount:    mixed,

		PositivePercentage: round2(percent(positive, total)),
		NegativePercentage: round2(percent(negative, total)),
		NeutralPercentage:  round2(percent(neutral, total)),

		FinalScore: finalScore,
		Category:   category,

		AspectSentiment:        aspectMeans,
		NegativeAspectsSummary: negativeAspects,

		LastCalculatedAt: a.now().UTC(),
	}
	summary.Conclusion = Conclusion(summary)

	return summary
}

// Classify maps a final score to its category with fixed thresholds:
// scores above 0.2 are Positive, below -0.2 Negative, the closed band
// between them Neutral.
func Classify(finalScore float64) models.Label {
	switch {
	case finalScore > positiveThreshold:
		return models.LabelPositive
	case finalScore < negativeThreshold:
		return models.LabelNegative
	default:
		return models.LabelNeutral
	}
}

// sourceWeights returns the blending multipliers for tickets and
// transcripts. A client whose records all come from one source keeps
// full weight for that source; blending only applies when both are
// present.
func sourceWeights(records []models.SentimentRecord) (ticket, transcript float64) {
	var hasTicket, hasTranscript bool
	for _, rec := range records {
		if rec.SourceKind == models.SourceTranscript {
			hasTranscript = true
		} else {
			hasTicket = true
		}
	}

	if hasTicket && hasTranscript {
		return ticketSourceWeight, transcriptSourceWeight
	}
	return singleSourceWeight, singleSourceWeight
}

// aspectSentimentMeans computes the unweighted mean per aspect across
// the records exposing it.
func aspectSentimentMeans(records []models.SentimentRecord) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, rec := range records {
		for aspect, score := range rec.AspectScores {
			sums[aspect] += score
			counts[aspect]++
		}
	}

	if len(sums) == 0 {
		return nil
	}

	means := make(map[string]float64, len(sums))
	for aspect, sum := range sums {
		means[aspect] = round4(sum / float64(counts[aspect]))
	}
	return means
}

// negativeAspectsSummary lists aspects whose mean fell below the
// negativity threshold: title-cased, alphabetically sorted, comma
// joined.
func negativeAspectsSummary(means map[string]float64) string {
	var flagged []string
	for aspect, mean := range means {
		if mean < negativeAspectThreshold {
			flagged = append(flagged, titleCase(aspect))
		}
	}
	if len(flagged) == 0 {
		return ""
	}
	sort.Strings(flagged)
	return strings.Join(flagged, ", ")
}

func titleCase(aspect string) string {
	words := strings.Fields(strings.ReplaceAll(aspect, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
