package classifier

import (
	"context"
	"strings"

	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/models"
)

// Result is one classified text unit.
type Result struct {
	Label      models.Label `json:"label"`
	Confidence float64      `json:"confidence"`
}

// Classifier turns a text span into a sentiment label with a confidence
// in [0,1]. Implementations must be safe for concurrent use.
//
// Callers treat an error as "no information": the unit is excluded from
// scoring rather than defaulted to a sentiment value.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

// KeywordClassifier is a deterministic lexicon-based classifier. It
// serves as the fallback when the model-backed classifier fails and as
// the workhorse for tests.
type KeywordClassifier struct {
	positive []string
	negative []string
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		positive: []string{
			"thank", "thanks", "gracias", "great", "excellent", "perfect",
			"appreciate", "happy", "love", "awesome", "resolved", "solved",
		},
		negative: []string{
			"refund", "reembolso", "angry", "terrible", "awful", "horrible",
			"disappointed", "frustrated", "complaint", "broken", "error",
			"overcharge", "unacceptable", "worst", "cancel",
		},
	}
}

func (c *KeywordClassifier) Classify(ctx context.Context, text string) (Result, error) {
	lower := strings.ToLower(text)

	var pos, neg int
	for _, w := range c.positive {
		pos += strings.Count(lower, w)
	}
	for _, w := range c.negative {
		neg += strings.Count(lower, w)
	}

	switch {
	case pos == 0 && neg == 0:
		return Result{Label: models.LabelNeutral, Confidence: 0.5}, nil
	case neg > pos:
		return Result{Label: models.LabelNegative, Confidence: confidenceFor(neg, pos)}, nil
	case pos > neg:
		return Result{Label: models.LabelPositive, Confidence: confidenceFor(pos, neg)}, nil
	default:
		return Result{Label: models.LabelNeutral, Confidence: 0.5}, nil
	}
}

// confidenceFor scales with the margin between winning and losing hit
// counts, capped below certainty.
func confidenceFor(winner, loser int) float64 {
	margin := float64(winner - loser)
	conf := 0.5 + margin*0.1
	if conf > 0.95 {
		conf = 0.95
	}
	return conf
}
