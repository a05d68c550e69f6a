package scoring

import (
	"math"
	"testing"

	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/classifier"
	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/extractor"
	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/models"
)

func unit(label models.Label, conf float64) classifier.Result {
	return classifier.Result{Label: label, Confidence: conf}
}

func TestNumericScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		units []classifier.Result
		want  float64
	}{
		{"empty", nil, 0.0},
		{"single positive", []classifier.Result{unit(models.LabelPositive, 0.9)}, 1.0},
		{"single negative", []classifier.Result{unit(models.LabelNegative, 0.8)}, -1.0},
		{"neutral only", []classifier.Result{unit(models.LabelNeutral, 0.7)}, 0.0},
		{
			"weighted mix",
			[]classifier.Result{
				unit(models.LabelPositive, 0.9),
				unit(models.LabelNegative, 0.3),
			},
			// (0.9 - 0.3) / 1.2
			0.5,
		},
		{"zero confidence", []classifier.Result{unit(models.LabelPositive, 0)}, 0.0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := NumericScore(tt.units)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("NumericScore=%v, want %v", got, tt.want)
			}
		})
	}
}

func TestNumericScore_Bounds(t *testing.T) {
	t.Parallel()

	units := []classifier.Result{
		unit(models.LabelNegative, 1.0),
		unit(models.LabelNegative, 1.0),
		unit(models.LabelNegative, 0.5),
	}
	got := NumericScore(units)
	if got < -1.0 || got > 1.0 {
		t.Fatalf("score %v out of [-1,1]", got)
	}
}

func TestOverallLabel_WeightedMajority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		units []classifier.Result
		want  models.Label
	}{
		{
			"positive majority",
			[]classifier.Result{
				unit(models.LabelPositive, 0.9),
				unit(models.LabelPositive, 0.8),
				unit(models.LabelNegative, 0.7),
			},
			models.LabelPositive,
		},
		{
			"negative majority",
			[]classifier.Result{
				unit(models.LabelNegative, 0.9),
				unit(models.LabelNegative, 0.6),
				unit(models.LabelPositive, 0.4),
			},
			models.LabelNegative,
		},
		{
			"no majority, highest weighted sum wins",
			[]classifier.Result{
				unit(models.LabelPositive, 0.4),
				unit(models.LabelNegative, 0.9),
				unit(models.LabelNeutral, 0.3),
			},
			models.LabelNegative,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			score := NumericScore(tt.units)
			if got := OverallLabel(tt.units, score); got != tt.want {
				t.Fatalf("OverallLabel=%q, want %q", got, tt.want)
			}
		})
	}
}

func TestOverallLabel_TieFallsBackToScore(t *testing.T) {
	t.Parallel()

	// One of each label with identical confidence: no count majority and
	// no strict weighted-sum winner, so the numeric score decides.
	units := []classifier.Result{
		unit(models.LabelPositive, 0.5),
		unit(models.LabelNegative, 0.5),
		unit(models.LabelNeutral, 0.5),
	}
	score := NumericScore(units)
	if got := OverallLabel(units, score); got != models.LabelNeutral {
		t.Fatalf("OverallLabel=%q, want neutral", got)
	}
}

func TestOverallLabel_NeverMixed(t *testing.T) {
	t.Parallel()

	combos := [][]classifier.Result{
		{unit(models.LabelPositive, 0.5), unit(models.LabelNegative, 0.5)},
		{unit(models.LabelPositive, 0.7), unit(models.LabelNegative, 0.7), unit(models.LabelNeutral, 0.7), unit(models.LabelPositive, 0.1)},
		{unit(models.LabelNeutral, 0.0)},
	}

	for _, units := range combos {
		got := OverallLabel(units, NumericScore(units))
		switch got {
		case models.LabelPositive, models.LabelNeutral, models.LabelNegative:
		default:
			t.Fatalf("OverallLabel=%q, want one of positive/neutral/negative", got)
		}
	}
}

func TestScore_EmptyConversationExcluded(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultRules())
	out := s.Score(nil, extractor.Extraction{}, "")

	if !out.Excluded {
		t.Fatal("empty conversation not marked excluded")
	}
	if out.Score != 0.0 {
		t.Fatalf("score=%v, want 0.0", out.Score)
	}
}

func TestScore_RefundOverridesPositive(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultRules())
	units := []classifier.Result{unit(models.LabelPositive, 0.95)}
	text := "hello, could you please process a refund for last month"

	out := s.Score(units, extractor.Extraction{}, text)

	if out.Label != models.LabelNegative {
		t.Fatalf("label=%q, want negative", out.Label)
	}
	if out.Score > -0.3 {
		t.Fatalf("score=%v, want <= -0.3", out.Score)
	}
}

func TestScore_RefundTurnsNeutralNegative(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultRules())
	units := []classifier.Result{unit(models.LabelNeutral, 0.9)}
	text := "hay un cobro incorrecto en la factura"

	out := s.Score(units, extractor.Extraction{}, text)

	if out.Label != models.LabelNegative {
		t.Fatalf("label=%q, want negative", out.Label)
	}
	if out.Score != -0.2 {
		t.Fatalf("score=%v, want -0.2", out.Score)
	}
}

func TestScore_CardWalletDampensPositive(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultRules())
	units := []classifier.Result{unit(models.LabelPositive, 0.9)}
	ext := extractor.Extraction{Aspects: map[string]float64{"card_wallet": 0.8}}

	out := s.Score(units, ext, "my new visa card arrived, thanks")

	if out.Score >= 1.0 {
		t.Fatalf("score=%v, want dampened below raw 1.0", out.Score)
	}
	if math.Abs(out.Score-0.8) > 1e-9 {
		t.Fatalf("score=%v, want 0.8", out.Score)
	}
}

func TestScore_PoliteTechReportSoftened(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultRules())
	units := []classifier.Result{
		unit(models.LabelNegative, 0.9),
		unit(models.LabelNegative, 0.8),
	}
	ext := extractor.Extraction{IssueCategory: "technical"}
	text := "hola, por favor, there is an error when i login, gracias"

	out := s.Score(units, ext, text)

	if out.Label != models.LabelNeutral {
		t.Fatalf("label=%q, want neutral after softening", out.Label)
	}
	if out.Score < -0.2 {
		t.Fatalf("score=%v, want >= -0.2", out.Score)
	}
}

func TestScore_AspectSentimentCaps(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultRules())
	units := []classifier.Result{unit(models.LabelPositive, 0.9)}
	ext := extractor.Extraction{Aspects: map[string]float64{
		"payments": 0.7,
		"support":  0.2, // below confidence threshold, dropped
	}}
	text := "there was a billing error and i want a refund"

	out := s.Score(units, ext, text)

	if _, ok := out.AspectScores["support"]; ok {
		t.Fatal("low-confidence aspect was not dropped")
	}
	if got := out.AspectScores["payments"]; got > -0.4 {
		t.Fatalf("payments aspect=%v, want <= -0.4", got)
	}
}

func TestScore_OutputAlwaysInRange(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultRules())
	texts := []string{
		"refund refund refund overcharge billing error",
		"gracias excelente",
		"",
	}
	unitSets := [][]classifier.Result{
		{unit(models.LabelNegative, 1.0)},
		{unit(models.LabelPositive, 1.0), unit(models.LabelNegative, 1.0)},
		{unit(models.LabelNeutral, 0.4)},
	}

	for _, text := range texts {
		for _, units := range unitSets {
			out := s.Score(units, extractor.Extraction{}, text)
			if out.Score < -1.0 || out.Score > 1.0 {
				t.Fatalf("score %v out of [-1,1] for text %q", out.Score, text)
			}
		}
	}
}
