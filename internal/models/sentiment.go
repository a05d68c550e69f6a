package models

import (
	"strings"
	"time"
)

// Label is a categorical sentiment value. The core only ever emits
// Positive, Neutral or Negative; Mixed is accepted as an input label from
// upstream ticket aggregators and normalized during weighting.
type Label string

const (
	LabelPositive Label = "positive"
	LabelNeutral  Label = "neutral"
	LabelNegative Label = "negative"
	LabelMixed    Label = "mixed"
)

// ParseLabel normalizes free-form label text coming from classifiers or
// upstream rows. Unknown values map to Neutral.
func ParseLabel(s string) Label {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "label_2":
		return LabelPositive
	case "negative", "label_0":
		return LabelNegative
	case "mixed":
		return LabelMixed
	default:
		return LabelNeutral
	}
}

// SignedValue maps a label to its numeric contribution.
func (l Label) SignedValue() float64 {
	switch l {
	case LabelPositive:
		return 1.0
	case LabelNegative:
		return -1.0
	default:
		return 0.0
	}
}

type SourceKind string

const (
	SourceTicket     SourceKind = "ticket"
	SourceTranscript SourceKind = "transcript"
)

// Message is one text unit of a conversation as delivered by the
// upstream ticket/transcript source.
type Message struct {
	Text       string    `json:"text"`
	AuthorRole string    `json:"author_role"`
	Timestamp  time.Time `json:"timestamp"`
}

// AuthorRoleCustomer marks customer-authored messages; by default only
// these are scored.
const AuthorRoleCustomer = "end-user"

// Conversation is one ticket's or transcript's full exchange.
type Conversation struct {
	SourceID   string     `json:"source_id"`
	ClientID   string     `json:"client_id"`
	SourceKind SourceKind `json:"source_kind"`
	CreatedAt  time.Time  `json:"created_at"`
	Messages   []Message  `json:"messages"`
}

// SentimentRecord is one scored conversation. Records are written once
// after classification and never mutated; re-analysis replaces the row
// wholesale.
type SentimentRecord struct {
	SourceID      string             `json:"source_id"`
	ClientID      string             `json:"client_id"`
	SourceKind    SourceKind         `json:"source_kind"`
	CreatedAt     time.Time          `json:"created_at"`
	Label         Label              `json:"label"`
	Score         float64            `json:"score"`
	AspectScores  map[string]float64 `json:"aspect_scores,omitempty"`
	IssueCategory string             `json:"issue_category,omitempty"`
	AnalyzedAt    time.Time          `json:"analyzed_at"`
	AnalysisRunID string             `json:"analysis_run_id,omitempty"`
}

// Period is an optional [Start, End] window. Both bounds nil means
// "all time", which gets its own write path in storage.
type Period struct {
	Start *time.Time
	End   *time.Time
}

// AllTime reports whether both bounds are unset.
func (p Period) AllTime() bool {
	return p.Start == nil && p.End == nil
}

// Contains reports whether t falls inside the window. Unset bounds are
// open.
func (p Period) Contains(t time.Time) bool {
	if p.Start != nil && t.Before(*p.Start) {
		return false
	}
	if p.End != nil && t.After(*p.End) {
		return false
	}
	return true
}

// ClientSentimentSummary is the aggregate result for one client and
// period, recomputed from scratch on every aggregation run.
type ClientSentimentSummary struct {
	ClientID    string     `json:"client_id"`
	PeriodStart *time.Time `json:"period_start,omitempty"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`

	TotalRecords  int `json:"total_records"`
	PositiveCount int `json:"positive_count"`
	NegativeCount int `json:"negative_count"`
	NeutralCount  int `json:"neutral_count"`
	MixedCount    int `json:"mixed_count"`

	PositivePercentage float64 `json:"positive_percentage"`
	NegativePercentage float64 `json:"negative_percentage"`
	NeutralPercentage  float64 `json:"neutral_percentage"`

	FinalScore float64 `json:"final_score"`
	Category   Label   `json:"category"`

	AspectSentiment        map[string]float64 `json:"aspect_sentiment,omitempty"`
	NegativeAspectsSummary string             `json:"negative_aspects_summary,omitempty"`
	Conclusion             string             `json:"conclusion"`

	LastCalculatedAt time.Time `json:"last_calculated_at"`
}
