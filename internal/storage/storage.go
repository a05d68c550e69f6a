package storage

import (
	"context"

	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/models"
)

// RecordStore persists per-conversation sentiment records. Records are
// append-only: a re-analysis replaces the row wholesale rather than
// patching fields.
type RecordStore interface {
	// SaveRecord writes one classification result, replacing any prior
	// row for the same source.
	SaveRecord(ctx context.Context, rec *models.SentimentRecord) error
	// ListByClient returns a client's scored records inside the period.
	ListByClient(ctx context.Context, clientID string, period models.Period) ([]models.SentimentRecord, error)
	// ListClientIDs returns every client with at least one scored record
	// inside the period, sorted.
	ListClientIDs(ctx context.Context, period models.Period) ([]string, error)
	// HasRecord reports whether the source was already analyzed. The
	// analysis stage skips analyzed sources unless re-analysis is forced.
	HasRecord(ctx context.Context, sourceID string) (bool, error)
}

// SummaryStore persists per-client aggregate summaries keyed by
// (client_id, period_start, period_end).
type SummaryStore interface {
	// UpsertSummary replaces the summary row for its period key. The
	// all-time key (both period bounds nil) uses a delete-then-insert
	// path because NULL-compound-key upserts are unreliable.
	UpsertSummary(ctx context.Context, summary *models.ClientSentimentSummary) error
	// GetSummary fetches one summary, or nil when absent.
	GetSummary(ctx context.Context, clientID string, period models.Period) (*models.ClientSentimentSummary, error)
}

// Storage is the combined persistence surface.
type Storage interface {
	RecordStore
	SummaryStore
	Close() error
}
