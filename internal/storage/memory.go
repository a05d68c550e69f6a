package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/models"
)

// MemoryStorage is an in-memory Storage used by tests and the
// database.use_in_memory configuration.
type MemoryStorage struct {
	mu        sync.RWMutex
	records   map[string]models.SentimentRecord
	summaries []models.ClientSentimentSummary
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]models.SentimentRecord),
	}
}

func (s *MemoryStorage) SaveRecord(ctx context.Context, rec *models.SentimentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.SourceID] = *rec
	return nil
}

func (s *MemoryStorage) ListByClient(ctx context.Context, clientID string, period models.Period) ([]models.SentimentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.SentimentRecord
	for _, rec := range s.records {
		if rec.ClientID != clientID {
			continue
		}
		if !rec.CreatedAt.IsZero() && !period.Contains(rec.CreatedAt) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStorage) HasRecord(ctx context.Context, sourceID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.records[sourceID]
	return ok, nil
}

func (s *MemoryStorage) ListClientIDs(ctx context.Context, period models.Period) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, rec := range s.records {
		if rec.ClientID == "" {
			continue
		}
		if !rec.CreatedAt.IsZero() && !period.Contains(rec.CreatedAt) {
			continue
		}
		seen[rec.ClientID] = struct{}{}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStorage) UpsertSummary(ctx context.Context, summary *models.ClientSentimentSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	period := models.Period{Start: summary.PeriodStart, End: summary.PeriodEnd}
	kept := s.summaries[:0]
	for _, existing := range s.summaries {
		if existing.ClientID == summary.ClientID && samePeriod(existing, period) {
			continue
		}
		kept = append(kept, existing)
	}
	s.summaries = append(kept, *summary)
	return nil
}

func (s *MemoryStorage) GetSummary(ctx context.Context, clientID string, period models.Period) (*models.ClientSentimentSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.summaries {
		if s.summaries[i].ClientID == clientID && samePeriod(s.summaries[i], period) {
			out := s.summaries[i]
			return &out, nil
		}
	}
	return nil, nil
}

// SummaryCount reports how many summary rows exist for a client,
// regardless of period. Used by tests to verify the all-time
// delete-then-insert path leaves exactly one row.
func (s *MemoryStorage) SummaryCount(clientID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, sum := range s.summaries {
		if sum.ClientID == clientID {
			n++
		}
	}
	return n
}

func (s *MemoryStorage) Close() error {
	return nil
}

func samePeriod(sum models.ClientSentimentSummary, period models.Period) bool {
	return sameTimePtr(sum.PeriodStart, period.Start) && sameTimePtr(sum.PeriodEnd, period.End)
}

func sameTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
