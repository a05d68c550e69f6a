package aggregator

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/models"
	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/storage"
)

func seedStore(t *testing.T) *storage.MemoryStorage {
	t.Helper()

	store := storage.NewMemoryStorage()
	records := []models.SentimentRecord{
		{SourceID: "T1", ClientID: "CL001", SourceKind: models.SourceTicket, CreatedAt: daysAgo(2), Label: models.LabelPositive, Score: 0.8},
		{SourceID: "T2", ClientID: "CL001", SourceKind: models.SourceTicket, CreatedAt: daysAgo(40), Label: models.LabelNegative, Score: -0.6},
		{SourceID: "T3", ClientID: "CL002", SourceKind: models.SourceTranscript, CreatedAt: daysAgo(10), Label: models.LabelNeutral, Score: 0.0},
	}
	for i := range records {
		if err := store.SaveRecord(context.Background(), &records[i]); err != nil {
			t.Fatalf("SaveRecord: %v", err)
		}
	}
	return store
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	store := seedStore(t)
	runner := NewRunner(store, newTestAggregator(), 4, zap.NewNop())

	tally, err := runner.Run(context.Background(), []string{"CL001", "CL002", "CL404"}, models.Period{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := Tally{Processed: 3, Succeeded: 2, Skipped: 1}
	if tally != want {
		t.Fatalf("tally=%+v, want %+v", tally, want)
	}

	sum, err := store.GetSummary(context.Background(), "CL001", models.Period{})
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if sum == nil {
		t.Fatal("CL001 summary was not persisted")
	}
	if sum.TotalRecords != 2 {
		t.Fatalf("TotalRecords=%d, want 2", sum.TotalRecords)
	}
}

func TestRunner_RunAll(t *testing.T) {
	t.Parallel()

	store := seedStore(t)
	runner := NewRunner(store, newTestAggregator(), 2, zap.NewNop())

	tally, err := runner.RunAll(context.Background(), models.Period{})
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if tally.Processed != 2 || tally.Succeeded != 2 {
		t.Fatalf("tally=%+v, want 2 processed and succeeded", tally)
	}
}

func TestRunner_RunAllEmptyStore(t *testing.T) {
	t.Parallel()

	runner := NewRunner(storage.NewMemoryStorage(), newTestAggregator(), 2, zap.NewNop())

	tally, err := runner.RunAll(context.Background(), models.Period{})
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if tally != (Tally{}) {
		t.Fatalf("tally=%+v, want zero", tally)
	}
}

// Re-running the all-time aggregation replaces the previous summary row
// instead of accumulating duplicates.
func TestRunner_AllTimeRerunReplacesSummary(t *testing.T) {
	t.Parallel()

	store := seedStore(t)
	runner := NewRunner(store, newTestAggregator(), 1, zap.NewNop())

	for i := 0; i < 2; i++ {
		if _, err := runner.Run(context.Background(), []string{"CL001"}, models.Period{}); err != nil {
			t.Fatalf("Run %d: %v", i, err)
		}
	}

	if got := store.SummaryCount("CL001"); got != 1 {
		t.Fatalf("SummaryCount=%d, want 1", got)
	}
}

func TestRunner_PeriodFiltersRecords(t *testing.T) {
	t.Parallel()

	store := seedStore(t)
	runner := NewRunner(store, newTestAggregator(), 1, zap.NewNop())

	start := daysAgo(7)
	period := models.Period{Start: &start}

	tally, err := runner.Run(context.Background(), []string{"CL001"}, period)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if tally.Succeeded != 1 {
		t.Fatalf("tally=%+v, want 1 succeeded", tally)
	}

	sum, err := store.GetSummary(context.Background(), "CL001", period)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if sum == nil {
		t.Fatal("bounded summary was not persisted")
	}
	if sum.TotalRecords != 1 {
		t.Fatalf("TotalRecords=%d, want only the 2-day-old record", sum.TotalRecords)
	}
}
