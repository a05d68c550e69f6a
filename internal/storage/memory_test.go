package storage

import (
	"context"
	"testing"
	"time"

	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/models"
)

func ts(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func TestMemoryStorage_SaveRecordUpserts(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()
	ctx := context.Background()

	first := models.SentimentRecord{SourceID: "T1", ClientID: "CL001", Label: models.LabelNeutral, Score: 0}
	if err := store.SaveRecord(ctx, &first); err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}

	second := models.SentimentRecord{SourceID: "T1", ClientID: "CL001", Label: models.LabelNegative, Score: -0.7}
	if err := store.SaveRecord(ctx, &second); err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}

	records, err := store.ListByClient(ctx, "CL001", models.Period{})
	if err != nil {
		t.Fatalf("ListByClient: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want re-analysis to replace the row", len(records))
	}
	if records[0].Score != -0.7 {
		t.Fatalf("Score=%v, want the newer analysis", records[0].Score)
	}

	if ok, err := store.HasRecord(ctx, "T1"); err != nil || !ok {
		t.Fatalf("HasRecord(T1)=%v, %v; want true", ok, err)
	}
	if ok, err := store.HasRecord(ctx, "T404"); err != nil || ok {
		t.Fatalf("HasRecord(T404)=%v, %v; want false", ok, err)
	}
}

func TestMemoryStorage_ListByClientPeriod(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()
	ctx := context.Background()

	recs := []models.SentimentRecord{
		{SourceID: "T1", ClientID: "CL001", CreatedAt: ts(2025, 5, 30)},
		{SourceID: "T2", ClientID: "CL001", CreatedAt: ts(2025, 3, 1)},
		{SourceID: "T3", ClientID: "CL001"}, // no timestamp
		{SourceID: "T4", ClientID: "CL002", CreatedAt: ts(2025, 5, 30)},
	}
	for i := range recs {
		if err := store.SaveRecord(ctx, &recs[i]); err != nil {
			t.Fatalf("SaveRecord: %v", err)
		}
	}

	all, err := store.ListByClient(ctx, "CL001", models.Period{})
	if err != nil {
		t.Fatalf("ListByClient: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all-time list has %d records, want 3", len(all))
	}

	start := ts(2025, 5, 1)
	bounded, err := store.ListByClient(ctx, "CL001", models.Period{Start: &start})
	if err != nil {
		t.Fatalf("ListByClient: %v", err)
	}
	// The timestampless record stays included; the March one does not.
	if len(bounded) != 2 {
		t.Fatalf("bounded list has %d records, want 2", len(bounded))
	}
	for _, rec := range bounded {
		if rec.SourceID == "T2" {
			t.Fatal("record outside the period was returned")
		}
	}
}

func TestMemoryStorage_ListClientIDs(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()
	ctx := context.Background()

	for _, rec := range []models.SentimentRecord{
		{SourceID: "T1", ClientID: "CL002", CreatedAt: ts(2025, 5, 30)},
		{SourceID: "T2", ClientID: "CL001", CreatedAt: ts(2025, 5, 30)},
		{SourceID: "T3", ClientID: "CL001", CreatedAt: ts(2025, 5, 29)},
		{SourceID: "T4", CreatedAt: ts(2025, 5, 30)}, // orphan, no client
	} {
		rec := rec
		if err := store.SaveRecord(ctx, &rec); err != nil {
			t.Fatalf("SaveRecord: %v", err)
		}
	}

	ids, err := store.ListClientIDs(ctx, models.Period{})
	if err != nil {
		t.Fatalf("ListClientIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != "CL001" || ids[1] != "CL002" {
		t.Fatalf("ids=%v, want [CL001 CL002]", ids)
	}
}

func TestMemoryStorage_UpsertSummaryPerPeriod(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()
	ctx := context.Background()

	start := ts(2025, 5, 1)
	allTime := &models.ClientSentimentSummary{ClientID: "CL001", FinalScore: 0.1}
	bounded := &models.ClientSentimentSummary{ClientID: "CL001", PeriodStart: &start, FinalScore: -0.4}

	for _, sum := range []*models.ClientSentimentSummary{allTime, bounded, allTime} {
		if err := store.UpsertSummary(ctx, sum); err != nil {
			t.Fatalf("UpsertSummary: %v", err)
		}
	}

	// Distinct periods keep distinct rows; the repeated all-time write
	// replaced the first.
	if got := store.SummaryCount("CL001"); got != 2 {
		t.Fatalf("SummaryCount=%d, want 2", got)
	}

	got, err := store.GetSummary(ctx, "CL001", models.Period{Start: &start})
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if got == nil || got.FinalScore != -0.4 {
		t.Fatalf("bounded summary=%+v, want FinalScore -0.4", got)
	}

	if missing, err := store.GetSummary(ctx, "CL404", models.Period{}); err != nil || missing != nil {
		t.Fatalf("GetSummary(unknown)=%+v, %v; want nil, nil", missing, err)
	}
}
