package aggregator

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/models"
	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/storage"
)

// Tally is the run-level outcome of a batch aggregation.
type Tally struct {
	Processed int
	Succeeded int
	Failed    int
	Skipped   int
}

// Runner executes the per-client aggregation batch. Clients are
// independent, so the batch parallelizes across clients while each
// client's own aggregation stays single-pass.
type Runner struct {
	store      storage.Storage
	aggregator *Aggregator
	logger     *zap.Logger
	workers    int

	mu    sync.Mutex
	tally Tally
}

// NewRunner creates a batch runner. workers bounds cross-client
// parallelism; values below 1 mean sequential processing.
func NewRunner(store storage.Storage, agg *Aggregator, workers int, logger *zap.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		store:      store,
		aggregator: agg,
		logger:     logger,
		workers:    workers,
	}
}

// Run aggregates every client in clientIDs for the period. A single
// client's failure never aborts the batch; the returned error only
// reflects context cancellation. Callers decide the exit code from the
// tally.
func (r *Runner) Run(ctx context.Context, clientIDs []string, period models.Period) (Tally, error) {
	r.mu.Lock()
	r.tally = Tally{}
	r.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, clientID := range clientIDs {
		clientID := clientID
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r.processClient(ctx, clientID, period)
			return nil
		})
	}

	err := g.Wait()

	r.mu.Lock()
	tally := r.tally
	r.mu.Unlock()

	r.logger.Info("Aggregation completed",
		zap.Int("processed", tally.Processed),
		zap.Int("succeeded", tally.Succeeded),
		zap.Int("failed", tally.Failed),
		zap.Int("skipped", tally.Skipped))

	return tally, err
}

// RunAll aggregates every client that has qualifying records in the
// period.
func (r *Runner) RunAll(ctx context.Context, period models.Period) (Tally, error) {
	clientIDs, err := r.store.ListClientIDs(ctx, period)
	if err != nil {
		return Tally{}, fmt.Errorf("error listing clients: %w", err)
	}
	if len(clientIDs) == 0 {
		r.logger.Warn("No clients with analyzed records found")
		return Tally{}, nil
	}

	r.logger.Info("Starting client aggregation", zap.Int("clients", len(clientIDs)))
	return r.Run(ctx, clientIDs, period)
}

func (r *Runner) processClient(ctx context.Context, clientID string, period models.Period) {
	records, err := r.store.ListByClient(ctx, clientID, period)
	if err != nil {
		r.logger.Error("Failed to fetch records",
			zap.String("client_id", clientID),
			zap.Error(err))
		r.count(func(t *Tally) { t.Processed++; t.Failed++ })
		return
	}

	summary := r.aggregator.Aggregate(clientID, records, period)
	if summary == nil {
		r.logger.Warn("No analyzed records for client, skipping",
			zap.String("client_id", clientID))
		r.count(func(t *Tally) { t.Processed++; t.Skipped++ })
		return
	}

	if err := r.store.UpsertSummary(ctx, summary); err != nil {
		r.logger.Error("Failed to save client summary",
			zap.String("client_id", clientID),
			zap.Error(err))
		r.count(func(t *Tally) { t.Processed++; t.Failed++ })
		return
	}

	r.logger.Info("Client aggregated",
		zap.String("client_id", clientID),
		zap.String("category", string(summary.Category)),
		zap.Float64("score", summary.FinalScore),
		zap.Int("records", summary.TotalRecords))
	r.count(func(t *Tally) { t.Processed++; t.Succeeded++ })
}

func (r *Runner) count(update func(*Tally)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	update(&r.tally)
}
