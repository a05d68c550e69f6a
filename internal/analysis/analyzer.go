// Package analysis runs the per-conversation classification stage:
// chunked sentiment classification, conversation scoring and the
// write-once sentiment record.
package analysis

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/classifier"
	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/extractor"
	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/models"
	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/scoring"
	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/storage"
)

// Options configures the analyzer.
type Options struct {
	// ChunkSize is the character budget per classifier call.
	ChunkSize int
	// Concurrency bounds parallel classifier calls within one batch.
	Concurrency int
	// IncludeAllAuthors scores agent messages too instead of only
	// customer-authored ones.
	IncludeAllAuthors bool
	// Reanalyze re-scores conversations that already have a record.
	// Off by default: analyzed sources are skipped.
	Reanalyze bool
}

// Analyzer converts raw conversations into sentiment records.
type Analyzer struct {
	classifier classifier.Classifier
	extractor  *extractor.Extractor
	scorer     *scoring.Scorer
	records    storage.RecordStore
	logger     *zap.Logger
	opts       Options
}

func New(clf classifier.Classifier, ext *extractor.Extractor, scorer *scoring.Scorer, records storage.RecordStore, opts Options, logger *zap.Logger) *Analyzer {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = classifier.DefaultChunkSize
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 4
	}
	return &Analyzer{
		classifier: clf,
		extractor:  ext,
		scorer:     scorer,
		records:    records,
		logger:     logger,
		opts:       opts,
	}
}

// Tally is the outcome of one analysis batch.
type Tally struct {
	Processed int
	Succeeded int
	Failed    int
	Skipped   int
}

// AnalyzeConversation classifies, scores and returns the conversation's
// record. A conversation with no scorable units returns nil: it is
// excluded rather than recorded as Neutral.
func (a *Analyzer) AnalyzeConversation(ctx context.Context, conv models.Conversation, runID string) *models.SentimentRecord {
	units := a.classifyUnits(ctx, conv)

	text := extractor.CombinedText(conv, a.opts.IncludeAllAuthors)
	ext := a.extractor.Extract(conv, a.opts.IncludeAllAuthors)

	outcome := a.scorer.Score(units, ext, text)
	if outcome.Excluded {
		return nil
	}

	return &models.SentimentRecord{
		SourceID:      conv.SourceID,
		ClientID:      conv.ClientID,
		SourceKind:    conv.SourceKind,
		CreatedAt:     conv.CreatedAt,
		Label:         outcome.Label,
		Score:         outcome.Score,
		AspectScores:  outcome.AspectScores,
		IssueCategory: ext.IssueCategory,
		AnalyzedAt:    time.Now().UTC(),
		AnalysisRunID: runID,
	}
}

// classifyUnits fans classifier calls out over every chunk of every
// relevant message and joins the results back in input order before
// scoring proceeds. A failed chunk contributes nothing; other chunks
// are unaffected.
func (a *Analyzer) classifyUnits(ctx context.Context, conv models.Conversation) []classifier.Result {
	type chunkJob struct {
		index int
		text  string
	}

	var jobs []chunkJob
	for _, msg := range conv.Messages {
		if strings.TrimSpace(msg.Text) == "" {
			continue
		}
		if !a.opts.IncludeAllAuthors && msg.AuthorRole != models.AuthorRoleCustomer {
			continue
		}
		for _, chunk := range classifier.ChunkText(msg.Text, a.opts.ChunkSize) {
			jobs = append(jobs, chunkJob{index: len(jobs), text: chunk})
		}
	}
	if len(jobs) == 0 {
		return nil
	}

	results := make([]*classifier.Result, len(jobs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Concurrency)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			res, err := a.classifier.Classify(gctx, job.text)
			if err != nil {
				a.logger.Warn("Chunk classification failed, excluding",
					zap.String("source_id", conv.SourceID),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			results[job.index] = &res
			mu.Unlock()
			return nil
		})
	}
	// Workers swallow per-chunk failures, so Wait only reports context
	// cancellation; either way the joined results are what we have.
	_ = g.Wait()

	units := make([]classifier.Result, 0, len(jobs))
	for _, res := range results {
		if res != nil {
			units = append(units, *res)
		}
	}
	return units
}

// Run analyzes each conversation and stores its record. Individual
// failures never abort the batch.
func (a *Analyzer) Run(ctx context.Context, conversations []models.Conversation) Tally {
	runID := uuid.NewString()
	a.logger.Info("Starting sentiment analysis",
		zap.String("run_id", runID),
		zap.Int("conversations", len(conversations)))

	var tally Tally
	for _, conv := range conversations {
		if ctx.Err() != nil {
			break
		}
		tally.Processed++

		if !a.opts.Reanalyze {
			analyzed, err := a.records.HasRecord(ctx, conv.SourceID)
			if err != nil {
				a.logger.Error("Failed to check for existing record",
					zap.String("source_id", conv.SourceID),
					zap.Error(err))
				tally.Failed++
				continue
			}
			if analyzed {
				a.logger.Debug("Conversation already analyzed, skipping",
					zap.String("source_id", conv.SourceID))
				tally.Skipped++
				continue
			}
		}

		rec := a.AnalyzeConversation(ctx, conv, runID)
		if rec == nil {
			a.logger.Warn("No scorable customer messages, skipping",
				zap.String("source_id", conv.SourceID),
				zap.String("client_id", conv.ClientID))
			tally.Skipped++
			continue
		}

		if err := a.records.SaveRecord(ctx, rec); err != nil {
			a.logger.Error("Failed to save sentiment record",
				zap.String("source_id", conv.SourceID),
				zap.Error(err))
			tally.Failed++
			continue
		}

		a.logger.Info("Conversation analyzed",
			zap.String("source_id", conv.SourceID),
			zap.String("client_id", conv.ClientID),
			zap.String("label", string(rec.Label)),
			zap.Float64("score", rec.Score),
			zap.String("issue_category", rec.IssueCategory))
		tally.Succeeded++
	}

	a.logger.Info("Analysis completed",
		zap.String("run_id", runID),
		zap.Int("processed", tally.Processed),
		zap.Int("succeeded", tally.Succeeded),
		zap.Int("failed", tally.Failed),
		zap.Int("skipped", tally.Skipped))
	return tally
}
