package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db}

	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	return nil
}

func (s *PostgresStorage) SaveRecord(ctx context.Context, rec *models.SentimentRecord) error {
	aspects, err := marshalAspects(rec.AspectScores)
	if err != nil {
		return fmt.Errorf("error encoding aspect scores: %w", err)
	}

	query := `
		INSERT INTO sentiment_records
			(source_id, client_id, source_kind, created_at, label, score,
			 aspect_scores, issue_category, analyzed_at, analysis_run_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (source_id) DO UPDATE SET
			client_id = EXCLUDED.client_id,
			source_kind = EXCLUDED.source_kind,
			created_at = EXCLUDED.created_at,
			label = EXCLUDED.label,
			score = EXCLUDED.score,
			aspect_scores = EXCLUDED.aspect_scores,
			issue_category = EXCLUDED.issue_category,
			analyzed_at = EXCLUDED.analyzed_at,
			analysis_run_id = EXCLUDED.analysis_run_id`

	_, err = s.db.ExecContext(ctx, query,
		rec.SourceID,
		rec.ClientID,
		string(rec.SourceKind),
		nullableTime(rec.CreatedAt),
		string(rec.Label),
		rec.Score,
		aspects,
		nullableString(rec.IssueCategory),
		rec.AnalyzedAt,
		nullableString(rec.AnalysisRunID),
	)
	if err != nil {
		return fmt.Errorf("error saving sentiment record: %w", err)
	}

	return nil
}

func (s *PostgresStorage) ListByClient(ctx context.Context, clientID string, period models.Period) ([]models.SentimentRecord, error) {
	query := `
		SELECT source_id, client_id, source_kind, created_at, label, score,
		       aspect_scores, issue_category, analyzed_at, analysis_run_id
		FROM sentiment_records
		WHERE client_id = $1`
	args := []any{clientID}

	// Rows with an unknown created_at stay in scope; they fall back to a
	// neutral recency weight during aggregation.
	if period.Start != nil {
		args = append(args, *period.Start)
		query += fmt.Sprintf(" AND (created_at IS NULL OR created_at >= $%d)", len(args))
	}
	if period.End != nil {
		args = append(args, *period.End)
		query += fmt.Sprintf(" AND (created_at IS NULL OR created_at <= $%d)", len(args))
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying records: %w", err)
	}
	defer rows.Close()

	var records []models.SentimentRecord
	for rows.Next() {
		var (
			rec       models.SentimentRecord
			kind      string
			label     string
			createdAt sql.NullTime
			aspects   []byte
			category  sql.NullString
			runID     sql.NullString
		)
		err := rows.Scan(
			&rec.SourceID,
			&rec.ClientID,
			&kind,
			&createdAt,
			&label,
			&rec.Score,
			&aspects,
			&category,
			&rec.AnalyzedAt,
			&runID,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning record: %w", err)
		}

		rec.SourceKind = models.SourceKind(kind)
		rec.Label = models.ParseLabel(label)
		if createdAt.Valid {
			rec.CreatedAt = createdAt.Time
		}
		rec.IssueCategory = category.String
		rec.AnalysisRunID = runID.String
		if len(aspects) > 0 {
			// A malformed aspect map is ignored rather than failing the
			// whole listing; upstream data quality is not guaranteed.
			_ = json.Unmarshal(aspects, &rec.AspectScores)
		}

		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *PostgresStorage) HasRecord(ctx context.Context, sourceID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM sentiment_records WHERE source_id = $1)`,
		sourceID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking record existence: %w", err)
	}
	return exists, nil
}

func (s *PostgresStorage) ListClientIDs(ctx context.Context, period models.Period) ([]string, error) {
	query := `SELECT DISTINCT client_id FROM sentiment_records WHERE client_id <> ''`
	args := []any{}

	if period.Start != nil {
		args = append(args, *period.Start)
		query += fmt.Sprintf(" AND (created_at IS NULL OR created_at >= $%d)", len(args))
	}
	if period.End != nil {
		args = append(args, *period.End)
		query += fmt.Sprintf(" AND (created_at IS NULL OR created_at <= $%d)", len(args))
	}
	query += " ORDER BY client_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying client ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning client id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStorage) UpsertSummary(ctx context.Context, summary *models.ClientSentimentSummary) error {
	if summary.PeriodStart == nil && summary.PeriodEnd == nil {
		return s.replaceAllTimeSummary(ctx, summary)
	}

	aspects, err := marshalAspects(summary.AspectSentiment)
	if err != nil {
		return fmt.Errorf("error encoding aspect sentiment: %w", err)
	}

	query := `
		INSERT INTO client_sentiment_summary
			(client_id, period_start, period_end, total_records,
			 positive_count, negative_count, neutral_count, mixed_count,
			 positive_percentage, negative_percentage, neutral_percentage,
			 final_score, category, aspect_sentiment,
			 negative_aspects_summary, conclusion, last_calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (client_id, period_start, period_end) DO UPDATE SET
			total_records = EXCLUDED.total_records,
			positive_count = EXCLUDED.positive_count,
			negative_count = EXCLUDED.negative_count,
			neutral_count = EXCLUDED.neutral_count,
			mixed_count = EXCLUDED.mixed_count,
			positive_percentage = EXCLUDED.positive_percentage,
			negative_percentage = EXCLUDED.negative_percentage,
			neutral_percentage = EXCLUDED.neutral_percentage,
			final_score = EXCLUDED.final_score,
			category = EXCLUDED.category,
			aspect_sentiment = EXCLUDED.aspect_sentiment,
			negative_aspects_summary = EXCLUDED.negative_aspects_summary,
			conclusion = EXCLUDED.conclusion,
			last_calculated_at = EXCLUDED.last_calculated_at`

	_, err = s.db.ExecContext(ctx, query, summaryArgs(summary, aspects)...)
	if err != nil {
		return fmt.Errorf("error upserting summary: %w", err)
	}
	return nil
}

// replaceAllTimeSummary handles the NULL-bounded period key. ON CONFLICT
// does not fire on NULL compound keys, so the row is deleted and
// reinserted inside one transaction.
func (s *PostgresStorage) replaceAllTimeSummary(ctx context.Context, summary *models.ClientSentimentSummary) error {
	aspects, err := marshalAspects(summary.AspectSentiment)
	if err != nil {
		return fmt.Errorf("error encoding aspect sentiment: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM client_sentiment_summary
		WHERE client_id = $1 AND period_start IS NULL AND period_end IS NULL`,
		summary.ClientID)
	if err != nil {
		return fmt.Errorf("error deleting all-time summary: %w", err)
	}

	query := `
		INSERT INTO client_sentiment_summary
			(client_id, period_start, period_end, total_records,
			 positive_count, negative_count, neutral_count, mixed_count,
			 positive_percentage, negative_percentage, neutral_percentage,
			 final_score, category, aspect_sentiment,
			 negative_aspects_summary, conclusion, last_calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	if _, err := tx.ExecContext(ctx, query, summaryArgs(summary, aspects)...); err != nil {
		return fmt.Errorf("error inserting all-time summary: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing all-time summary: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetSummary(ctx context.Context, clientID string, period models.Period) (*models.ClientSentimentSummary, error) {
	query := `
		SELECT client_id, period_start, period_end, total_records,
		       positive_count, negative_count, neutral_count, mixed_count,
		       positive_percentage, negative_percentage, neutral_percentage,
		       final_score, category, aspect_sentiment,
		       negative_aspects_summary, conclusion, last_calculated_at
		FROM client_sentiment_summary
		WHERE client_id = $1`
	args := []any{clientID}

	if period.Start == nil {
		query += " AND period_start IS NULL"
	} else {
		args = append(args, *period.Start)
		query += fmt.Sprintf(" AND period_start = $%d", len(args))
	}
	if period.End == nil {
		query += " AND period_end IS NULL"
	} else {
		args = append(args, *period.End)
		query += fmt.Sprintf(" AND period_end = $%d", len(args))
	}

	row := s.db.QueryRowContext(ctx, query, args...)

	var (
		sum      models.ClientSentimentSummary
		start    sql.NullTime
		end      sql.NullTime
		category string
		aspects  []byte
		negative sql.NullString
	)
	err := row.Scan(
		&sum.ClientID, &start, &end, &sum.TotalRecords,
		&sum.PositiveCount, &sum.NegativeCount, &sum.NeutralCount, &sum.MixedCount,
		&sum.PositivePercentage, &sum.NegativePercentage, &sum.NeutralPercentage,
		&sum.FinalScore, &category, &aspects,
		&negative, &sum.Conclusion, &sum.LastCalculatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying summary: %w", err)
	}

	if start.Valid {
		t := start.Time
		sum.PeriodStart = &t
	}
	if end.Valid {
		t := end.Time
		sum.PeriodEnd = &t
	}
	sum.Category = models.ParseLabel(category)
	sum.NegativeAspectsSummary = negative.String
	if len(aspects) > 0 {
		_ = json.Unmarshal(aspects, &sum.AspectSentiment)
	}

	return &sum, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func summaryArgs(summary *models.ClientSentimentSummary, aspects []byte) []any {
	return []any{
		summary.ClientID,
		nullableTimePtr(summary.PeriodStart),
		nullableTimePtr(summary.PeriodEnd),
		summary.TotalRecords,
		summary.PositiveCount,
		summary.NegativeCount,
		summary.NeutralCount,
		summary.MixedCount,
		summary.PositivePercentage,
		summary.NegativePercentage,
		summary.NeutralPercentage,
		summary.FinalScore,
		string(summary.Category),
		aspects,
		nullableString(summary.NegativeAspectsSummary),
		summary.Conclusion,
		summary.LastCalculatedAt,
	}
}

func marshalAspects(aspects map[string]float64) ([]byte, error) {
	if len(aspects) == 0 {
		return nil, nil
	}
	return json.Marshal(aspects)
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nullableTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
