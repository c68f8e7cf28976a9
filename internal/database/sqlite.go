package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/foxxcyber/nutri-scan/internal/models"
)

// sqliteTimeLayout is fixed width so stored timestamps sort as text
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore keeps the analysis audit log in a local SQLite file
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the audit log at path. Use ":memory:" for
// a throwaway store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		provider TEXT NOT NULL,
		health_rating TEXT,
		net_score INTEGER,
		summary_source TEXT,
		ocr_chars INTEGER NOT NULL DEFAULT 0,
		s3_bucket TEXT,
		s3_key TEXT,
		original_filename TEXT,
		content_type TEXT,
		error_message TEXT,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
	CREATE INDEX IF NOT EXISTS idx_analyses_expires_at ON analyses(expires_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func sqliteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

// sqlValue unwraps an optional column value, nil becomes NULL
func sqlValue[T ~string | ~int](v *T) any {
	if v == nil {
		return nil
	}
	switch val := any(*v).(type) {
	case int:
		return int64(val)
	default:
		return fmt.Sprint(val)
	}
}

func scanSQLiteAnalysis(scan func(dest ...any) error) (*models.Analysis, error) {
	a := &models.Analysis{}
	var id, expiresAt, createdAt string

	err := scan(
		&id, &a.Status, &a.Provider, &a.HealthRating, &a.NetScore, &a.SummarySource, &a.OCRChars,
		&a.S3Bucket, &a.S3Key, &a.OriginalFilename, &a.ContentType, &a.ErrorMessage, &a.LatencyMs,
		&expiresAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if a.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid analysis id %q: %w", id, err)
	}
	if a.ExpiresAt, err = time.Parse(sqliteTimeLayout, expiresAt); err != nil {
		return nil, fmt.Errorf("invalid expires_at %q: %w", expiresAt, err)
	}
	if a.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	return a, nil
}

// CreateAnalysis records the outcome of an analyze request
func (s *SQLiteStore) CreateAnalysis(ctx context.Context, req *models.CreateAnalysisRequest) (*models.Analysis, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analyses (id, status, provider, health_rating, net_score, summary_source, ocr_chars,
		                      s3_bucket, s3_key, original_filename, content_type, error_message, latency_ms,
		                      expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID.String(), string(req.Status), req.Provider, sqlValue(req.HealthRating), sqlValue(req.NetScore),
		sqlValue(req.SummarySource), req.OCRChars, sqlValue(req.S3Bucket), sqlValue(req.S3Key),
		sqlValue(nullIfEmpty(req.OriginalFilename)), sqlValue(nullIfEmpty(req.ContentType)), sqlValue(req.ErrorMessage),
		req.LatencyMs, sqliteTime(req.ExpiresAt), sqliteTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert analysis: %w", err)
	}

	return s.GetAnalysisByID(ctx, req.ID)
}

// GetAnalysisByID retrieves an analysis by ID
func (s *SQLiteStore) GetAnalysisByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+analysisColumns+` FROM analyses WHERE id = ?`, id.String())

	analysis, err := scanSQLiteAnalysis(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAnalysisNotFound
		}
		return nil, err
	}
	return analysis, nil
}

// ListAnalyses returns a paginated list of analyses, newest first
func (s *SQLiteStore) ListAnalyses(ctx context.Context, params *models.AnalysisListParams) ([]*models.Analysis, int, error) {
	var args []interface{}
	whereClause := ""

	if params.Status != nil && *params.Status != "" {
		args = append(args, *params.Status)
		whereClause = "WHERE status = ?"
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM analyses "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit, params.Offset)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+analysisColumns+`
		FROM analyses
		`+whereClause+`
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	analyses := []*models.Analysis{}
	for rows.Next() {
		analysis, err := scanSQLiteAnalysis(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		analyses = append(analyses, analysis)
	}

	return analyses, total, rows.Err()
}

// GetAnalysisStats aggregates outcomes across all recorded analyses
func (s *SQLiteStore) GetAnalysisStats(ctx context.Context) (*models.AnalysisStats, error) {
	stats := &models.AnalysisStats{
		ByHealthRating: map[models.HealthRating]int{},
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'failed'),
		       COUNT(*) FILTER (WHERE summary_source = 'fallback'),
		       COALESCE(AVG(latency_ms), 0.0)
		FROM analyses
	`).Scan(&stats.Total, &stats.Failed, &stats.FallbackCount, &stats.AvgLatencyMs)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT health_rating, COUNT(*)
		FROM analyses
		WHERE health_rating IS NOT NULL
		GROUP BY health_rating
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rating models.HealthRating
		var count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, err
		}
		stats.ByHealthRating[rating] = count
	}

	return stats, rows.Err()
}

// CleanupExpiredAnalyses deletes analyses past their expiration date and returns S3 keys to delete
func (s *SQLiteStore) CleanupExpiredAnalyses(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		DELETE FROM analyses WHERE expires_at < ?
		RETURNING s3_key
	`, sqliteTime(time.Now()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key *string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		if key != nil {
			keys = append(keys, *key)
		}
	}

	return keys, rows.Err()
}
