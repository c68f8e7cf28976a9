package database

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/foxxcyber/nutri-scan/internal/models"
)

var ErrAnalysisNotFound = errors.New("analysis not found")

const analysisColumns = `
	id, status, provider, health_rating, net_score, summary_source, ocr_chars,
	s3_bucket, s3_key, original_filename, content_type, error_message, latency_ms,
	expires_at, created_at`

func scanAnalysis(row pgx.Row) (*models.Analysis, error) {
	a := &models.Analysis{}
	err := row.Scan(
		&a.ID, &a.Status, &a.Provider, &a.HealthRating, &a.NetScore, &a.SummarySource, &a.OCRChars,
		&a.S3Bucket, &a.S3Key, &a.OriginalFilename, &a.ContentType, &a.ErrorMessage, &a.LatencyMs,
		&a.ExpiresAt, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CreateAnalysis records the outcome of an analyze request
func (db *DB) CreateAnalysis(ctx context.Context, req *models.CreateAnalysisRequest) (*models.Analysis, error) {
	row := db.Pool.QueryRow(ctx, `
		INSERT INTO analyses (id, status, provider, health_rating, net_score, summary_source, ocr_chars,
		                      s3_bucket, s3_key, original_filename, content_type, error_message, latency_ms, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+analysisColumns,
		req.ID, req.Status, req.Provider, req.HealthRating, req.NetScore, req.SummarySource, req.OCRChars,
		req.S3Bucket, req.S3Key, nullIfEmpty(req.OriginalFilename), nullIfEmpty(req.ContentType), req.ErrorMessage,
		req.LatencyMs, req.ExpiresAt,
	)
	return scanAnalysis(row)
}

// GetAnalysisByID retrieves an analysis by ID
func (db *DB) GetAnalysisByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+analysisColumns+` FROM analyses WHERE id = $1`, id)

	analysis, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAnalysisNotFound
		}
		return nil, err
	}
	return analysis, nil
}

// ListAnalyses returns a paginated list of analyses, newest first
func (db *DB) ListAnalyses(ctx context.Context, params *models.AnalysisListParams) ([]*models.Analysis, int, error) {
	var args []interface{}
	whereClause := ""

	if params.Status != nil && *params.Status != "" {
		args = append(args, *params.Status)
		whereClause = "WHERE status = $1"
	}

	// Get total count
	var total int
	err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM analyses "+whereClause, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	limitArg := strconv.Itoa(len(args) + 1)
	offsetArg := strconv.Itoa(len(args) + 2)
	args = append(args, params.Limit, params.Offset)

	rows, err := db.Pool.Query(ctx, `
		SELECT `+analysisColumns+`
		FROM analyses
		`+whereClause+`
		ORDER BY created_at DESC
		LIMIT $`+limitArg+` OFFSET $`+offsetArg, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	analyses := []*models.Analysis{}
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, 0, err
		}
		analyses = append(analyses, analysis)
	}

	return analyses, total, rows.Err()
}

// GetAnalysisStats aggregates outcomes across all recorded analyses
func (db *DB) GetAnalysisStats(ctx context.Context) (*models.AnalysisStats, error) {
	stats := &models.AnalysisStats{
		ByHealthRating: map[models.HealthRating]int{},
	}

	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'failed'),
		       COUNT(*) FILTER (WHERE summary_source = 'fallback'),
		       COALESCE(AVG(latency_ms), 0)
		FROM analyses
	`).Scan(&stats.Total, &stats.Failed, &stats.FallbackCount, &stats.AvgLatencyMs)
	if err != nil {
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, `
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
func (db *DB) CleanupExpiredAnalyses(ctx context.Context) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `
		DELETE FROM analyses WHERE expires_at < NOW()
		RETURNING s3_key
	`)
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

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
