package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisStatus represents the outcome of a label analysis
type AnalysisStatus string

const (
	AnalysisStatusCompleted AnalysisStatus = "completed"
	AnalysisStatusFailed    AnalysisStatus = "failed"
)

// Analysis is the audit record of one analyze request.
// The report itself is never stored, only its outcome.
type Analysis struct {
	ID               uuid.UUID      `json:"id"`
	Status           AnalysisStatus `json:"status"`
	Provider         string         `json:"provider"`
	HealthRating     *HealthRating  `json:"health_rating,omitempty"`
	NetScore         *int           `json:"net_score,omitempty"`
	SummarySource    *SummarySource `json:"summary_source,omitempty"`
	OCRChars         int            `json:"ocr_chars"`
	S3Bucket         *string        `json:"s3_bucket,omitempty"`
	S3Key            *string        `json:"s3_key,omitempty"`
	OriginalFilename *string        `json:"original_filename,omitempty"`
	ContentType      *string        `json:"content_type,omitempty"`
	ErrorMessage     *string        `json:"error_message,omitempty"`
	LatencyMs        int64          `json:"latency_ms"`
	ExpiresAt        time.Time      `json:"expires_at"`
	CreatedAt        time.Time      `json:"created_at"`
}

// CreateAnalysisRequest is used when recording an analysis outcome
type CreateAnalysisRequest struct {
	ID               uuid.UUID
	Status           AnalysisStatus
	Provider         string
	HealthRating     *HealthRating
	NetScore         *int
	SummarySource    *SummarySource
	OCRChars         int
	S3Bucket         *string
	S3Key            *string
	OriginalFilename string
	ContentType      string
	ErrorMessage     *string
	LatencyMs        int64
	ExpiresAt        time.Time
}

// AnalysisListParams contains parameters for listing analyses
type AnalysisListParams struct {
	Limit  int
	Offset int
	Status *string `validate:"omitempty,oneof=completed failed"`
}

// AnalysisStats aggregates audit rows for the admin dashboard
type AnalysisStats struct {
	Total          int                  `json:"total"`
	Failed         int                  `json:"failed"`
	ByHealthRating map[HealthRating]int `json:"by_health_rating"`
	FallbackCount  int                  `json:"fallback_count"`
	AvgLatencyMs   float64              `json:"avg_latency_ms"`
}

// LabelUpload carries the uploaded image and its metadata through the pipeline
type LabelUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}
