package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/foxxcyber/nutri-scan/internal/models"
)

// TextExtractor reads the text printed on a label image
type TextExtractor interface {
	ExtractText(imageBytes []byte) (string, error)
}

// LabelArchiver stores uploaded label images
type LabelArchiver interface {
	ArchiveLabel(ctx context.Context, analysisID uuid.UUID, upload *models.LabelUpload) (*UploadResult, error)
}

// AnalysisRecorder keeps an audit trail of analysis outcomes
type AnalysisRecorder interface {
	CreateAnalysis(ctx context.Context, req *models.CreateAnalysisRequest) (*models.Analysis, error)
}

// OCRError is returned when the label image could not be read
type OCRError struct {
	Err error
}

func (e *OCRError) Error() string {
	return fmt.Sprintf("failed to read label: %v", e.Err)
}

func (e *OCRError) Unwrap() error {
	return e.Err
}

// Analyzer runs a label image through OCR, the provider and the reply parser
type Analyzer struct {
	ocr       TextExtractor
	provider  Completer
	parser    *ReplyParser
	archive   LabelArchiver
	recorder  AnalysisRecorder
	retention time.Duration
	debug     bool
}

// AnalyzerOption configures optional Analyzer collaborators
type AnalyzerOption func(*Analyzer)

// WithArchive stores every uploaded image
func WithArchive(archive LabelArchiver) AnalyzerOption {
	return func(a *Analyzer) { a.archive = archive }
}

// WithRecorder records the outcome of every analysis, kept for retention
func WithRecorder(recorder AnalysisRecorder, retention time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		a.recorder = recorder
		a.retention = retention
	}
}

// WithDebugLogging logs OCR text and raw provider replies
func WithDebugLogging(enabled bool) AnalyzerOption {
	return func(a *Analyzer) { a.debug = enabled }
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(ocr TextExtractor, provider Completer, parser *ReplyParser, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		ocr:       ocr,
		provider:  provider,
		parser:    parser,
		retention: 7 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze produces a nutrition report for an uploaded label. Errors are only
// returned when OCR or the provider call fails; once a reply is received the
// report is always complete.
func (a *Analyzer) Analyze(ctx context.Context, upload *models.LabelUpload) (*models.AnalyzeResponse, error) {
	start := time.Now()
	record := &models.CreateAnalysisRequest{
		ID:               uuid.New(),
		Provider:         a.provider.Name(),
		OriginalFilename: upload.Filename,
		ContentType:      upload.ContentType,
	}

	if a.archive != nil {
		result, err := a.archive.ArchiveLabel(ctx, record.ID, upload)
		if err != nil {
			log.Printf("Warning: Failed to archive label image for analysis %s: %v", record.ID, err)
		} else {
			record.S3Bucket = &result.Bucket
			record.S3Key = &result.Key
		}
	}

	text, err := a.ocr.ExtractText(upload.Data)
	if err != nil {
		ocrErr := &OCRError{Err: err}
		a.recordFailure(ctx, record, start, ocrErr)
		return nil, ocrErr
	}
	record.OCRChars = len(text)
	if a.debug {
		log.Printf("Extracted text for analysis %s:\n%s", record.ID, text)
	}

	reply, err := a.provider.Complete(ctx, BuildPrompt(text))
	if err != nil {
		a.recordFailure(ctx, record, start, err)
		return nil, err
	}
	if a.debug {
		log.Printf("Provider reply for analysis %s:\n%s", record.ID, reply)
	}

	report, source := a.parser.BuildReport(reply)

	record.Status = models.AnalysisStatusCompleted
	record.HealthRating = &report.HealthRating
	record.NetScore = &report.NetScore
	record.SummarySource = &source
	a.record(ctx, record, start)

	return &models.AnalyzeResponse{
		NutritionReport: report,
		ExtractedText:   text,
	}, nil
}

func (a *Analyzer) recordFailure(ctx context.Context, record *models.CreateAnalysisRequest, start time.Time, cause error) {
	msg := cause.Error()
	record.Status = models.AnalysisStatusFailed
	record.ErrorMessage = &msg
	a.record(ctx, record, start)
}

func (a *Analyzer) record(ctx context.Context, record *models.CreateAnalysisRequest, start time.Time) {
	if a.recorder == nil {
		return
	}
	record.LatencyMs = time.Since(start).Milliseconds()
	record.ExpiresAt = time.Now().Add(a.retention)

	if _, err := a.recorder.CreateAnalysis(context.WithoutCancel(ctx), record); err != nil {
		log.Printf("Warning: Failed to record analysis %s: %v", record.ID, err)
	}
}
