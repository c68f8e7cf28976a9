package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/foxxcyber/nutri-scan/internal/models"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractText(imageBytes []byte) (string, error) {
	return f.text, f.err
}

type fakeCompleter struct {
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeCompleter) Name() string { return "fake" }

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.reply, f.err
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []*models.CreateAnalysisRequest
}

func (f *fakeRecorder) CreateAnalysis(ctx context.Context, req *models.CreateAnalysisRequest) (*models.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, req)
	return &models.Analysis{ID: req.ID, Status: req.Status}, nil
}

type fakeArchiver struct {
	err error
}

func (f *fakeArchiver) ArchiveLabel(ctx context.Context, analysisID uuid.UUID, upload *models.LabelUpload) (*UploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &UploadResult{Bucket: "labels", Key: LabelObjectKey(analysisID, upload.Filename, time.Now())}, nil
}

func testUpload() *models.LabelUpload {
	return &models.LabelUpload{Filename: "label.png", ContentType: "image/png", Data: []byte("png")}
}

func TestAnalyzeSuccess(t *testing.T) {
	provider := &fakeCompleter{reply: wellFormedReply}
	recorder := &fakeRecorder{}
	analyzer := NewAnalyzer(&fakeExtractor{text: "  Protein 10g  "}, provider, NewReplyParser(),
		WithRecorder(recorder, time.Hour), WithArchive(&fakeArchiver{}))

	resp, err := analyzer.Analyze(context.Background(), testUpload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.ExtractedText != "  Protein 10g  " {
		t.Errorf("extracted text: got %q", resp.ExtractedText)
	}
	if resp.GoodScore != 42 || resp.HealthRating != models.HealthRatingGood {
		t.Errorf("unexpected report: %+v", resp.NutritionReport)
	}
	if !strings.HasSuffix(provider.lastPrompt, "Protein 10g") {
		t.Errorf("prompt should end with the trimmed label text: %q", provider.lastPrompt[len(provider.lastPrompt)-20:])
	}

	if len(recorder.records) != 1 {
		t.Fatalf("expected one audit record, got %d", len(recorder.records))
	}
	rec := recorder.records[0]
	if rec.Status != models.AnalysisStatusCompleted || rec.Provider != "fake" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.SummarySource == nil || *rec.SummarySource != models.SummarySourceProvider {
		t.Errorf("summary source should be recorded as provider")
	}
	if rec.S3Key == nil || !strings.HasPrefix(*rec.S3Key, "labels/") {
		t.Errorf("archive key should be recorded, got %v", rec.S3Key)
	}
	if rec.ExpiresAt.Before(time.Now()) {
		t.Errorf("expiry should be in the future: %v", rec.ExpiresAt)
	}
}

func TestAnalyzeOCRFailure(t *testing.T) {
	provider := &fakeCompleter{reply: wellFormedReply}
	recorder := &fakeRecorder{}
	analyzer := NewAnalyzer(&fakeExtractor{err: errors.New("unreadable image")}, provider, NewReplyParser(),
		WithRecorder(recorder, time.Hour))

	_, err := analyzer.Analyze(context.Background(), testUpload())

	var ocrErr *OCRError
	if !errors.As(err, &ocrErr) {
		t.Fatalf("expected OCRError, got %v", err)
	}
	if provider.lastPrompt != "" {
		t.Error("provider must not be called when OCR fails")
	}
	if len(recorder.records) != 1 || recorder.records[0].Status != models.AnalysisStatusFailed {
		t.Errorf("failure should be recorded: %+v", recorder.records)
	}
}

func TestAnalyzeProviderFailure(t *testing.T) {
	providerErr := &ProviderError{Provider: "fake", StatusCode: 500, Body: "boom"}
	recorder := &fakeRecorder{}
	analyzer := NewAnalyzer(&fakeExtractor{text: "Sodium 5%"}, &fakeCompleter{err: providerErr}, NewReplyParser(),
		WithRecorder(recorder, time.Hour))

	resp, err := analyzer.Analyze(context.Background(), testUpload())
	if resp != nil {
		t.Error("no report may be produced when the provider fails")
	}
	if !errors.Is(err, providerErr) {
		t.Fatalf("expected provider error, got %v", err)
	}

	rec := recorder.records[0]
	if rec.ErrorMessage == nil || *rec.ErrorMessage != "Error from API: 500, boom" {
		t.Errorf("error message should be recorded, got %v", rec.ErrorMessage)
	}
}

func TestAnalyzeArchiveFailureIsNotFatal(t *testing.T) {
	recorder := &fakeRecorder{}
	analyzer := NewAnalyzer(&fakeExtractor{text: "x"}, &fakeCompleter{reply: ""}, NewReplyParser(),
		WithArchive(&fakeArchiver{err: errors.New("bucket gone")}), WithRecorder(recorder, time.Hour))

	resp, err := analyzer.Analyze(context.Background(), testUpload())
	if err != nil {
		t.Fatalf("archive failure should not fail the analysis: %v", err)
	}
	if resp.AdditivesPercentage != models.NotAvailable {
		t.Errorf("empty reply should give defaults, got %+v", resp.NutritionReport)
	}
	if recorder.records[0].S3Key != nil {
		t.Error("no archive key should be recorded when archiving fails")
	}
	if *recorder.records[0].SummarySource != models.SummarySourceFallback {
		t.Error("empty reply should use the fallback summary")
	}
}
