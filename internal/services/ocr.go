//go:build !windows

package services

import (
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// OCRService reads the text printed on a nutrition label
type OCRService struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewOCRService creates a new OCR service for the given tesseract language
func NewOCRService(language string) (*OCRService, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Labels are laid out as columns and tables, let tesseract segment the page
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	return &OCRService{
		client: client,
	}, nil
}

// ExtractText returns the text found in an encoded image. An image without
// readable text yields an empty string, not an error.
func (s *OCRService) ExtractText(imageBytes []byte) (string, error) {
	// The tesseract handle is stateful and shared between requests
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.client.SetImageFromBytes(imageBytes); err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	text, err := s.client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}

	return text, nil
}

// Close releases OCR resources
func (s *OCRService) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
