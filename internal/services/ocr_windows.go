//go:build windows

package services

import (
	"errors"
)

// OCRService reads label text (stub for Windows)
type OCRService struct{}

// NewOCRService creates a new OCR service (not available on Windows)
func NewOCRService(language string) (*OCRService, error) {
	return nil, errors.New("OCR service is not available on Windows - run in Docker container")
}

// ExtractText is not available on Windows
func (s *OCRService) ExtractText(imageBytes []byte) (string, error) {
	return "", errors.New("OCR service is not available on Windows")
}

// Close releases OCR resources
func (s *OCRService) Close() error {
	return nil
}
