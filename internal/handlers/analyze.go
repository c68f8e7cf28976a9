package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/nutri-scan/internal/models"
	"github.com/foxxcyber/nutri-scan/internal/services"
)

// AnalyzeHandler handles label analysis endpoints
type AnalyzeHandler struct {
	analyzer       *services.Analyzer
	parser         *services.ReplyParser
	maxUploadBytes int64
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(analyzer *services.Analyzer, parser *services.ReplyParser, maxUploadBytes int64) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:       analyzer,
		parser:         parser,
		maxUploadBytes: maxUploadBytes,
	}
}

// Analyze handles a label image upload and returns its nutrition report
func (h *AnalyzeHandler) Analyze(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return ErrorWithDetails(c, fiber.StatusBadRequest, "No image part in the request", "")
	}

	if file.Filename == "" {
		return ErrorWithDetails(c, fiber.StatusBadRequest, "No image selected for uploading", "")
	}

	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		return ErrorWithDetails(c, fiber.StatusBadRequest, "file too large", "")
	}

	src, err := file.Open()
	if err != nil {
		return ErrorWithDetails(c, fiber.StatusInternalServerError, "Something went wrong", err.Error())
	}
	defer src.Close()

	imageBytes, err := io.ReadAll(src)
	if err != nil {
		return ErrorWithDetails(c, fiber.StatusInternalServerError, "Something went wrong", err.Error())
	}

	// Clients often send application/octet-stream or no type at all
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		contentType = http.DetectContentType(imageBytes)
	}
	if !isValidImageType(contentType) {
		return ErrorWithDetails(c, fiber.StatusBadRequest, "invalid image type. Supported: JPEG, PNG, WebP, TIFF, BMP", "")
	}

	result, err := h.analyzer.Analyze(c.UserContext(), &models.LabelUpload{
		Filename:    file.Filename,
		ContentType: contentType,
		Data:        imageBytes,
	})
	if err != nil {
		var providerErr *services.ProviderError
		if errors.As(err, &providerErr) {
			log.Printf("Warning: Provider call failed: %v", err)
			return ErrorWithDetails(c, fiber.StatusBadGateway, "Text generation provider failed", err.Error())
		}
		log.Printf("Warning: Label analysis failed: %v", err)
		return ErrorWithDetails(c, fiber.StatusInternalServerError, "Something went wrong", err.Error())
	}

	return c.JSON(result)
}

// ParseReply runs a raw provider reply through the parser and returns the report
func (h *AnalyzeHandler) ParseReply(c *fiber.Ctx) error {
	reply := string(c.Body())
	if strings.TrimSpace(reply) == "" {
		return ErrorWithDetails(c, fiber.StatusBadRequest, "reply text is required", "")
	}

	report, source := h.parser.BuildReport(reply)
	c.Set("X-Summary-Source", string(source))

	return c.JSON(report)
}

func isValidImageType(contentType string) bool {
	validTypes := []string{
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/webp",
		"image/tiff",
		"image/bmp",
	}

	for _, t := range validTypes {
		if strings.EqualFold(contentType, t) {
			return true
		}
	}
	return false
}
