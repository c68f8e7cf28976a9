package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/foxxcyber/nutri-scan/internal/database"
	"github.com/foxxcyber/nutri-scan/internal/models"
)

// AnalysisStore is the audit log as seen by the admin endpoints
type AnalysisStore interface {
	GetAnalysisByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error)
	ListAnalyses(ctx context.Context, params *models.AnalysisListParams) ([]*models.Analysis, int, error)
	GetAnalysisStats(ctx context.Context) (*models.AnalysisStats, error)
}

// ImagePresigner produces temporary download links for archived images
type ImagePresigner interface {
	GetPresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// AdminHandler serves the analysis audit log
type AdminHandler struct {
	store   AnalysisStore
	presign ImagePresigner
}

// NewAdminHandler creates a new admin handler. presign may be nil when
// image archiving is disabled.
func NewAdminHandler(store AnalysisStore, presign ImagePresigner) *AdminHandler {
	return &AdminHandler{
		store:   store,
		presign: presign,
	}
}

// ListAnalyses returns a paginated list of recorded analyses
func (h *AdminHandler) ListAnalyses(c *fiber.Ctx) error {
	params := &models.AnalysisListParams{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}

	if status := c.Query("status"); status != "" {
		params.Status = &status
	}

	if err := validate.Struct(params); err != nil {
		return Error(c, fiber.StatusBadRequest, "status must be completed or failed")
	}

	// Validate limits
	if params.Limit < 1 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	analyses, total, err := h.store.ListAnalyses(c.UserContext(), params)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list analyses")
	}

	return SuccessWithMeta(c, analyses, total, params.Limit, params.Offset)
}

// GetAnalysisStats returns aggregate outcome counts
func (h *AdminHandler) GetAnalysisStats(c *fiber.Ctx) error {
	stats, err := h.store.GetAnalysisStats(c.UserContext())
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to get analysis stats")
	}

	return Success(c, stats)
}

// GetAnalysisImage returns a presigned URL for the archived label image
func (h *AdminHandler) GetAnalysisImage(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid analysis ID")
	}

	analysis, err := h.store.GetAnalysisByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, database.ErrAnalysisNotFound) {
			return Error(c, fiber.StatusNotFound, "analysis not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get analysis")
	}

	if h.presign == nil || analysis.S3Key == nil {
		return Error(c, fiber.StatusNotFound, "no image archived for this analysis")
	}

	url, err := h.presign.GetPresignedURL(c.UserContext(), *analysis.S3Key, 1*time.Hour)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to generate image URL")
	}

	return Success(c, fiber.Map{"image_url": url})
}
