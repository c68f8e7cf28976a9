package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/foxxcyber/nutri-scan/internal/config"
	"github.com/foxxcyber/nutri-scan/internal/database"
	"github.com/foxxcyber/nutri-scan/internal/middleware"
	"github.com/foxxcyber/nutri-scan/internal/models"
)

type memoryStore struct {
	analyses   map[uuid.UUID]*models.Analysis
	lastParams *models.AnalysisListParams
}

func (m *memoryStore) GetAnalysisByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	a, ok := m.analyses[id]
	if !ok {
		return nil, database.ErrAnalysisNotFound
	}
	return a, nil
}

func (m *memoryStore) ListAnalyses(ctx context.Context, params *models.AnalysisListParams) ([]*models.Analysis, int, error) {
	m.lastParams = params
	list := make([]*models.Analysis, 0, len(m.analyses))
	for _, a := range m.analyses {
		list = append(list, a)
	}
	return list, len(list), nil
}

func (m *memoryStore) GetAnalysisStats(ctx context.Context) (*models.AnalysisStats, error) {
	return &models.AnalysisStats{Total: len(m.analyses)}, nil
}

type staticPresigner struct{}

func (staticPresigner) GetPresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://s3.example/" + key, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:     "test-secret",
		JWTExpiry:     time.Hour,
		AdminPassword: "letmein",
	}
}

func newAdminApp(t *testing.T, store AnalysisStore, presign ImagePresigner) *fiber.App {
	t.Helper()
	cfg := testConfig()

	authHandler, err := NewAuthHandler(cfg)
	if err != nil {
		t.Fatalf("auth handler: %v", err)
	}
	adminHandler := NewAdminHandler(store, presign)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Post("/api/auth/login", authHandler.Login)
	admin := app.Group("/api/admin", middleware.AuthRequired(cfg), middleware.AdminRequired())
	admin.Get("/analyses", adminHandler.ListAnalyses)
	admin.Get("/analyses/stats", adminHandler.GetAnalysisStats)
	admin.Get("/analyses/:id/image", adminHandler.GetAnalysisImage)
	return app
}

func login(t *testing.T, app *fiber.App, password string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":"`+password+`"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	return resp
}

func adminToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp := login(t, app, "letmein")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("login status: got %d", resp.StatusCode)
	}

	var body struct {
		Data models.AuthResponse `json:"data"`
	}
	decodeBody(t, resp, &body)
	if body.Data.Role != models.RoleAdmin || body.Data.Token == "" {
		t.Fatalf("unexpected login response: %+v", body.Data)
	}
	return body.Data.Token
}

func adminGet(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	app := newAdminApp(t, &memoryStore{}, nil)

	if resp := login(t, app, "nope"); resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", resp.StatusCode)
	}
}

func TestLoginDisabledWithoutPassword(t *testing.T) {
	cfg := testConfig()
	cfg.AdminPassword = ""
	handler, err := NewAuthHandler(cfg)
	if err != nil {
		t.Fatalf("auth handler: %v", err)
	}

	app := fiber.New()
	app.Post("/api/auth/login", handler.Login)

	if resp := login(t, app, ""); resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", resp.StatusCode)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	app := newAdminApp(t, &memoryStore{}, nil)

	if resp := adminGet(t, app, "/api/admin/analyses", ""); resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("missing token: got %d, want 401", resp.StatusCode)
	}
	if resp := adminGet(t, app, "/api/admin/analyses", "not-a-jwt"); resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("bad token: got %d, want 401", resp.StatusCode)
	}
}

func TestListAnalysesClampsLimit(t *testing.T) {
	store := &memoryStore{analyses: map[uuid.UUID]*models.Analysis{
		uuid.New(): {Status: models.AnalysisStatusCompleted},
	}}
	app := newAdminApp(t, store, nil)
	token := adminToken(t, app)

	resp := adminGet(t, app, "/api/admin/analyses?limit=500&offset=-2&status=failed", token)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}

	var body APIResponse
	decodeBody(t, resp, &body)
	if body.Meta == nil || body.Meta.Total != 1 || body.Meta.Limit != 20 || body.Meta.Offset != 0 {
		t.Errorf("unexpected meta: %+v", body.Meta)
	}
	if store.lastParams.Status == nil || *store.lastParams.Status != "failed" {
		t.Errorf("status filter not passed through: %+v", store.lastParams)
	}
}

func TestGetAnalysisImage(t *testing.T) {
	withImage := uuid.New()
	withoutImage := uuid.New()
	key := "labels/2026/10/" + withImage.String() + ".png"

	store := &memoryStore{analyses: map[uuid.UUID]*models.Analysis{
		withImage:    {ID: withImage, S3Key: &key},
		withoutImage: {ID: withoutImage},
	}}
	app := newAdminApp(t, store, staticPresigner{})
	token := adminToken(t, app)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"archived image", "/api/admin/analyses/" + withImage.String() + "/image", fiber.StatusOK},
		{"no archived image", "/api/admin/analyses/" + withoutImage.String() + "/image", fiber.StatusNotFound},
		{"unknown analysis", "/api/admin/analyses/" + uuid.NewString() + "/image", fiber.StatusNotFound},
		{"invalid id", "/api/admin/analyses/42/image", fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := adminGet(t, app, tt.path, token)
			if resp.StatusCode != tt.status {
				t.Errorf("status: got %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func TestGetAnalysisStats(t *testing.T) {
	store := &memoryStore{analyses: map[uuid.UUID]*models.Analysis{uuid.New(): {}, uuid.New(): {}}}
	app := newAdminApp(t, store, nil)

	resp := adminGet(t, app, "/api/admin/analyses/stats", adminToken(t, app))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}

	var body struct {
		Data models.AnalysisStats `json:"data"`
	}
	decodeBody(t, resp, &body)
	if body.Data.Total != 2 {
		t.Errorf("total: got %d, want 2", body.Data.Total)
	}
}

func TestRequestValidation(t *testing.T) {
	app := newAdminApp(t, &memoryStore{}, nil)

	if resp := login(t, app, ""); resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("empty password: got %d, want 400", resp.StatusCode)
	}

	resp := adminGet(t, app, "/api/admin/analyses?status=pending", adminToken(t, app))
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("unknown status filter: got %d, want 400", resp.StatusCode)
	}
}
