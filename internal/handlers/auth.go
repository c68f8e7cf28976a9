package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/foxxcyber/nutri-scan/internal/config"
	"github.com/foxxcyber/nutri-scan/internal/middleware"
	"github.com/foxxcyber/nutri-scan/internal/models"
)

// AuthHandler issues admin tokens
type AuthHandler struct {
	cfg       *config.Config
	adminHash []byte
}

// NewAuthHandler creates a new auth handler. Login is disabled when no
// admin password is configured.
func NewAuthHandler(cfg *config.Config) (*AuthHandler, error) {
	h := &AuthHandler{cfg: cfg}
	if cfg.AdminPassword == "" {
		return h, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	h.adminHash = hash

	return h, nil
}

// Login exchanges the admin password for a JWT
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	if h.adminHash == nil {
		return Error(c, fiber.StatusServiceUnavailable, "admin login is disabled")
	}

	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return Error(c, fiber.StatusBadRequest, "password is required")
	}

	if err := bcrypt.CompareHashAndPassword(h.adminHash, []byte(req.Password)); err != nil {
		return Error(c, fiber.StatusUnauthorized, "invalid credentials")
	}

	expiresAt := time.Now().Add(h.cfg.JWTExpiry)
	token, err := h.generateToken(expiresAt)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to generate token")
	}

	return Success(c, models.AuthResponse{
		Token:     token,
		Role:      models.RoleAdmin,
		ExpiresAt: expiresAt,
	})
}

func (h *AuthHandler) generateToken(expiresAt time.Time) (string, error) {
	claims := middleware.JWTClaims{
		Role: models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   "admin",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}
