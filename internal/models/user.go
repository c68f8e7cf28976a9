package models

import (
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
)

// LoginRequest is the request body for admin login
type LoginRequest struct {
	Password string `json:"password" validate:"required,max=128"`
}

// AuthResponse is returned after successful login
type AuthResponse struct {
	Token     string    `json:"token"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
