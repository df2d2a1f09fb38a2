package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Admin is a back-office operator. Rows are managed out of band (seeded or
// created directly in the database).
type Admin struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Username     string       `gorm:"uniqueIndex;size:64" json:"username"`
	PasswordHash string       `json:"-"`
	Email        string       `json:"email"`
	LastLogin    *time.Time   `json:"last_login,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (Admin) TableName() string { return "admins" }

// Session is a live bearer credential. Only the SHA-256 of the token is
// stored; the plaintext leaves the process once, in the login response.
type Session struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	AdminID   snowflake.ID `gorm:"index"`
	TokenHash string       `gorm:"uniqueIndex;size:64"`
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (Session) TableName() string { return "admin_sessions" }

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	// Validate resolves a bearer token to its admin, or fails with
	// ErrUnauthorized for unknown and expired tokens alike.
	Validate(ctx context.Context, token string) (*Admin, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)
