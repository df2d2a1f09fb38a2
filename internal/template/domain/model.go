package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Template is a downloadable website template. Templates are never hard
// deleted; clearing IsActive retires them while keeping purchase history
// intact.
type Template struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	Name           string       `gorm:"size:255" json:"name"`
	Description    string       `json:"description"`
	Price          int64        `json:"price"`
	BackgroundURL  *string      `json:"background_url"`
	ZipFileURL     string       `json:"zip_file_url"`
	PreviewHTML    string       `json:"preview_html"`
	IsActive       bool         `json:"is_active"`
	DownloadsCount int64        `json:"downloads_count"`
	CreatedAt      time.Time    `json:"created_at"`
}

func (Template) TableName() string { return "templates" }

type CreateRequest struct {
	Name          string
	Description   string
	Price         int64
	BackgroundURL *string
	ZipFileURL    string
	PreviewHTML   string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Template, error)
	// ListActive returns active templates, newest first.
	ListActive(ctx context.Context) ([]Template, error)
	Get(ctx context.Context, id string) (*Template, error)
	// SoftDelete clears the active flag. Deleting an already inactive or
	// unknown template fails with ErrNotFound.
	SoftDelete(ctx context.Context, id string) error
}

// IncrementDownloads bumps a template's download counter inside the caller's
// transaction, so the bump rolls back with the purchase it belongs to.
func IncrementDownloads(ctx context.Context, tx *gorm.DB, id snowflake.ID) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE templates SET downloads_count = downloads_count + 1 WHERE id = ?`,
		id,
	).Error
}

var (
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidPrice   = errors.New("invalid_price")
	ErrMissingArchive = errors.New("missing_archive")
	ErrNotFound       = errors.New("not_found")
)
