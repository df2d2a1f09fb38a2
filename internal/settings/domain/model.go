package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Settings is the platform-wide configuration singleton. The table never
// holds more than one row; the first write creates it and later writes
// update it in place.
type Settings struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"-"`
	PlatformName string            `gorm:"size:255" json:"platform_name"`
	LogoURL      *string           `json:"logo_url"`
	ContactPhone string            `gorm:"size:64" json:"contact_phone"`
	ContactEmail string            `gorm:"size:255" json:"contact_email"`
	SocialLinks  datatypes.JSONMap `json:"social_links"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (Settings) TableName() string { return "platform_settings" }

type UpsertRequest struct {
	PlatformName string
	// LogoURL is nil when no new logo was uploaded; the stored value is kept.
	LogoURL      *string
	ContactPhone string
	ContactEmail string
	SocialLinks  map[string]any
}

type Service interface {
	// Get returns the singleton, or built-in defaults before the first write.
	Get(ctx context.Context) (*Settings, error)
	Upsert(ctx context.Context, req UpsertRequest) (*Settings, error)
}
