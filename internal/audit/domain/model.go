package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ActorType represents who triggered an action.
type ActorType string

const (
	ActorTypeAdmin  ActorType = "admin"
	ActorTypeSystem ActorType = "system"
)

// AuditLog captures an immutable record of an admin or payment action.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey"`
	ActorType  string            `gorm:"size:16;not null"`
	ActorID    *string           `gorm:"size:64"`
	Action     string            `gorm:"size:64;not null;index"`
	TargetType string            `gorm:"size:64;not null"`
	TargetID   *string           `gorm:"size:64"`
	Metadata   datatypes.JSONMap `gorm:"not null"`
	CreatedAt  time.Time         `gorm:"not null"`
}

func (AuditLog) TableName() string { return "audit_logs" }

type Service interface {
	// Log records one action. Failures are reported but callers treat the
	// write as best-effort.
	Log(ctx context.Context, actor ActorType, actorID *string, action, targetType string, targetID *string, metadata map[string]any) error
}
