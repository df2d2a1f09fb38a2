package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/prompttemplates/marketplace/internal/audit/domain"
	"github.com/prompttemplates/marketplace/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) Log(ctx context.Context, actor auditdomain.ActorType, actorID *string, action, targetType string, targetID *string, metadata map[string]any) error {
	if metadata == nil {
		metadata = map[string]any{}
	}
	row := auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		ActorType:  string(actor),
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   datatypes.JSONMap(metadata),
		CreatedAt:  s.clock.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.log.Warn("audit write failed", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}
