package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prompttemplates/marketplace/internal/cache"
	"github.com/prompttemplates/marketplace/internal/clock"
	settingsdomain "github.com/prompttemplates/marketplace/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	settingsCacheKey = "singleton"
	settingsCacheTTL = time.Minute

	defaultPlatformName = "PromptTemplates"
	defaultContactPhone = "+254 700 000 000"
	defaultContactEmail = "support@prompttemplates.com"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	cached *cache.TTLCache[string, settingsdomain.Settings]
}

func NewService(p Params) settingsdomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("settings.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		cached: cache.NewTTLCache[string, settingsdomain.Settings](),
	}
}

func (s *Service) Get(ctx context.Context) (*settingsdomain.Settings, error) {
	if row, ok := s.cached.Get(settingsCacheKey); ok {
		return &row, nil
	}

	var row settingsdomain.Settings
	err := s.db.WithContext(ctx).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			defaults := settingsdomain.Settings{
				PlatformName: defaultPlatformName,
				ContactPhone: defaultContactPhone,
				ContactEmail: defaultContactEmail,
				SocialLinks:  datatypes.JSONMap{},
			}
			return &defaults, nil
		}
		return nil, err
	}

	s.cached.Set(settingsCacheKey, row, settingsCacheTTL)
	return &row, nil
}

func (s *Service) Upsert(ctx context.Context, req settingsdomain.UpsertRequest) (*settingsdomain.Settings, error) {
	now := s.clock.Now()

	var out settingsdomain.Settings
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing settingsdomain.Settings
		err := tx.First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if errors.Is(err, gorm.ErrRecordNotFound) {
			out = settingsdomain.Settings{
				ID:           s.genID.Generate(),
				PlatformName: strings.TrimSpace(req.PlatformName),
				LogoURL:      req.LogoURL,
				ContactPhone: strings.TrimSpace(req.ContactPhone),
				ContactEmail: strings.TrimSpace(req.ContactEmail),
				SocialLinks:  datatypes.JSONMap(req.SocialLinks),
				UpdatedAt:    now,
			}
			return tx.Create(&out).Error
		}

		existing.PlatformName = strings.TrimSpace(req.PlatformName)
		if req.LogoURL != nil {
			existing.LogoURL = req.LogoURL
		}
		existing.ContactPhone = strings.TrimSpace(req.ContactPhone)
		existing.ContactEmail = strings.TrimSpace(req.ContactEmail)
		existing.SocialLinks = datatypes.JSONMap(req.SocialLinks)
		existing.UpdatedAt = now

		out = existing
		return tx.Save(&existing).Error
	})
	if err != nil {
		return nil, err
	}

	s.cached.Delete(settingsCacheKey)
	s.log.Info("settings updated")
	return &out, nil
}
