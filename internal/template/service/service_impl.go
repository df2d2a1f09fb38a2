package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prompttemplates/marketplace/internal/cache"
	"github.com/prompttemplates/marketplace/internal/clock"
	templatedomain "github.com/prompttemplates/marketplace/internal/template/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	catalogCacheKey = "active"
	catalogCacheTTL = 30 * time.Second
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	catalog *cache.TTLCache[string, []templatedomain.Template]
}

func NewService(p Params) templatedomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("template.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		catalog: cache.NewTTLCache[string, []templatedomain.Template](),
	}
}

func (s *Service) Create(ctx context.Context, req templatedomain.CreateRequest) (*templatedomain.Template, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, templatedomain.ErrInvalidName
	}
	if req.Price <= 0 {
		return nil, templatedomain.ErrInvalidPrice
	}
	if strings.TrimSpace(req.ZipFileURL) == "" {
		return nil, templatedomain.ErrMissingArchive
	}

	row := templatedomain.Template{
		ID:            s.genID.Generate(),
		Name:          name,
		Description:   strings.TrimSpace(req.Description),
		Price:         req.Price,
		BackgroundURL: req.BackgroundURL,
		ZipFileURL:    req.ZipFileURL,
		PreviewHTML:   req.PreviewHTML,
		IsActive:      true,
		CreatedAt:     s.clock.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}

	s.catalog.Flush()
	s.log.Info("template created", zap.String("template_id", row.ID.String()), zap.Int64("price", row.Price))
	return &row, nil
}

func (s *Service) ListActive(ctx context.Context) ([]templatedomain.Template, error) {
	if cached, ok := s.catalog.Get(catalogCacheKey); ok {
		return cached, nil
	}

	var rows []templatedomain.Template
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	s.catalog.Set(catalogCacheKey, rows, catalogCacheTTL)
	return rows, nil
}

func (s *Service) Get(ctx context.Context, id string) (*templatedomain.Template, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, templatedomain.ErrInvalidID
	}

	var row templatedomain.Template
	if err := s.db.WithContext(ctx).First(&row, "id = ?", parsed).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, templatedomain.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (s *Service) SoftDelete(ctx context.Context, id string) error {
	parsed, err := parseID(id)
	if err != nil {
		return templatedomain.ErrInvalidID
	}

	result := s.db.WithContext(ctx).
		Model(&templatedomain.Template{}).
		Where("id = ? AND is_active = ?", parsed, true).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return templatedomain.ErrNotFound
	}

	s.catalog.Flush()
	s.log.Info("template retired", zap.String("template_id", parsed.String()))
	return nil
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
