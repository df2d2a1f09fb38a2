package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/prompttemplates/marketplace/internal/auth/domain"
	"github.com/prompttemplates/marketplace/internal/auth/password"
	"github.com/prompttemplates/marketplace/internal/clock"
	"github.com/prompttemplates/marketplace/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Cfg   config.Config
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	cfg   config.Config
}

func NewService(p Params) authdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("auth.service"),
		genID: p.GenID,
		clock: p.Clock,
		cfg:   p.Cfg,
	}
}

func (s *Service) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, authdomain.ErrInvalidCredentials
	}

	var admin authdomain.Admin
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authdomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(req.Password, admin.PasswordHash) {
		s.log.Warn("login rejected", zap.String("username", username))
		return nil, authdomain.ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := authdomain.Session{
		ID:        s.genID.Generate(),
		AdminID:   admin.ID,
		TokenHash: hashToken(token),
		ExpiresAt: now.Add(s.cfg.SessionTTL),
		CreatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		return tx.Model(&authdomain.Admin{}).
			Where("id = ?", admin.ID).
			Update("last_login", now).Error
	})
	if err != nil {
		return nil, err
	}

	return &authdomain.LoginResponse{
		Token:    token,
		Username: admin.Username,
		Email:    admin.Email,
	}, nil
}

func (s *Service) Validate(ctx context.Context, token string) (*authdomain.Admin, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, authdomain.ErrUnauthorized
	}

	hash := hashToken(token)
	now := s.clock.Now()

	var record struct {
		AdminID   snowflake.ID `gorm:"column:admin_id"`
		TokenHash string       `gorm:"column:token_hash"`
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT admin_id, token_hash
		 FROM admin_sessions
		 WHERE token_hash = ? AND expires_at > ?
		 LIMIT 1`,
		hash,
		now,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}

	if record.AdminID == 0 || subtle.ConstantTimeCompare([]byte(record.TokenHash), []byte(hash)) != 1 {
		return nil, authdomain.ErrUnauthorized
	}

	var admin authdomain.Admin
	if err := s.db.WithContext(ctx).First(&admin, "id = ?", record.AdminID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authdomain.ErrUnauthorized
		}
		return nil, err
	}
	return &admin, nil
}

func newToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
