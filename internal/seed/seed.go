package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/prompttemplates/marketplace/internal/auth/domain"
	"github.com/prompttemplates/marketplace/internal/auth/password"
	settingsdomain "github.com/prompttemplates/marketplace/internal/settings/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin"
	defaultAdminEmail    = "admin@prompttemplates.com"

	defaultPlatformName = "PromptTemplates"
	defaultContactPhone = "+254 700 000 000"
	defaultContactEmail = "support@prompttemplates.com"
)

// EnsureDefaults seeds the bootstrap admin and settings row for first start.
// Existing rows are left alone.
func EnsureDefaults(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureAdminTx(ctx, tx, node); err != nil {
			return err
		}
		return ensureSettingsTx(ctx, tx, node)
	})
}

func ensureAdminTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var admin authdomain.Admin
	err := tx.WithContext(ctx).Where("username = ?", defaultAdminUsername).First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := password.Hash(defaultAdminPassword)
	if err != nil {
		return err
	}
	admin = authdomain.Admin{
		ID:           node.Generate(),
		Username:     defaultAdminUsername,
		PasswordHash: hashed,
		Email:        strings.ToLower(defaultAdminEmail),
		CreatedAt:    time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&admin).Error
}

func ensureSettingsTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var existing settingsdomain.Settings
	err := tx.WithContext(ctx).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	row := settingsdomain.Settings{
		ID:           node.Generate(),
		PlatformName: defaultPlatformName,
		ContactPhone: defaultContactPhone,
		ContactEmail: defaultContactEmail,
		SocialLinks:  datatypes.JSONMap{},
		UpdatedAt:    time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&row).Error
}
