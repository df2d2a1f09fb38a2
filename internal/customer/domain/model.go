package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Customer is created lazily on a first successful purchase and never
// deleted. Email is the natural key for upserts.
type Customer struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Email     string       `gorm:"uniqueIndex;size:255" json:"email"`
	Phone     string       `gorm:"size:32" json:"phone"`
	FullName  string       `gorm:"size:255" json:"full_name"`
	CreatedAt time.Time    `json:"created_at"`
}

func (Customer) TableName() string { return "customers" }

var ErrInvalidEmail = errors.New("invalid_email")

// UpsertByEmail finds the customer for an email or creates one inside the
// caller's transaction. Existing rows are left untouched so the earliest
// contact details win.
func UpsertByEmail(ctx context.Context, tx *gorm.DB, genID *snowflake.Node, email, phone, fullName string, now time.Time) (snowflake.ID, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return 0, ErrInvalidEmail
	}

	var existing Customer
	err := tx.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	row := Customer{
		ID:        genID.Generate(),
		Email:     email,
		Phone:     phone,
		FullName:  strings.TrimSpace(fullName),
		CreatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}
