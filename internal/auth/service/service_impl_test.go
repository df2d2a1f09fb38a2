package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/prompttemplates/marketplace/internal/auth/domain"
	"github.com/prompttemplates/marketplace/internal/auth/password"
	"github.com/prompttemplates/marketplace/internal/clock"
	"github.com/prompttemplates/marketplace/internal/config"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// settableClock lets a test move time forward past the session TTL.
type settableClock struct {
	at time.Time
}

func (c *settableClock) Now() time.Time { return c.at }

var _ clock.Clock = (*settableClock)(nil)

func newTestService(t *testing.T) (*Service, *gorm.DB, *settableClock) {
	t.Helper()

	handle, err := gorm.Open(
		sqlite.Open(filepath.Join(t.TempDir(), "auth.db")),
		&gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)},
	)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := handle.AutoMigrate(&authdomain.Admin{}, &authdomain.Session{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	clk := &settableClock{at: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(Params{
		DB:    handle,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: clk,
		Cfg:   config.Config{SessionTTL: 12 * time.Hour},
	}).(*Service)
	return svc, handle, clk
}

func seedAdmin(t *testing.T, handle *gorm.DB, node *snowflake.Node, username, plain string) authdomain.Admin {
	t.Helper()
	hash, err := password.Hash(plain)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	row := authdomain.Admin{
		ID:           node.Generate(),
		Username:     username,
		PasswordHash: hash,
		Email:        username + "@example.com",
	}
	if err := handle.Create(&row).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return row
}

func TestLoginAndValidate(t *testing.T) {
	svc, handle, _ := newTestService(t)
	seedAdmin(t, handle, svc.genID, "admin", "hunter2")
	ctx := context.Background()

	resp, err := svc.Login(ctx, authdomain.LoginRequest{Username: "admin", Password: "hunter2"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("login response is missing its token")
	}
	if resp.Username != "admin" || resp.Email != "admin@example.com" {
		t.Fatalf("identity = %q / %q", resp.Username, resp.Email)
	}

	admin, err := svc.Validate(ctx, resp.Token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if admin.Username != "admin" {
		t.Fatalf("validated admin = %q", admin.Username)
	}

	// Only the hash may be stored.
	var session authdomain.Session
	if err := handle.First(&session).Error; err != nil {
		t.Fatalf("load session: %v", err)
	}
	if session.TokenHash == resp.Token {
		t.Fatal("session stores the plaintext token")
	}

	var reloaded authdomain.Admin
	if err := handle.First(&reloaded, "username = ?", "admin").Error; err != nil {
		t.Fatalf("reload admin: %v", err)
	}
	if reloaded.LastLogin == nil {
		t.Fatal("last_login was not stamped")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, handle, _ := newTestService(t)
	seedAdmin(t, handle, svc.genID, "admin", "hunter2")
	ctx := context.Background()

	cases := []authdomain.LoginRequest{
		{Username: "admin", Password: "wrong"},
		{Username: "ghost", Password: "hunter2"},
		{Username: "", Password: "hunter2"},
		{Username: "admin", Password: ""},
	}
	for _, req := range cases {
		if _, err := svc.Login(ctx, req); !errors.Is(err, authdomain.ErrInvalidCredentials) {
			t.Fatalf("Login(%q): got %v, want ErrInvalidCredentials", req.Username, err)
		}
	}

	var sessions int64
	if err := handle.Model(&authdomain.Session{}).Count(&sessions).Error; err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if sessions != 0 {
		t.Fatalf("rejected logins created %d sessions", sessions)
	}
}

func TestValidateExpiredSession(t *testing.T) {
	svc, handle, clk := newTestService(t)
	seedAdmin(t, handle, svc.genID, "admin", "hunter2")
	ctx := context.Background()

	resp, err := svc.Login(ctx, authdomain.LoginRequest{Username: "admin", Password: "hunter2"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	clk.at = clk.at.Add(13 * time.Hour)
	if _, err := svc.Validate(ctx, resp.Token); !errors.Is(err, authdomain.ErrUnauthorized) {
		t.Fatalf("expired token: got %v, want ErrUnauthorized", err)
	}
}

func TestValidateUnknownToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, token := range []string{"", "  ", "bogus-token"} {
		if _, err := svc.Validate(ctx, token); !errors.Is(err, authdomain.ErrUnauthorized) {
			t.Fatalf("Validate(%q): got %v, want ErrUnauthorized", token, err)
		}
	}
}
