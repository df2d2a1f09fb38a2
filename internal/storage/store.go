package storage

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prompttemplates/marketplace/internal/config"
	"go.uber.org/zap"
)

// Purpose namespaces uploads into their own directory.
type Purpose string

const (
	PurposeLogo       Purpose = "logo"
	PurposeBackground Purpose = "background"
	PurposeTemplate   Purpose = "template"
)

var purposeDirs = map[Purpose]string{
	PurposeLogo:       "logos",
	PurposeBackground: "backgrounds",
	PurposeTemplate:   "templates",
}

var allowedTypes = map[Purpose][]string{
	PurposeLogo:       {"image/jpeg", "image/png", "image/gif", "image/webp"},
	PurposeBackground: {"image/jpeg", "image/png", "image/gif", "image/webp"},
	PurposeTemplate:   {"application/zip", "application/x-zip-compressed"},
}

var (
	ErrInvalidPurpose  = errors.New("invalid_purpose")
	ErrInvalidFileType = errors.New("invalid_file_type")
	ErrFileTooLarge    = errors.New("file_too_large")
	ErrFileNotFound    = errors.New("file_not_found")
)

// Store writes uploads under a base directory, one subdirectory per purpose,
// with collision-free names.
type Store struct {
	baseDir string
	maxSize int64
	log     *zap.Logger
}

func NewStore(cfg config.Config, log *zap.Logger) *Store {
	return &Store{
		baseDir: cfg.UploadsDir,
		maxSize: cfg.MaxUploadSize,
		log:     log.Named("storage"),
	}
}

// Save streams an upload to disk and returns its path relative to the base
// directory. The declared content type is checked against the purpose's
// allow-list and the stream is capped at the configured size.
func (s *Store) Save(purpose Purpose, originalName, contentType string, body io.Reader) (string, error) {
	dir, ok := purposeDirs[purpose]
	if !ok {
		return "", ErrInvalidPurpose
	}
	if !typeAllowed(purpose, contentType) {
		return "", ErrInvalidFileType
	}

	absDir := filepath.Join(s.baseDir, dir)
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d-%d%s", nowMillis(), rand.Int63n(1_000_000_000), safeExt(originalName))
	relPath := filepath.Join(dir, name)
	absPath := filepath.Join(s.baseDir, relPath)

	out, err := os.Create(absPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	written, err := io.Copy(out, io.LimitReader(body, s.maxSize+1))
	if err != nil {
		os.Remove(absPath)
		return "", err
	}
	if written > s.maxSize {
		os.Remove(absPath)
		return "", ErrFileTooLarge
	}

	s.log.Debug("upload stored", zap.String("path", relPath), zap.Int64("bytes", written))
	return relPath, nil
}

// Open resolves a stored path for streaming. Paths outside the base
// directory are rejected.
func (s *Store) Open(relPath string) (*os.File, error) {
	clean := filepath.Clean(strings.TrimSpace(relPath))
	if clean == "" || clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, ErrFileNotFound
	}
	f, err := os.Open(filepath.Join(s.baseDir, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return f, nil
}

func typeAllowed(purpose Purpose, contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	for _, allowed := range allowedTypes[purpose] {
		if contentType == allowed {
			return true
		}
	}
	return false
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) > 8 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}
