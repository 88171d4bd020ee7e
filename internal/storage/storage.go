package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pbaille/legalsts/internal/domain"
)

// Storage publishes exported dataset files
type Storage interface {
	// Upload stores data under key and returns the key actually used
	Upload(ctx context.Context, key string, data io.Reader) (string, error)

	// Delete removes the file stored under key, the key given to Upload
	Delete(ctx context.Context, key string) error

	// URI renders a key as a location a user can follow
	URI(key string) string
}

// Type represents the storage backend type
type Type string

const (
	TypeNone  Type = "none"
	TypeLocal Type = "local"
	TypeS3    Type = "s3"
)

// Config holds configuration for storage
type Config struct {
	Type      Type
	LocalPath string // For local storage
	Bucket    string // For S3 storage
	Prefix    string // For S3 storage
	Region    string // For S3 storage
	AccessKey string
	SecretKey string
}

// New creates a storage instance based on configuration. TypeNone yields
// a nil Storage.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case TypeNone:
		return nil, nil
	case TypeLocal, "":
		return NewLocalStorage(cfg.LocalPath)
	case TypeS3:
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// ObjectKey builds the key of a run file: <variant>/<run id>/<file name>
func ObjectKey(runID, variant, filename string) string {
	name := strings.ReplaceAll(filepath.Base(filename), " ", "_")
	return path.Join(variant, runID, name)
}

// Publish uploads every file of a run and returns them with Location set
func Publish(ctx context.Context, st Storage, run *domain.Run) ([]domain.RunFile, error) {
	published := make([]domain.RunFile, 0, len(run.Files))
	for _, f := range run.Files {
		key, err := upload(ctx, st, ObjectKey(run.ID, run.Variant, f.Path), f.Path)
		if err != nil {
			return published, fmt.Errorf("publish %s: %w", f.Split, err)
		}
		f.Location = st.URI(key)
		published = append(published, f)
	}
	return published, nil
}

// Unpublish deletes the published copies of a run's files
func Unpublish(ctx context.Context, st Storage, run *domain.Run) (int, error) {
	n := 0
	for _, f := range run.Files {
		if f.Location == "" {
			continue
		}
		if err := st.Delete(ctx, ObjectKey(run.ID, run.Variant, f.Path)); err != nil {
			return n, fmt.Errorf("unpublish %s: %w", f.Split, err)
		}
		n++
	}
	return n, nil
}

func upload(ctx context.Context, st Storage, key, filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", filePath, err)
	}
	defer file.Close()
	return st.Upload(ctx, key, file)
}

func contentType(key string) string {
	switch path.Ext(key) {
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
