package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStorage stores uploaded product images on disk. Stored names are
// sanitized and uuid-prefixed so concurrent uploads never collide.
type FileStorage interface {
	Save(ctx context.Context, file *multipart.FileHeader, subPath string) (string, error)
	Delete(ctx context.Context, relPath string) error
	BaseDir() string
}

type LocalFileStorage struct {
	baseDir string
}

func NewLocalFileStorage(baseDir string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base dir: %w", err)
	}

	return &LocalFileStorage{baseDir: baseDir}, nil
}

// Save writes the upload under baseDir/subPath and returns the relative
// path to the stored file. The original filename is kept only as a
// sanitized suffix; the uuid prefix makes the stored name unique.
func (s *LocalFileStorage) Save(ctx context.Context, file *multipart.FileHeader, subPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stored := uuid.New().String() + "_" + SanitizeFilename(file.Filename)
	relPath := filepath.Join(subPath, stored)
	fullPath := filepath.Join(s.baseDir, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directories: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("failed to copy file: %w", err)
	}

	return relPath, nil
}

// Delete removes a stored file. Deleting an already absent file is not
// an error, so the operation stays idempotent.
func (s *LocalFileStorage) Delete(ctx context.Context, relPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(s.baseDir, relPath))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

func (s *LocalFileStorage) BaseDir() string {
	return s.baseDir
}

// SanitizeFilename strips path components and anything outside
// [A-Za-z0-9._-] from an uploaded filename.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	cleaned := strings.Trim(b.String(), ".")
	if cleaned == "" {
		cleaned = "file"
	}

	return cleaned
}
