package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"blackrent-backend/internal/logger"
)

// LocalStore implements FileStore on the local filesystem
type LocalStore struct {
	baseURL string // Server URL (e.g., "http://localhost:5001")
	rootDir string
}

// NewLocalStore creates the upload directory if needed
func NewLocalStore(baseURL, rootDir string) (*LocalStore, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		rootDir: rootDir,
	}, nil
}

// path resolves key inside rootDir and rejects anything escaping it
func (s *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + strings.TrimSpace(key))
	if key == "" || clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.rootDir, filepath.FromSlash(clean)), nil
}

func (s *LocalStore) SaveFile(ctx context.Context, key string, reader io.Reader) (int64, error) {
	fullPath, err := s.path(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directories: %w", err)
	}

	// write to a temp file first so readers never see a partial upload
	tmp := fullPath + ".tmp-" + uuid.NewString()
	file, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	n, err := io.Copy(file, reader)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, fullPath); err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("failed to store file: %w", err)
	}

	logger.Debug("Stored file", "key", key, "bytes", n)
	return n, nil
}

func (s *LocalStore) ReadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.path(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (s *LocalStore) FileExists(ctx context.Context, key string) (bool, int64, error) {
	fullPath, err := s.path(key)
	if err != nil {
		return false, 0, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (s *LocalStore) DeleteFile(ctx context.Context, key string) error {
	fullPath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStore) PublicURL(key string) string {
	return fmt.Sprintf("%s/api/files/download?key=%s", s.baseURL, url.QueryEscape(key))
}

func (s *LocalStore) Purge(ctx context.Context) (int, error) {
	removed := 0
	err := filepath.WalkDir(s.rootDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		if err := os.Remove(p); err != nil {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("failed to purge storage: %w", err)
	}

	entries, err := os.ReadDir(s.rootDir)
	if err != nil {
		return removed, err
	}
	for _, e := range entries {
		if e.IsDir() {
			_ = os.RemoveAll(filepath.Join(s.rootDir, e.Name()))
		}
	}
	logger.Warn("Purged file storage", "files_removed", removed, "root", s.rootDir)
	return removed, nil
}
