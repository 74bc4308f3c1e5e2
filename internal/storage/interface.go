package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrInvalidKey   = errors.New("invalid storage key")
	ErrFileNotFound = errors.New("file not found")
)

// FileStore keeps protocol photos and PDFs addressed by slash-separated keys
// such as "protocols/<rentalId>/handover/photo-1.jpg".
// The local implementation serves development and single-node deployments;
// an object store can be dropped in behind the same interface.
type FileStore interface {
	// SaveFile writes reader to key, replacing any existing file, and
	// returns the number of bytes written
	SaveFile(ctx context.Context, key string, reader io.Reader) (int64, error)

	// ReadFile opens key for reading. Missing files return ErrFileNotFound.
	ReadFile(ctx context.Context, key string) (io.ReadCloser, error)

	// FileExists checks if a file exists and returns its size
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	DeleteFile(ctx context.Context, key string) error

	// PublicURL is the download URL recorded in protocol rows
	PublicURL(key string) string

	// Purge deletes every stored file and returns how many were removed
	Purge(ctx context.Context) (int, error)
}
