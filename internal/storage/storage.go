// Package storage stores uploaded receipt files.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"dompet/internal/config"
)

// ErrInvalidPath is returned for object paths that escape the store root.
var ErrInvalidPath = errors.New("storage: invalid object path")

// ObjectStore uploads and removes objects by slash-separated path.
type ObjectStore interface {
	// Upload writes body to objectPath and returns a URL clients can fetch it from.
	Upload(ctx context.Context, objectPath string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, objectPath string) error
}

// New builds the object store selected by cfg.StorageDriver.
func New(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	switch cfg.StorageDriver {
	case "", "local":
		return NewLocalStore(cfg.StorageLocalDir, cfg.StoragePublicURL)
	case "firebase":
		return NewFirebaseStore(ctx, cfg.FirebaseBucket, cfg.FirebaseCredentialsFile)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.StorageDriver)
	}
}

// cleanPath normalizes objectPath and rejects absolute or parent-relative paths.
func cleanPath(objectPath string) (string, error) {
	if objectPath == "" || strings.HasPrefix(objectPath, "/") || strings.Contains(objectPath, "\\") {
		return "", ErrInvalidPath
	}
	p := path.Clean(objectPath)
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", ErrInvalidPath
	}
	return p, nil
}
