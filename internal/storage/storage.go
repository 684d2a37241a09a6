// Package storage keeps voice recordings: an object store for saved files
// and a temp area for recordings that are scored but not yet saved.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/yourorg/imnotdurnk/internal/config"
)

// ObjectStore uploads and deletes objects by key.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// New builds the object store selected by cfg.Storage.Driver.
func New(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	switch cfg.Storage.Driver {
	case "s3":
		return NewS3Store(ctx, cfg.Storage.Bucket, cfg.Storage.Region, cfg.Storage.PublicURL)
	case "local", "":
		return NewLocalStore(cfg.Storage.LocalDir, LocalURLPrefix)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
