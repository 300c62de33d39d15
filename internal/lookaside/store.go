// Package lookaside stores licenses pushed by the minter so reads can be
// served without calling the issuer.
package lookaside

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/coder4567/nwf-provider-license-api-1/internal/config"
	"github.com/coder4567/nwf-provider-license-api-1/internal/license"
)

// ErrInvalidKey is returned by Put when the id is not a valid storage key
var ErrInvalidKey = license.ErrInvalidKey

// Store is a flat id -> bytes mapping. Last write wins.
type Store interface {
	// Get returns the stored bytes. A missing entry is found=false with a
	// nil error; err is only set for genuine read failures.
	Get(ctx context.Context, id string) (doc []byte, found bool, err error)

	// Put durably writes doc under id, replacing any previous entry
	Put(ctx context.Context, id string, doc []byte) error
}

// New builds the store selected by cfg.Backend
func New(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case config.StoreBackendFile:
		return NewFileStore(cfg.Dir, logger)
	case config.StoreBackendS3:
		return NewS3Store(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported store backend: %q", cfg.Backend)
	}
}

func objectName(id string) string {
	return id + ".json"
}
