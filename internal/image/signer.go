package image

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pixlock/service/internal/storage"
)

// DefaultSignedURLTTL bounds how long a delivery URL stays valid.
const DefaultSignedURLTTL = time.Hour

// Resolver produces time-limited delivery URLs for stored blobs. Each call is
// a fresh presign — no caching, the expiry window bounds the cost.
type Resolver struct {
	store storage.ObjectStorage
	ttl   time.Duration
}

// NewResolver creates a Resolver signing URLs valid for ttl.
// A non-positive ttl falls back to DefaultSignedURLTTL.
func NewResolver(store storage.ObjectStorage, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = DefaultSignedURLTTL
	}
	return &Resolver{store: store, ttl: ttl}
}

// Resolve returns a signed read URL for the given storage key, or nil when
// signing fails. A nil URL means "temporarily unavailable" — callers must
// never interpret it as "image does not exist". The failure is logged here
// and deliberately not propagated.
func (r *Resolver) Resolve(ctx context.Context, storageKey string) *string {
	u, err := r.store.PresignedGet(ctx, storageKey, r.ttl)
	if err != nil {
		log.Error().Err(err).Str("storage_key", storageKey).Msg("generate signed url")
		return nil
	}
	return &u
}
