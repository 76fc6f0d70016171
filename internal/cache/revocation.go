package cache

import (
	"context"
	"errors"
	"time"
)

const revokedKeyPrefix = "revoked:"

// Revocations records token ids that must no longer be accepted. Entries live only
// as long as the token would have, so the list never outgrows the live tokens.
type Revocations struct {
	store Cache[string]
}

// NewRevocations wraps a cache backend
func NewRevocations(store Cache[string]) *Revocations {
	return &Revocations{store: store}
}

// Revoke marks tokenID as revoked until ttl elapses. Tokens that already expired
// need no entry.
func (r *Revocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.store.Set(ctx, revokedKeyPrefix+tokenID, time.Now().UTC().Format(time.RFC3339), ttl)
}

// IsRevoked reports whether tokenID was revoked. Backend errors are returned so the
// caller can fail closed.
func (r *Revocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, err := r.store.Get(ctx, revokedKeyPrefix+tokenID)
	if errors.Is(err, ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Close closes the backend
func (r *Revocations) Close() error {
	return r.store.Close()
}
