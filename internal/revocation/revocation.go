package revocation

import (
	"context"
	"time"

	"github.com/Skotchmaster/auth_service/internal/kv"
)

const keyPrefix = "revoked:"

type Store struct {
	KV  *kv.Store
	Now func() time.Time
}

func New(store *kv.Store) *Store {
	return &Store{KV: store, Now: time.Now}
}

func key(jti string) string {
	return keyPrefix + jti
}

// Revoke marks jti as revoked for at least ttl. The TTL is rounded up to a
// whole second, never below one second.
func (s *Store) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return s.KV.Set(ctx, key(jti), "", roundUp(ttl))
}

// RevokeUntil revokes jti for the remaining lifetime of a token expiring at exp.
func (s *Store) RevokeUntil(ctx context.Context, jti string, exp time.Time) error {
	return s.Revoke(ctx, jti, exp.Sub(s.Now()))
}

// RevokeOnce revokes jti until exp and reports whether this call was the one
// that revoked it. Concurrent callers see exactly one true.
func (s *Store) RevokeOnce(ctx context.Context, jti string, exp time.Time) (bool, error) {
	return s.KV.SetNX(ctx, key(jti), "", roundUp(exp.Sub(s.Now())))
}

// IsRevoked reports true together with the error when the store cannot be
// read, so callers fail closed.
func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	ok, err := s.KV.Exists(ctx, key(jti))
	if err != nil {
		return true, err
	}
	return ok, nil
}

func roundUp(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return time.Second
	}
	whole := ttl.Truncate(time.Second)
	if whole < ttl {
		whole += time.Second
	}
	return whole
}
