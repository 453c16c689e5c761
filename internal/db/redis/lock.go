package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/rueidis"

	"github.com/pressregistry/titledex/internal/db"
)

// releaseScript deletes the lock key only while the caller still owns it, so
// a lease that expired and was re-acquired elsewhere is never released by the
// old holder.
var releaseScript = rueidis.NewLuaScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// AcquireLock takes an advisory lease on key via SET NX PX. Returns the
// release token on success and db.ErrLockHeld while another holder owns the
// lease. The TTL bounds how long a crashed holder can block the corpus.
func (s *Store) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	cmd := s.b().Set().Key(key).Value(token).Nx().Px(ttl).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return "", db.ErrLockHeld
		}
		return "", &db.Error{Op: db.OpSet, Err: err}
	}
	return token, nil
}

// ReleaseLock releases the lease if token still owns it.
func (s *Store) ReleaseLock(ctx context.Context, key, token string) error {
	if err := releaseScript.Exec(ctx, s.client, []string{key}, []string{token}).Error(); err != nil {
		return &db.Error{Op: db.OpEval, Err: err}
	}
	return nil
}
