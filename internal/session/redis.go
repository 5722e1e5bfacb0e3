package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultKeyPrefix namespaces session keys in Redis.
const DefaultKeyPrefix = "lawdesk:session:"

// RedisStore keeps sessions in Redis with a sliding TTL; every Put renews
// the expiry, so abandoned forms disappear after TTL of inactivity.
type RedisStore struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

// NewRedisStore returns a store over client. A zero ttl keeps keys forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, Prefix: DefaultKeyPrefix, TTL: ttl}
}

func (r *RedisStore) key(telegramID int64) string {
	p := r.Prefix
	if p == "" {
		p = DefaultKeyPrefix
	}
	return p + strconv.FormatInt(telegramID, 10)
}

// Get loads the session of telegramID.
func (r *RedisStore) Get(ctx context.Context, telegramID int64) (*Session, error) {
	b, err := r.Client.Get(ctx, r.key(telegramID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(b)
}

// Put stores s and renews its TTL.
func (r *RedisStore) Put(ctx context.Context, telegramID int64, s *Session) error {
	b, err := encode(s)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, r.key(telegramID), b, r.TTL).Err()
}

// Delete removes the session of telegramID.
func (r *RedisStore) Delete(ctx context.Context, telegramID int64) error {
	return r.Client.Del(ctx, r.key(telegramID)).Err()
}

// Ping checks connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}
