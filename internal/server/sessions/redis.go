package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/common"
)

// RedisStore keeps handshake sessions in redis, one key per session plus a
// per-user pointer, both expiring with the session TTL. Expiry needs no
// janitor; redis drops the secret material itself.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client, now: time.Now}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("handshake:session:%s", sessionID)
}

func userKey(userID string) string {
	return fmt.Sprintf("handshake:user:%s", userID)
}

func (s *RedisStore) Put(ctx context.Context, r *Record) error {
	if err := s.DeleteByUser(ctx, r.UserID); err != nil {
		return err
	}

	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	ttl := time.Until(r.ExpiresAt)
	if ttl <= 0 {
		return common.ErrSessionExpired
	}

	// Own sessions were just dropped, so any survivor under this id belongs
	// to another user. Overwriting it would leave that user's pointer
	// dangling over our record.
	held, err := s.client.Exists(ctx, sessionKey(r.SessionID)).Result()
	if err != nil {
		return err
	}
	if held > 0 {
		return common.ErrSessionConflict
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(r.SessionID), data, ttl)
	pipe.Set(ctx, userKey(r.UserID), r.SessionID, ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Record, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// TTL eviction and never-existed are indistinguishable here;
			// both read as not found, which the caller treats as a
			// restart-from-scratch condition either way.
			return nil, common.ErrSessionNotFound
		}
		return nil, err
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if r.Expired(s.now()) {
		_ = s.DeleteByUser(ctx, r.UserID)
		return nil, common.ErrSessionExpired
	}

	return &r, nil
}

func (s *RedisStore) DeleteByUser(ctx context.Context, userID string) error {
	sessionID, err := s.client.Get(ctx, userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(sessionID))
	pipe.Del(ctx, userKey(userID))
	_, err = pipe.Exec(ctx)
	return err
}

// ReplayCache implements proof.ReplayCache on the same redis client, using
// SETNX with the freshness window as TTL.
type ReplayCache struct {
	client *redis.Client
}

func NewReplayCache(client *redis.Client) *ReplayCache {
	return &ReplayCache{client: client}
}

// Client exposes the underlying redis client so the replay cache can share
// the session store's connection.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func (c *ReplayCache) Seen(ctx context.Context, publicKey, message string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("handshake:replay:%s:%s", publicKey, message)
	set, err := c.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, err
	}
	return !set, nil
}
