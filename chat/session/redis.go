package session

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "chat:session:"

// RedisStore keeps sessions in Redis so multiple chatbot instances can
// share them. Entries carry a TTL matching the sliding expiry window;
// the explicit ExpiresAt check on read stays as the authority.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps the given Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(sessionID uuid.UUID) string {
	return redisKeyPrefix + sessionID.String()
}

func (s *RedisStore) put(ctx context.Context, c *Context) error {
	payload, err := sonic.Marshal(c)
	if err != nil {
		return err
	}
	ttl := time.Until(c.ExpiresAt)
	if ttl <= 0 {
		return s.client.Del(ctx, redisKey(c.SessionID)).Err()
	}
	return s.client.Set(ctx, redisKey(c.SessionID), payload, ttl).Err()
}

func (s *RedisStore) Create(userID string) (*Context, error) {
	c := NewContext(userID)
	if err := s.put(context.Background(), c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *RedisStore) Get(sessionID uuid.UUID) (*Context, error) {
	ctx := context.Background()
	payload, err := s.client.Get(ctx, redisKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var c Context
	if err := sonic.Unmarshal(payload, &c); err != nil {
		return nil, err
	}
	if c.Expired() {
		_ = s.client.Del(ctx, redisKey(sessionID)).Err()
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *RedisStore) Update(c *Context) error {
	return s.put(context.Background(), c)
}

func (s *RedisStore) Delete(sessionID uuid.UUID) error {
	return s.client.Del(context.Background(), redisKey(sessionID)).Err()
}

// CleanupExpired scans for session keys whose payload is past expiry.
// Redis TTLs already reclaim entries on their own; this only reports
// and removes stragglers whose TTL outlived the payload expiry.
func (s *RedisStore) CleanupExpired() (int, error) {
	ctx := context.Background()
	purged := 0
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		payload, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var c Context
		if err := sonic.Unmarshal(payload, &c); err != nil {
			continue
		}
		if c.Expired() {
			if s.client.Del(ctx, key).Err() == nil {
				purged++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return purged, err
	}
	return purged, nil
}
