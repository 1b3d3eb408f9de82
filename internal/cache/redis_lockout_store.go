package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
)

const (
	fieldFailedCount = "failed_count"
	fieldLockedUntil = "locked_until"
)

// RedisLockoutStore implements LockoutStore with one Redis hash per key.
type RedisLockoutStore struct {
	client *redis.Client
}

// NewRedisLockoutStore creates a lockout store backed by Redis hashes.
func NewRedisLockoutStore(client *redis.Client) *RedisLockoutStore {
	return &RedisLockoutStore{client: client}
}

func (s *RedisLockoutStore) Get(ctx context.Context, key string) (LockoutState, error) {
	data, err := s.client.HGetAll(ctx, constants.RedisLockoutPrefix+key).Result()
	if err != nil {
		return LockoutState{}, err
	}
	if len(data) == 0 {
		return LockoutState{}, nil
	}

	state := LockoutState{}
	if raw, ok := data[fieldFailedCount]; ok {
		if n, convErr := strconv.Atoi(raw); convErr == nil {
			state.FailedCount = n
		}
	}
	if raw, ok := data[fieldLockedUntil]; ok && raw != "" {
		if unix, convErr := strconv.ParseInt(raw, 10, 64); convErr == nil && unix > 0 {
			t := time.Unix(unix, 0).UTC()
			state.LockedUntil = &t
		}
	}
	return state, nil
}

func (s *RedisLockoutStore) RecordFailure(ctx context.Context, key string, now time.Time, threshold int, lockoutWindow time.Duration) (LockoutState, error) {
	redisKey := constants.RedisLockoutPrefix + key

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.HIncrBy(ctx, redisKey, fieldFailedCount, 1)
		ttl = p.TTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		return LockoutState{}, err
	}
	count := incr.Val()

	state := LockoutState{FailedCount: int(count)}
	if int(count) >= threshold {
		lockedUntil := now.Add(lockoutWindow).UTC()
		_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, redisKey, fieldLockedUntil, lockedUntil.Unix())
			p.Expire(ctx, redisKey, lockoutWindow)
			return nil
		})
		if err != nil {
			return LockoutState{}, err
		}
		state.LockedUntil = &lockedUntil
		return state, nil
	}

	// The counter window starts at the first failure. A key left without a
	// TTL gets one on the next failure.
	if ttl.Val() < 0 {
		if err := s.client.Expire(ctx, redisKey, lockoutWindow).Err(); err != nil {
			log.Error().
				Err(err).
				Str("key", key).
				Msg("Failed to set lockout counter expiry")
		}
	}
	return state, nil
}

func (s *RedisLockoutStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, constants.RedisLockoutPrefix+key).Err()
}
