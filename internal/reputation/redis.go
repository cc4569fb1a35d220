package reputation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	// KeyPrefix is the Redis key prefix for reputation records.
	KeyPrefix = "rep:"

	// txRetries bounds the optimistic-transaction retry loop. Contention on
	// one user's record is rare (two near-simultaneous messages from the
	// same sender), so a handful of retries is plenty.
	txRetries = 5
)

// RedisStore persists reputation records as JSON values in Redis. Updates
// use WATCH/MULTI/EXEC optimistic transactions so a concurrent write to the
// same user's record aborts and retries the whole read-modify-write instead
// of losing the penalty.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a reputation store using the provided Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(userID string) string { return KeyPrefix + userID }

func (r *RedisStore) Get(ctx context.Context, userID string) (Status, error) {
	raw, err := r.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return DefaultStatus(userID), nil
	}
	if err != nil {
		return DefaultStatus(userID), fmt.Errorf("reputation: get %s: %w", userID, err)
	}
	return decode(userID, raw)
}

func (r *RedisStore) Update(ctx context.Context, userID string, mutate func(*Status)) (Status, error) {
	var out Status

	txn := func(tx *redis.Tx) error {
		status := DefaultStatus(userID)
		raw, err := tx.Get(ctx, key(userID)).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			if status, err = decode(userID, raw); err != nil {
				return err
			}
		}

		mutate(&status)
		status.UserID = userID
		status.AdjustTrust(0)

		data, err := json.Marshal(&status)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(userID), data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		out = status
		return nil
	}

	for i := 0; i < txRetries; i++ {
		err := r.client.Watch(ctx, txn, key(userID))
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue // another writer touched this user's record; retry
		}
		return DefaultStatus(userID), fmt.Errorf("reputation: update %s: %w", userID, err)
	}
	return DefaultStatus(userID), fmt.Errorf("reputation: update %s: transaction contention after %d retries", userID, txRetries)
}

func decode(userID string, raw []byte) (Status, error) {
	var status Status
	if err := json.Unmarshal(raw, &status); err != nil {
		return DefaultStatus(userID), fmt.Errorf("reputation: decode record %s: %w", userID, err)
	}
	if status.UserID == "" {
		status.UserID = userID
	}
	return status, nil
}
