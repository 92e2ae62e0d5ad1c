package billing

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

type redisNonceStore struct {
	client *redis.Client
}

// NewRedisNonceStore returns a NonceStore backed by Redis. Use it when the
// initiator runs on more than one instance: a retried intent must find the
// original gateway reference regardless of which instance handled it.
func NewRedisNonceStore(client *redis.Client) NonceStore {
	if client == nil {
		panic("billing: redis client is required")
	}
	return &redisNonceStore{client: client}
}

func (s *redisNonceStore) Get(ctx context.Context, key string) (*IntentRef, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrNonceStoreFailure, err)
	}

	var ref IntentRef
	if err := json.Unmarshal(raw, &ref); err != nil {
		return nil, errors.Join(ErrNonceStoreFailure, err)
	}
	return &ref, nil
}

func (s *redisNonceStore) Put(ctx context.Context, key string, ref *IntentRef) error {
	raw, err := json.Marshal(ref)
	if err != nil {
		return errors.Join(ErrNonceStoreFailure, err)
	}
	if err := s.client.Set(ctx, key, raw, nonceTTL).Err(); err != nil {
		return errors.Join(ErrNonceStoreFailure, err)
	}
	return nil
}
