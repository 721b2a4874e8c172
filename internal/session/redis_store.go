package session

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps the session identifier in Redis. Used for kiosk-style
// deploys where several widget processes on one terminal must present as the
// same visitor.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(addr, password string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       0,
		}),
		key: StorageKey,
	}
}

func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = StorageKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Load() (string, bool) {
	id, err := s.client.Get(context.Background(), s.key).Result()
	if err != nil {
		return "", false
	}
	return id, id != ""
}

func (s *RedisStore) Save(id string) error {
	// No expiry: the identifier outlives any single session.
	return s.client.Set(context.Background(), s.key, id, 0).Err()
}
