package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore persists sessions in redis so logins survive process restarts
// and are shared across replicas.
type RedisStore struct {
	redisdb *redis.Client
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisStore(cfg RedisConfig) *RedisStore {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &RedisStore{redisdb: redisdb}
}

// Ping checks redis connectivity at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.redisdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.redisdb.Close()
}

func (s *RedisStore) Put(ctx context.Context, sess Session) error {
	payload, err := json.Marshal(sess)

	if err != nil {
		return err
	}

	ttl := time.Until(sess.ExpiresAt)

	if ttl <= 0 {
		return nil
	}

	return s.redisdb.Set(ctx, redisKeyPrefix+sess.ID, payload, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	payload, err := s.redisdb.Get(ctx, redisKeyPrefix+id).Bytes()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotFound
		}

		return Session{}, err
	}

	var sess Session

	err = json.Unmarshal(payload, &sess)

	if err != nil {
		return Session{}, err
	}

	if time.Now().After(sess.ExpiresAt) {
		return Session{}, ErrNotFound
	}

	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.redisdb.Del(ctx, redisKeyPrefix+id).Err()
}
