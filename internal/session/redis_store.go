package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	apperrors "github.com/typeform-survey/survey-client/pkg/errors"
)

const (
	redisKeyPrefix = "survey:session:"
	fieldToken     = "token"
	fieldShadow    = "shadow"
)

// RedisStore keeps the session in a redis hash, one key per client profile.
// The key expires together with the token.
type RedisStore struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

// NewRedisClient connects to redisURL with pool settings suited to a single client
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	opt.PoolSize = 4
	opt.MinIdleConns = 1
	opt.MaxRetries = 3
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewRedisStore creates a store for the given client profile
func NewRedisStore(client *redis.Client, profile string) *RedisStore {
	return &RedisStore{
		client: client,
		key:    redisKeyPrefix + profile,
		now:    time.Now,
	}
}

func (s *RedisStore) Load(ctx context.Context) (*Session, error) {
	rec, err := s.read(ctx)
	if err != nil {
		return nil, s.discard(ctx, err)
	}
	if rec == nil {
		return nil, nil
	}

	sess, err := decodeRecord(*rec)
	if err != nil {
		return nil, s.discard(ctx, err)
	}
	return sess, nil
}

func (s *RedisStore) Save(ctx context.Context, token string) error {
	prev, err := s.read(ctx)
	if err != nil && !errors.Is(err, apperrors.ErrInvalidToken) {
		return err
	}

	next, claims, err := nextRecord(prev, token)
	if err != nil {
		return err
	}

	fields := map[string]interface{}{fieldToken: next.Token}
	if next.Shadow != nil {
		shadow, err := json.Marshal(next.Shadow)
		if err != nil {
			return fmt.Errorf("failed to encode shadow: %w", err)
		}
		fields[fieldShadow] = string(shadow)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.HSet(ctx, s.key, fields)
		if ttl := claims.ExpiresAtTime().Sub(s.now()); ttl > 0 {
			pipe.Expire(ctx, s.key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisStore) SaveShadow(ctx context.Context, shadow Shadow) error {
	exists, err := s.client.HExists(ctx, s.key, fieldToken).Result()
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: no session to attach status to", apperrors.ErrInvalidToken)
	}

	data, err := json.Marshal(shadow)
	if err != nil {
		return fmt.Errorf("failed to encode shadow: %w", err)
	}
	if err := s.client.HSet(ctx, s.key, fieldShadow, string(data)).Err(); err != nil {
		return fmt.Errorf("failed to save shadow: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *RedisStore) read(ctx context.Context) (*record, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	token, ok := values[fieldToken]
	if !ok {
		return nil, nil
	}

	rec := &record{Token: token}
	if raw, ok := values[fieldShadow]; ok {
		var shadow Shadow
		if err := json.Unmarshal([]byte(raw), &shadow); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
		}
		rec.Shadow = &shadow
	}
	return rec, nil
}

func (s *RedisStore) discard(ctx context.Context, cause error) error {
	if !errors.Is(cause, apperrors.ErrInvalidToken) {
		return cause
	}
	logCorruptSession("redis", cause)
	if err := s.Clear(ctx); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}
