package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on top of Redis. The record lives in a hash
// keyed by id; email, session token and reset token each get a secondary
// index key pointing back at the id so every lookup is a single GET.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

const nextIDKey = "user:next_id"

func userKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

func emailIndexKey(email string) string {
	return fmt.Sprintf("user:email:%s", email)
}

func sessionIndexKey(token string) string {
	return fmt.Sprintf("user:session:%s", token)
}

func resetIndexKey(token string) string {
	return fmt.Sprintf("user:reset:%s", token)
}

func (s *RedisStore) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.loadUser(ctx, id)
}

func (s *RedisStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.getByIndex(ctx, emailIndexKey(email))
}

func (s *RedisStore) GetBySessionToken(ctx context.Context, token string) (*User, error) {
	return s.getByIndex(ctx, sessionIndexKey(token))
}

func (s *RedisStore) GetByResetToken(ctx context.Context, token string) (*User, error) {
	return s.getByIndex(ctx, resetIndexKey(token))
}

func (s *RedisStore) getByIndex(ctx context.Context, indexKey string) (*User, error) {
	idStr, err := s.client.Get(ctx, indexKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user index: %w", err)
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse indexed user id: %w", err)
	}

	return s.loadUser(ctx, id)
}

func (s *RedisStore) loadUser(ctx context.Context, id int64) (*User, error) {
	data, err := s.client.HGetAll(ctx, userKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load user record: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}

	u := &User{
		ID:             id,
		Email:          data["email"],
		HashedPassword: data["hashed_password"],
	}
	if token, ok := data["session_token"]; ok {
		u.SessionToken = &token
	}
	if token, ok := data["reset_token"]; ok {
		u.ResetToken = &token
	}

	return u, nil
}

func (s *RedisStore) Insert(ctx context.Context, email, hashedPassword string) (*User, error) {
	id, err := s.client.Incr(ctx, nextIDKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate user id: %w", err)
	}

	// Claiming the email index atomically doubles as the uniqueness check.
	claimed, err := s.client.SetNX(ctx, emailIndexKey(email), id, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to claim email index: %w", err)
	}
	if !claimed {
		return nil, ErrDuplicateEmail
	}

	err = s.client.HSet(ctx, userKey(id), map[string]any{
		"email":           email,
		"hashed_password": hashedPassword,
	}).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to store user record: %w", err)
	}

	return &User{
		ID:             id,
		Email:          email,
		HashedPassword: hashedPassword,
	}, nil
}

func (s *RedisStore) UpdateFields(ctx context.Context, id int64, updates ...FieldUpdate) error {
	current, err := s.loadUser(ctx, id)
	if err != nil {
		return err
	}

	key := userKey(id)
	pipe := s.client.TxPipeline()

	for _, fu := range updates {
		switch fu.field {
		case fieldEmail:
			if fu.value == nil {
				return ErrInvalidField
			}
			pipe.Del(ctx, emailIndexKey(current.Email))
			pipe.Set(ctx, emailIndexKey(*fu.value), id, 0)
			pipe.HSet(ctx, key, "email", *fu.value)
		case fieldHashedPassword:
			if fu.value == nil {
				return ErrInvalidField
			}
			pipe.HSet(ctx, key, "hashed_password", *fu.value)
		case fieldSessionToken:
			if current.SessionToken != nil {
				pipe.Del(ctx, sessionIndexKey(*current.SessionToken))
			}
			if fu.value == nil {
				pipe.HDel(ctx, key, "session_token")
			} else {
				pipe.Set(ctx, sessionIndexKey(*fu.value), id, 0)
				pipe.HSet(ctx, key, "session_token", *fu.value)
			}
		case fieldResetToken:
			if current.ResetToken != nil {
				pipe.Del(ctx, resetIndexKey(*current.ResetToken))
			}
			if fu.value == nil {
				pipe.HDel(ctx, key, "reset_token")
			} else {
				pipe.Set(ctx, resetIndexKey(*fu.value), id, 0)
				pipe.HSet(ctx, key, "reset_token", *fu.value)
			}
		default:
			return ErrInvalidField
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update user fields: %w", err)
	}

	return nil
}
