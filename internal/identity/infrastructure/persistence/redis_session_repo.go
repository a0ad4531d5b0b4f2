package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/felixgeelhaar/vaxsched/internal/identity/domain"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "vaxsched:session:"

type sessionRecord struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// RedisSessionRepository implements domain.SessionRepository over Redis.
// Keys carry a TTL matching the session expiry, so expiry cleanup is
// handled by Redis itself and DeleteExpired is a no-op.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository creates a new RedisSessionRepository.
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

// Save stores a session with a TTL.
func (r *RedisSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	record := sessionRecord{
		Token:     session.Token(),
		Role:      session.Role().String(),
		Username:  session.Username(),
		ExpiresAt: session.ExpiresAt().UTC(),
		CreatedAt: session.CreatedAt().UTC(),
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}

	ttl := time.Until(session.ExpiresAt())
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, sessionKeyPrefix+session.Token(), payload, ttl).Err()
}

// FindByToken retrieves a session by token.
func (r *RedisSessionRepository) FindByToken(ctx context.Context, token string) (*domain.Session, error) {
	payload, err := r.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var record sessionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, err
	}

	role, err := domain.ParseRole(record.Role)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateSession(record.Token, role, record.Username, record.ExpiresAt, record.CreatedAt), nil
}

// Delete removes a session by token.
func (r *RedisSessionRepository) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, sessionKeyPrefix+token).Err()
}

// DeleteExpired is a no-op; Redis evicts expired keys.
func (r *RedisSessionRepository) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}
