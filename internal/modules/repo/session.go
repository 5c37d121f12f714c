package repo

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

const sessionKeyPrefix = "plantracker:session:"

// Session is the authenticated actor behind a bearer token.
type Session struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionRepo stores sessions under the HMAC of their token, never the token itself.
type SessionRepo interface {
	Create(ctx context.Context, lookup string, s *Session, ttl time.Duration) error
	Get(ctx context.Context, lookup string) (*Session, error)
	Delete(ctx context.Context, lookup string) error
}

type sessionRepo struct{ rdb *redis.Client }

func NewSessionRepo(rdb *redis.Client) SessionRepo {
	return &sessionRepo{rdb: rdb}
}

func (r *sessionRepo) Create(ctx context.Context, lookup string, s *Session, ttl time.Duration) error {
	b, err := sonic.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, sessionKeyPrefix+lookup, b, ttl).Err()
}

func (r *sessionRepo) Get(ctx context.Context, lookup string) (*Session, error) {
	b, err := r.rdb.Get(ctx, sessionKeyPrefix+lookup).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var s Session
	if err := sonic.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) Delete(ctx context.Context, lookup string) error {
	return r.rdb.Del(ctx, sessionKeyPrefix+lookup).Err()
}
