// Package session persists opaque bearer tokens in Redis. A token is valid
// iff its record exists and its embedded expiry has not passed; revocation
// is deletion, refresh is revoke-then-issue for the same subject.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/platekit/plateauth/internal"
)

// ErrTokenNotFound is returned when no record exists for the token value.
var ErrTokenNotFound = errors.New("session token not found")

// ErrTokenExpired is returned when a record exists but its expiry has passed.
var ErrTokenExpired = errors.New("session token expired")

// ErrRedisUnavailable is an exported constant or variable used by the account engine.
var ErrRedisUnavailable = errors.New("session redis unavailable")

// Token is a bearer credential bound to an account id for a bounded time.
type Token struct {
	Value     string
	Subject   string
	ExpiresAt int64
}

// Store defines a public type used by plateauth APIs.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
}

// NewStore describes the newstore operation and its observable behavior.
//
// NewStore may return an error when input validation, dependency calls, or security checks fail.
// NewStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewStore(redisClient *redis.Client, prefix string, ttl time.Duration) *Store {
	return &Store{
		redis:  redisClient,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *Store) key(value string) string {
	return s.prefix + ":" + value
}

// Issue generates a fresh token for subject, persists it with the store TTL,
// and returns it together with its absolute expiry.
func (s *Store) Issue(ctx context.Context, subject string) (*Token, error) {
	value, err := internal.NewSessionToken()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.ttl).Unix()
	encoded, err := encodeTokenRecord(subject, expiresAt)
	if err != nil {
		return nil, err
	}

	if err := s.redis.Set(ctx, s.key(value), encoded, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return &Token{Value: value, Subject: subject, ExpiresAt: expiresAt}, nil
}

// Validate returns the subject bound to value. A record that still exists
// but is past its embedded expiry is treated as absent and purged eagerly;
// the Redis TTL alone is never trusted for the validity decision.
func (s *Store) Validate(ctx context.Context, value string) (string, error) {
	data, err := s.redis.Get(ctx, s.key(value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	subject, expiresAt, err := decodeTokenRecord(data)
	if err != nil {
		return "", err
	}
	if time.Now().Unix() >= expiresAt {
		if err := s.redis.Del(ctx, s.key(value)).Err(); err != nil {
			log.Print("plateauth: expired session token purge failed")
		}
		return "", ErrTokenExpired
	}

	return subject, nil
}

// Revoke deletes the record for value unconditionally. Revoking an absent
// token is not an error.
func (s *Store) Revoke(ctx context.Context, value string) error {
	if err := s.redis.Del(ctx, s.key(value)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Refresh validates value, revokes it, and issues a replacement token for
// the same subject. It fails with whatever Validate would fail with.
func (s *Store) Refresh(ctx context.Context, value string) (*Token, error) {
	subject, err := s.Validate(ctx, value)
	if err != nil {
		return nil, err
	}
	if err := s.Revoke(ctx, value); err != nil {
		return nil, err
	}
	return s.Issue(ctx, subject)
}
