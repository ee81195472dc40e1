// Package challenge persists single-use, time-limited secrets in Redis.
//
// One store serves all four challenge kinds (host verification, mail
// verification, password reset, e-mail change). A challenge is keyed by
// (kind, subject), so issuing a new one supersedes any live challenge for
// the same subject by plain overwrite. Link-embedded kinds additionally
// keep a secret-hash index so they can be consumed without knowing the
// subject. Consumption deletes the record atomically under WATCH; a
// mismatched secret leaves the record in place.
package challenge

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Kind selects one of the four challenge tables.
type Kind uint8

const (
	// HostVerification is an exported constant or variable used by the account engine.
	HostVerification Kind = iota
	// MailVerification is an exported constant or variable used by the account engine.
	MailVerification
	// PasswordReset is an exported constant or variable used by the account engine.
	PasswordReset
	// EmailChange is an exported constant or variable used by the account engine.
	EmailChange
)

func (k Kind) slot() string {
	switch k {
	case HostVerification:
		return "hv"
	case MailVerification:
		return "mv"
	case PasswordReset:
		return "pr"
	case EmailChange:
		return "ec"
	default:
		return "xx"
	}
}

var (
	// ErrNotFound is returned when no live challenge exists for the lookup key.
	ErrNotFound = errors.New("challenge not found")
	// ErrSecretMismatch is returned when the presented secret does not match.
	// The challenge stays live.
	ErrSecretMismatch = errors.New("challenge secret mismatch")
	// ErrRedisUnavailable is an exported constant or variable used by the account engine.
	ErrRedisUnavailable = errors.New("challenge redis unavailable")
)

// Record is one pending challenge. SecretHash is the sha256 digest of the
// delivered secret; Payload carries kind-specific data (the host fingerprint
// for host verification, the new address for e-mail change).
type Record struct {
	Subject    string
	SecretHash [32]byte
	Payload    string
	ExpiresAt  int64
}

// Store defines a public type used by plateauth APIs.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store struct {
	redis  *redis.Client
	prefix string
}

// NewStore describes the newstore operation and its observable behavior.
//
// NewStore may return an error when input validation, dependency calls, or security checks fail.
// NewStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewStore(redisClient *redis.Client, prefix string) *Store {
	return &Store{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *Store) key(kind Kind, subject string) string {
	return s.prefix + ":" + kind.slot() + ":" + subject
}

func (s *Store) indexKey(kind Kind, secretHash [32]byte) string {
	return s.prefix + ":" + kind.slot() + ":t:" + hex.EncodeToString(secretHash[:])
}

// Put persists record under (kind, subject) with the given TTL, replacing
// any live challenge for that subject. Last issued wins.
func (s *Store) Put(ctx context.Context, kind Kind, subject string, record *Record, ttl time.Duration) error {
	encoded, err := encodeRecord(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(kind, subject), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// PutToken persists record like Put and additionally writes the
// secret-hash index used by ConsumeToken. A superseded challenge's index
// entry may linger until its TTL fires; it can only resolve back to the
// subject key, where the secret comparison rejects the stale secret.
func (s *Store) PutToken(ctx context.Context, kind Kind, subject string, record *Record, ttl time.Duration) error {
	encoded, err := encodeRecord(record)
	if err != nil {
		return err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(kind, subject), encoded, ttl)
		pipe.Set(ctx, s.indexKey(kind, record.SecretHash), subject, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Delete removes the challenge for (kind, subject) and its index entry.
// Used to withdraw a just-issued challenge whose delivery failed.
func (s *Store) Delete(ctx context.Context, kind Kind, subject string, secretHash [32]byte) error {
	if err := s.redis.Del(ctx, s.key(kind, subject), s.indexKey(kind, secretHash)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Consume looks up the live challenge for (kind, subject), compares the
// presented secret hash in constant time, and on match deletes the record
// atomically and returns it. An expired record is purged and reported as
// absent; a mismatch leaves the record live.
func (s *Store) Consume(ctx context.Context, kind Kind, subject string, providedHash [32]byte) (*Record, error) {
	const maxRetries = 4
	key := s.key(kind, subject)

	for i := 0; i < maxRetries; i++ {
		var matched *Record

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeRecord(data)
			if err != nil {
				return err
			}

			if time.Now().Unix() >= record.ExpiresAt {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return ErrNotFound
			}

			if subtle.ConstantTimeCompare(record.SecretHash[:], providedHash[:]) != 1 {
				return ErrSecretMismatch
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				pipe.Del(ctx, s.indexKey(kind, record.SecretHash))
				return nil
			})
			if err != nil {
				return err
			}

			matched = record
			return nil
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return nil, ErrNotFound
			case errors.Is(err, ErrNotFound), errors.Is(err, ErrSecretMismatch):
				return nil, err
			default:
				return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
			}
		}

		return matched, nil
	}

	return nil, ErrNotFound
}

// ConsumeToken consumes a link-embedded challenge by its secret alone,
// resolving the subject through the secret-hash index first.
func (s *Store) ConsumeToken(ctx context.Context, kind Kind, providedHash [32]byte) (*Record, error) {
	subject, err := s.redis.Get(ctx, s.indexKey(kind, providedHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return s.Consume(ctx, kind, subject, providedHash)
}
