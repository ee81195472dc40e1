package plateauth

import (
	"context"
	"errors"

	"github.com/platekit/plateauth/challenge"
	internalmetrics "github.com/platekit/plateauth/internal/metrics"
	"github.com/platekit/plateauth/password"
	"github.com/platekit/plateauth/session"
)

// Engine defines a public type used by plateauth APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	accounts     AccountProvider
	mailer       Mailer
	passwordHash *password.Hasher
	sessions     *session.Store
	challenges   *challenge.Store
	metrics      *internalmetrics.Metrics
}

func (e *Engine) ready() error {
	if e == nil || e.accounts == nil || e.passwordHash == nil || e.sessions == nil || e.challenges == nil {
		return ErrEngineNotReady
	}
	return nil
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.TakeSnapshot()
}

// ValidateToken describes the validatetoken operation and its observable behavior.
//
// ValidateToken may return an error when input validation, dependency calls, or security checks fail.
// ValidateToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ValidateToken(ctx context.Context, value string) (string, error) {
	if err := e.ready(); err != nil {
		return "", err
	}

	subject, err := e.sessions.Validate(ctx, value)
	if err != nil {
		return "", mapTokenError(err)
	}
	return subject, nil
}

// RevokeToken describes the revoketoken operation and its observable behavior.
//
// RevokeToken may return an error when input validation, dependency calls, or security checks fail.
// RevokeToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RevokeToken(ctx context.Context, value string) error {
	if err := e.ready(); err != nil {
		return err
	}

	if err := e.sessions.Revoke(ctx, value); err != nil {
		return ErrStoreFailure
	}
	e.metricInc(MetricTokenRevoked)
	return nil
}

// RefreshToken describes the refreshtoken operation and its observable behavior.
//
// RefreshToken may return an error when input validation, dependency calls, or security checks fail.
// RefreshToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RefreshToken(ctx context.Context, value string) (*session.Token, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	token, err := e.sessions.Refresh(ctx, value)
	if err != nil {
		return nil, mapTokenError(err)
	}
	e.metricInc(MetricTokenRefreshed)
	return token, nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, session.ErrTokenNotFound), errors.Is(err, session.ErrTokenExpired):
		return ErrTokenInvalid
	default:
		return ErrStoreFailure
	}
}
