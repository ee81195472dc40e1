package plateauth

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/platekit/plateauth/challenge"
	"github.com/platekit/plateauth/internal"
)

// RequestPasswordReset issues a single-use reset token for the account and
// mails a link of the form referrer?token=<token>. Issuing supersedes any
// pending reset token for the account.
func (e *Engine) RequestPasswordReset(ctx context.Context, id, referrer string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if e.mailer == nil {
		return ErrNoMailer
	}
	if referrer == "" {
		return ErrNoReferrer
	}

	acct, err := e.Account(ctx, id)
	if err != nil {
		return err
	}

	token, err := internal.NewChangeToken()
	if err != nil {
		return ErrStoreFailure
	}

	record := &challenge.Record{
		Subject:    acct.ID,
		SecretHash: internal.HashSecret(token),
		ExpiresAt:  time.Now().Add(e.config.Challenge.TTL).Unix(),
	}
	if err := e.challenges.PutToken(ctx, challenge.PasswordReset, acct.ID, record, e.config.Challenge.TTL); err != nil {
		return ErrStoreFailure
	}
	e.metricInc(MetricChallengeIssued)

	link := referrer + "?token=" + token
	if err := e.mailer.Send(acct.Email, subjectResetPassword, resetLinkBody(acct, link)); err != nil {
		e.metricInc(MetricMailFailure)
		if err := e.challenges.Delete(ctx, challenge.PasswordReset, acct.ID, record.SecretHash); err != nil {
			log.Print("plateauth: undelivered reset challenge delete failed")
		}
		return ErrMailDelivery
	}
	e.metricInc(MetricMailSent)
	return nil
}

// ConfirmPasswordReset consumes a reset token and sets the new password for
// the account the token was issued to. The token is deleted on success and
// cannot be replayed.
func (e *Engine) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if len(newPassword) < e.config.Password.MinLength {
		return ErrPasswordTooShort
	}

	record, err := e.challenges.ConsumeToken(ctx, challenge.PasswordReset, internal.HashSecret(token))
	if err != nil {
		switch {
		case errors.Is(err, challenge.ErrNotFound), errors.Is(err, challenge.ErrSecretMismatch):
			return ErrResetTokenInvalid
		default:
			return ErrStoreFailure
		}
	}
	e.metricInc(MetricChallengeConsumed)

	return e.SetPassword(ctx, record.Subject, newPassword)
}
