package plateauth

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/platekit/plateauth/challenge"
	"github.com/platekit/plateauth/internal"
)

// RequestEmailChange issues a single-use change token carrying the new
// address as payload and mails a confirmation link to the NEW address.
// Issuing supersedes any pending change token for the account.
func (e *Engine) RequestEmailChange(ctx context.Context, id, newEmail, referrer string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if e.mailer == nil {
		return ErrNoMailer
	}
	if referrer == "" {
		return ErrNoReferrer
	}
	if !validEmail(newEmail) {
		return ErrInvalidEmail
	}
	if _, err := e.accounts.AccountByEmail(ctx, newEmail); err == nil {
		return ErrEmailExists
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
		Payload:    newEmail,
		ExpiresAt:  time.Now().Add(e.config.Challenge.TTL).Unix(),
	}
	if err := e.challenges.PutToken(ctx, challenge.EmailChange, acct.ID, record, e.config.Challenge.TTL); err != nil {
		return ErrStoreFailure
	}
	e.metricInc(MetricChallengeIssued)

	link := referrer + "?token=" + token
	if err := e.mailer.Send(newEmail, subjectChangeEmail, changeLinkBody(acct, link)); err != nil {
		e.metricInc(MetricMailFailure)
		if err := e.challenges.Delete(ctx, challenge.EmailChange, acct.ID, record.SecretHash); err != nil {
			log.Print("plateauth: undelivered change challenge delete failed")
		}
		return ErrMailDelivery
	}
	e.metricInc(MetricMailSent)
	return nil
}

// ConfirmEmailChange consumes a change token and applies the carried new
// address to the account the token was issued to. Uniqueness is re-checked
// at apply time, so an address registered meanwhile still fails with
// [ErrEmailExists].
func (e *Engine) ConfirmEmailChange(ctx context.Context, token string) (*Account, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	record, err := e.challenges.ConsumeToken(ctx, challenge.EmailChange, internal.HashSecret(token))
	if err != nil {
		switch {
		case errors.Is(err, challenge.ErrNotFound), errors.Is(err, challenge.ErrSecretMismatch):
			return nil, ErrChangeTokenInvalid
		default:
			return nil, ErrStoreFailure
		}
	}
	e.metricInc(MetricChallengeConsumed)

	return e.SetEmail(ctx, record.Subject, record.Payload)
}
