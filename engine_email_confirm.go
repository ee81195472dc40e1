package plateauth

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/platekit/plateauth/challenge"
	"github.com/platekit/plateauth/internal"
)

// RequestEmailConfirmation issues a mail verification code for the account's
// current address and delivers it. Issuing supersedes any pending code for
// the same address. When delivery fails the fresh challenge is withdrawn and
// the operation reports [ErrMailDelivery].
func (e *Engine) RequestEmailConfirmation(ctx context.Context, id string) error {
	if err := e.ready(); err != nil {
		return err
	}

	acct, err := e.Account(ctx, id)
	if err != nil {
		return err
	}
	if acct.Confirmed {
		return ErrAlreadyConfirmed
	}
	if e.mailer == nil {
		return ErrNoMailer
	}

	code, err := internal.NewCode(e.config.Challenge.OTPDigits)
	if err != nil {
		return ErrStoreFailure
	}

	record := &challenge.Record{
		Subject:    acct.Email,
		SecretHash: internal.HashSecret(code),
		ExpiresAt:  time.Now().Add(e.config.Challenge.TTL).Unix(),
	}
	if err := e.challenges.Put(ctx, challenge.MailVerification, acct.Email, record, e.config.Challenge.TTL); err != nil {
		return ErrStoreFailure
	}
	e.metricInc(MetricChallengeIssued)

	if err := e.mailer.Send(acct.Email, subjectConfirmEmail, confirmCodeBody(acct, code)); err != nil {
		e.metricInc(MetricMailFailure)
		if err := e.challenges.Delete(ctx, challenge.MailVerification, acct.Email, record.SecretHash); err != nil {
			log.Print("plateauth: undelivered confirmation challenge delete failed")
		}
		return ErrMailDelivery
	}
	e.metricInc(MetricMailSent)
	return nil
}

// ConfirmEmail consumes the pending verification code for the account's
// address and flips the confirmed flag. The code is single-use: a second
// confirmation with the same code reports [ErrNoPendingCode].
func (e *Engine) ConfirmEmail(ctx context.Context, id, code string) error {
	if err := e.ready(); err != nil {
		return err
	}

	acct, err := e.Account(ctx, id)
	if err != nil {
		return err
	}
	if acct.Confirmed {
		return ErrAlreadyConfirmed
	}

	_, err = e.challenges.Consume(ctx, challenge.MailVerification, acct.Email, internal.HashSecret(code))
	if err != nil {
		switch {
		case errors.Is(err, challenge.ErrNotFound):
			return ErrNoPendingCode
		case errors.Is(err, challenge.ErrSecretMismatch):
			return ErrInvalidCode
		default:
			return ErrStoreFailure
		}
	}
	e.metricInc(MetricChallengeConsumed)

	if err := e.accounts.UpdateConfirmed(ctx, id, true); err != nil {
		return ErrStoreFailure
	}
	return nil
}
