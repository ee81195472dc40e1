package plateauth

import (
	"context"
	"errors"
	"log"
	"slices"
	"time"

	"github.com/platekit/plateauth/challenge"
	"github.com/platekit/plateauth/internal"
	"github.com/platekit/plateauth/session"
)

// Login authenticates email/password and returns a session token. The
// requester's host fingerprint is taken from ctx (see [WithClientIP]).
//
// Known host: the token is issued directly. Unknown host with no code
// presented: a host verification challenge is created and mailed, and the
// attempt fails with [ErrUnknownHost] and the caller retries with the code.
// Unknown host with a code: the pending challenge is consumed, the
// challenge's host joins the trusted set, and the token is issued.
func (e *Engine) Login(ctx context.Context, email, password, code string) (*session.Token, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if !validEmail(email) {
		e.metricInc(MetricLoginFailure)
		return nil, ErrInvalidEmail
	}

	acct, err := e.accounts.AccountByEmail(ctx, email)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, ErrAccountNotExists
	}

	ok, err := e.passwordHash.Verify(password, acct.PasswordHash)
	if err != nil || !ok {
		e.metricInc(MetricLoginFailure)
		return nil, ErrWrongPassword
	}

	host := clientIPFromContext(ctx)
	if host != "" && slices.Contains(acct.Hosts, host) {
		return e.issueLoginToken(ctx, acct.ID)
	}

	if code == "" {
		if err := e.issueHostChallenge(ctx, &acct, host); err != nil {
			e.metricInc(MetricLoginFailure)
			return nil, err
		}
		e.metricInc(MetricLoginChallengeIssued)
		return nil, ErrUnknownHost
	}

	record, err := e.challenges.Consume(ctx, challenge.HostVerification, acct.ID, internal.HashSecret(code))
	if err != nil {
		e.metricInc(MetricLoginFailure)
		switch {
		case errors.Is(err, challenge.ErrNotFound), errors.Is(err, challenge.ErrSecretMismatch):
			return nil, ErrInvalidCode
		default:
			return nil, ErrStoreFailure
		}
	}
	e.metricInc(MetricChallengeConsumed)

	// The trusted host comes from the challenge payload, bound at issuance.
	if err := e.AddTrustedHost(ctx, acct.ID, record.Payload); err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, ErrStoreFailure
	}

	return e.issueLoginToken(ctx, acct.ID)
}

func (e *Engine) issueLoginToken(ctx context.Context, accountID string) (*session.Token, error) {
	token, err := e.sessions.Issue(ctx, accountID)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, ErrStoreFailure
	}
	e.metricInc(MetricTokenIssued)
	e.metricInc(MetricLoginSuccess)
	return token, nil
}

func (e *Engine) issueHostChallenge(ctx context.Context, acct *Account, host string) error {
	if host == "" {
		return ErrNoClientHost
	}
	if e.mailer == nil {
		return ErrNoMailer
	}

	code, err := internal.NewCode(e.config.Challenge.OTPDigits)
	if err != nil {
		return ErrStoreFailure
	}

	record := &challenge.Record{
		Subject:    acct.ID,
		SecretHash: internal.HashSecret(code),
		Payload:    host,
		ExpiresAt:  time.Now().Add(e.config.Challenge.TTL).Unix(),
	}
	if err := e.challenges.Put(ctx, challenge.HostVerification, acct.ID, record, e.config.Challenge.TTL); err != nil {
		return ErrStoreFailure
	}
	e.metricInc(MetricChallengeIssued)

	if err := e.mailer.Send(acct.Email, subjectConfirmLogin, loginCodeBody(acct, code)); err != nil {
		e.metricInc(MetricMailFailure)
		// Withdraw the unusable challenge; it would expire on its own, so a
		// failed delete is only logged.
		if err := e.challenges.Delete(ctx, challenge.HostVerification, acct.ID, record.SecretHash); err != nil {
			log.Print("plateauth: undelivered host challenge delete failed")
		}
		return ErrMailDelivery
	}
	e.metricInc(MetricMailSent)
	return nil
}
