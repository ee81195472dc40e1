package plateauth

import (
	"context"
	"net/mail"
	"slices"

	"github.com/platekit/plateauth/internal"
)

// reservedAccountProperties are the fixed account fields, by their external
// column names. The property bag rejects them at the boundary so extension
// keys can never shadow a detail field.
var reservedAccountProperties = map[string]struct{}{
	"id":         {},
	"uuid":       {},
	"first_name": {},
	"last_name":  {},
	"email":      {},
	"confirmed":  {},
	"password":   {},
	"hosts":      {},
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// CreateAccount describes the createaccount operation and its observable behavior.
//
// CreateAccount may return an error when input validation, dependency calls, or security checks fail.
// CreateAccount does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CreateAccount(ctx context.Context, req CreateAccountRequest) (*Account, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if !validEmail(req.Email) {
		return nil, ErrInvalidEmail
	}
	if _, err := e.accounts.AccountByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	}
	if len(req.Password) < e.config.Password.MinLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		return nil, ErrStoreFailure
	}

	id := internal.NewAccountID()
	input := CreateAccountInput{
		ID:           id,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		Confirmed:    false,
	}
	if err := e.accounts.CreateAccount(ctx, input); err != nil {
		return nil, ErrStoreFailure
	}

	e.metricInc(MetricAccountCreated)
	return e.Account(ctx, id)
}

// Account fetches an account by its id.
func (e *Engine) Account(ctx context.Context, id string) (*Account, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	acct, err := e.accounts.AccountByID(ctx, id)
	if err != nil {
		return nil, ErrAccountNotFound
	}
	return &acct, nil
}

// AccountByEmail resolves an e-mail address to its account.
func (e *Engine) AccountByEmail(ctx context.Context, email string) (*Account, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}

	acct, err := e.accounts.AccountByEmail(ctx, email)
	if err != nil {
		return nil, ErrAccountNotFound
	}
	return &acct, nil
}

// SetProperty describes the setproperty operation and its observable behavior.
//
// SetProperty may return an error when input validation, dependency calls, or security checks fail.
// SetProperty does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SetProperty(ctx context.Context, id, name, value string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if _, reserved := reservedAccountProperties[name]; reserved {
		return ErrReservedProperty
	}
	if value == "" {
		return ErrEmptyValue
	}

	if err := e.accounts.SetProperty(ctx, id, name, value); err != nil {
		return ErrStoreFailure
	}
	return nil
}

// ClearProperty describes the clearproperty operation and its observable behavior.
//
// ClearProperty may return an error when input validation, dependency calls, or security checks fail.
// ClearProperty does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ClearProperty(ctx context.Context, id, name string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if _, reserved := reservedAccountProperties[name]; reserved {
		return ErrReservedProperty
	}

	if err := e.accounts.ClearProperty(ctx, id, name); err != nil {
		return ErrStoreFailure
	}
	return nil
}

// SetEmail describes the setemail operation and its observable behavior.
//
// SetEmail may return an error when input validation, dependency calls, or security checks fail.
// SetEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SetEmail(ctx context.Context, id, email string) (*Account, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if existing, err := e.accounts.AccountByEmail(ctx, email); err == nil && existing.ID != id {
		return nil, ErrEmailExists
	}

	if err := e.accounts.UpdateEmail(ctx, id, email); err != nil {
		return nil, ErrStoreFailure
	}
	return e.Account(ctx, id)
}

// SetPassword describes the setpassword operation and its observable behavior.
//
// SetPassword may return an error when input validation, dependency calls, or security checks fail.
// SetPassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SetPassword(ctx context.Context, id, newPassword string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if len(newPassword) < e.config.Password.MinLength {
		return ErrPasswordTooShort
	}

	hash, err := e.passwordHash.Hash(newPassword)
	if err != nil {
		return ErrStoreFailure
	}
	if err := e.accounts.UpdatePasswordHash(ctx, id, hash); err != nil {
		return ErrStoreFailure
	}
	return nil
}

// AddTrustedHost appends host to the account's trusted set. Adding a host
// that is already present succeeds without a write. The read-modify-write
// on the host list is last-writer-wins under concurrent logins; a lost
// addition only costs one more future challenge.
func (e *Engine) AddTrustedHost(ctx context.Context, id, host string) error {
	if err := e.ready(); err != nil {
		return err
	}

	acct, err := e.accounts.AccountByID(ctx, id)
	if err != nil {
		return ErrAccountNotFound
	}
	if slices.Contains(acct.Hosts, host) {
		return nil
	}

	hosts := append(slices.Clone(acct.Hosts), host)
	if err := e.accounts.UpdateHosts(ctx, id, hosts); err != nil {
		return ErrStoreFailure
	}
	return nil
}

// RemoveTrustedHost describes the removetrustedhost operation and its observable behavior.
//
// RemoveTrustedHost may return an error when input validation, dependency calls, or security checks fail.
// RemoveTrustedHost does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RemoveTrustedHost(ctx context.Context, id, host string) error {
	if err := e.ready(); err != nil {
		return err
	}

	acct, err := e.accounts.AccountByID(ctx, id)
	if err != nil {
		return ErrAccountNotFound
	}
	if !slices.Contains(acct.Hosts, host) {
		return ErrHostNotFound
	}

	hosts := slices.DeleteFunc(slices.Clone(acct.Hosts), func(h string) bool {
		return h == host
	})
	if err := e.accounts.UpdateHosts(ctx, id, hosts); err != nil {
		return ErrStoreFailure
	}
	return nil
}

// UnconfirmEmail resets the confirmed flag, forcing the account back
// through the confirmation flow.
func (e *Engine) UnconfirmEmail(ctx context.Context, id string) error {
	if err := e.ready(); err != nil {
		return err
	}

	if err := e.accounts.UpdateConfirmed(ctx, id, false); err != nil {
		return ErrStoreFailure
	}
	return nil
}
