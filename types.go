package plateauth

import "context"

// Account is the durable identity record returned by [AccountProvider].
// PasswordHash carries the argon2id PHC string and never leaves the engine
// through any other surface.
type Account struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Confirmed bool

	PasswordHash string

	// Hosts is the flat allow-list of trusted host fingerprints. Membership
	// semantics only; the engine never persists duplicates.
	Hosts []string

	// Properties is the open extension bag, disjoint from the fixed fields
	// above. Keys colliding with a fixed field name are rejected at the
	// engine boundary.
	Properties map[string]string
}

// CreateAccountInput is the input for [AccountProvider.CreateAccount].
type CreateAccountInput struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Confirmed    bool
}

// CreateAccountRequest is the input for [Engine.CreateAccount].
// Email and Password are required; the name fields are optional.
type CreateAccountRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// AccountProvider is the durable persistence collaborator that callers must
// implement to integrate plateauth with their account database. Lookups
// return an error when the record is absent; write operations are expected
// to be individually atomic. Multi-statement transactions are never assumed.
//
// UpdateHosts replaces the full host list. Concurrent logins for the same
// account can race on read-modify-write of that list; the engine accepts
// last-writer-wins there, so a plain UPDATE is a valid implementation.
type AccountProvider interface {
	CreateAccount(ctx context.Context, input CreateAccountInput) error
	AccountByID(ctx context.Context, id string) (Account, error)
	AccountByEmail(ctx context.Context, email string) (Account, error)
	UpdateEmail(ctx context.Context, id, email string) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	UpdateConfirmed(ctx context.Context, id string, confirmed bool) error
	UpdateHosts(ctx context.Context, id string, hosts []string) error
	SetProperty(ctx context.Context, id, name, value string) error
	ClearProperty(ctx context.Context, id, name string) error
}

// Mailer is the out-of-band delivery collaborator. Send delivers a single
// HTML message; a non-nil error aborts the enclosing challenge issuance.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}
