package plateauth

import "errors"

var (
	// ErrEngineNotReady is an exported constant or variable used by the account engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrInvalidEmail is an exported constant or variable used by the account engine.
	ErrInvalidEmail = errors.New("invalid e-mail address")
	// ErrEmailExists is an exported constant or variable used by the account engine.
	ErrEmailExists = errors.New("e-mail already exists")
	// ErrAccountNotExists is returned by Login when no account owns the given
	// e-mail. The 409 classification mirrors the historical behavior of the
	// framework and is deliberately kept.
	ErrAccountNotExists = errors.New("account doesn't exist")
	// ErrAccountNotFound is an exported constant or variable used by the account engine.
	ErrAccountNotFound = errors.New("account not found")
	// ErrPasswordTooShort is an exported constant or variable used by the account engine.
	ErrPasswordTooShort = errors.New("password is too short")
	// ErrWrongPassword is an exported constant or variable used by the account engine.
	ErrWrongPassword = errors.New("incorrect password")
	// ErrUnknownHost signals that the login came from an untrusted host and a
	// confirmation code has been mailed. The attempt itself is a failure; the
	// caller must retry with the code.
	ErrUnknownHost = errors.New("unknown host, a confirmation code has been sent")
	// ErrInvalidCode is an exported constant or variable used by the account engine.
	ErrInvalidCode = errors.New("invalid confirmation code")
	// ErrNoPendingCode is an exported constant or variable used by the account engine.
	ErrNoPendingCode = errors.New("no valid confirmation code found")
	// ErrAlreadyConfirmed is an exported constant or variable used by the account engine.
	ErrAlreadyConfirmed = errors.New("e-mail already confirmed")
	// ErrHostNotFound is an exported constant or variable used by the account engine.
	ErrHostNotFound = errors.New("host not found")
	// ErrReservedProperty is an exported constant or variable used by the account engine.
	ErrReservedProperty = errors.New("can't access detail properties")
	// ErrEmptyValue is an exported constant or variable used by the account engine.
	ErrEmptyValue = errors.New("can't set property with empty value")
	// ErrNoMailer is an exported constant or variable used by the account engine.
	ErrNoMailer = errors.New("no mail client specified")
	// ErrNoReferrer is an exported constant or variable used by the account engine.
	ErrNoReferrer = errors.New("no referrer given")
	// ErrNoClientHost is returned by Login when the context carries no host
	// fingerprint and a host challenge would have to be issued. Without a
	// fingerprint there is nothing to bind the challenge to or to trust
	// afterwards.
	ErrNoClientHost = errors.New("no client host given")
	// ErrTokenInvalid is an exported constant or variable used by the account engine.
	ErrTokenInvalid = errors.New("invalid authentication token")
	// ErrResetTokenInvalid is an exported constant or variable used by the account engine.
	ErrResetTokenInvalid = errors.New("invalid password reset token")
	// ErrChangeTokenInvalid is an exported constant or variable used by the account engine.
	ErrChangeTokenInvalid = errors.New("invalid change e-mail token")
	// ErrMailDelivery is an exported constant or variable used by the account engine.
	ErrMailDelivery = errors.New("couldn't send mail")
	// ErrStoreFailure is an exported constant or variable used by the account engine.
	ErrStoreFailure = errors.New("persistence failure")
)

// StatusCode maps an engine error to its HTTP-flavored classification.
// Unknown errors classify as 500. The taxonomy preserves the framework's
// historical choices: an unknown login e-mail is a 409, code-based challenge
// mismatches are 403, and link-token mismatches are 401.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return 200
	case errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrPasswordTooShort),
		errors.Is(err, ErrReservedProperty),
		errors.Is(err, ErrEmptyValue),
		errors.Is(err, ErrNoMailer),
		errors.Is(err, ErrNoReferrer),
		errors.Is(err, ErrNoClientHost):
		return 400
	case errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrResetTokenInvalid),
		errors.Is(err, ErrChangeTokenInvalid):
		return 401
	case errors.Is(err, ErrWrongPassword),
		errors.Is(err, ErrUnknownHost),
		errors.Is(err, ErrInvalidCode):
		return 403
	case errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrNoPendingCode),
		errors.Is(err, ErrHostNotFound):
		return 404
	case errors.Is(err, ErrEmailExists),
		errors.Is(err, ErrAccountNotExists),
		errors.Is(err, ErrAlreadyConfirmed):
		return 409
	default:
		return 500
	}
}
