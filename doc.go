// Package plateauth provides the account and credential lifecycle engine of
// the Plate backend: account records, password hashing, opaque session
// bearer tokens, and single-use mail-delivered challenges for host
// verification, email confirmation, password reset, and email change.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// plateauth is the public surface. It exposes [Engine], [Builder], [Config],
// the [AccountProvider] and [Mailer] collaborator interfaces, and value types.
// Durable account records live behind the caller-supplied [AccountProvider];
// every ephemeral artifact (session tokens, pending challenges) lives in
// engine-owned Redis stores and never leaks through the public API.
//
// # What this package must NOT do
//
//   - Expose Redis clients, store internals, or record encodings in its
//     public API.
//   - Retry failed collaborator calls; every flow fails fast and lets the
//     caller decide recovery.
//   - Treat "challenge sent" as success: a login that triggers a host
//     verification mail reports [ErrUnknownHost] so callers cannot mistake a
//     pending challenge for an authenticated session.
package plateauth
