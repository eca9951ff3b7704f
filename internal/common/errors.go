// Package common defines shared constants and sentinel errors used across
// proofpay components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Account/session errors. ErrorInvalidCredentials deliberately covers both
	// a wrong password and a failed envelope decryption so that callers cannot
	// tell the two apart.
	ErrorInvalidCredentials = errors.New("invalid email or password")
	ErrorValidation         = errors.New("validation error")

	// Auth errors (invalid or malformed session token).
	ErrInvalidToken = errors.New("invalid token")

	// External engine errors.
	ErrorWalletLifecycle = errors.New("wallet engine failure")
)
