package service

import "errors"

// Failure taxonomy returned up through the handlers; the transport edge
// maps these onto HTTP status codes and nothing else leaks to the caller.
var (
	ErrValidation            = errors.New("invalid input")
	ErrNotFound              = errors.New("user not found")
	ErrInvalidCredential     = errors.New("invalid credentials")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrEmailNotVerified      = errors.New("email not verified")
	ErrConflict              = errors.New("user already exists")
)
