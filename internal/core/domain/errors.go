package domain

import "errors"

// Expected failure modes. Services return these as values; the HTTP layer
// maps them to status codes in one place (internal/api error handler).
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailTaken         = errors.New("email is already in use")
	ErrDealNotFound       = errors.New("deal not found")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrInvalidStage       = errors.New("invalid deal stage")
	ErrInvalidStatus      = errors.New("invalid deal status")
	ErrInvalidRole        = errors.New("invalid role")
)
