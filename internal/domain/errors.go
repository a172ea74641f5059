package domain

import "errors"

// Authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked due to too many failed login attempts")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrSessionInvalid     = errors.New("invalid or expired session token")
)

// Password reset errors
var (
	ErrResetTokenNotFound = errors.New("reset token not found")
	ErrResetTokenInvalid  = errors.New("invalid reset token")
	ErrResetTokenUsed     = errors.New("reset token already used")
	ErrResetTokenExpired  = errors.New("reset token expired")
)

// Delivery errors
var (
	ErrEmailDelivery = errors.New("could not send email")
)
