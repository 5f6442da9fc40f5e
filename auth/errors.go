package auth

import "errors"

// Register errors
var (
	ErrInvalidNicknameFormat = errors.New("invalid-nickname-format")
	ErrWeakPassword          = errors.New("weak-password")
)

// Login / session errors
var (
	ErrInvalidCredentials = errors.New("invalid-credentials")
	ErrInvalidSession     = errors.New("invalid-session")
)
