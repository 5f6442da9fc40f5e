package domain

import "errors"

var (
	UnexpectedDatabaseError = errors.New("database-error")
	ErrDuplicateNickname    = errors.New("duplicate-nickname")
	ErrUserNotFound         = errors.New("user-not-found")
	ErrNoPrompts            = errors.New("no-prompts-available")
	ErrDuplicatePrompt      = errors.New("duplicate-prompt")
)

var UnexpectedHashingError = errors.New("hashing-error")
