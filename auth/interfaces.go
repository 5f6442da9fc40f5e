package auth

import (
	"api/domain"
	"context"
)

type UserRepo interface {
	CreateUser(ctx context.Context, nickname string, passwordHash string) (string, error)
	GetUserByNickname(ctx context.Context, nickname string) (domain.User, error)
	GetUserById(ctx context.Context, id string) (domain.User, error)
	GetUserBySessionToken(ctx context.Context, token string) (domain.User, error)
	UpdateUserSession(ctx context.Context, userId, token, ip string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

type TokenMinter interface {
	Generate() string
}
