package auth

import (
	"api/domain"
	"context"
	"errors"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

const (
	maxNicknameLength = 18
	minPasswordLength = 6
)

// Identity is a verified player identity, resolved from a session token.
type Identity struct {
	UserId   string
	Nickname string
	Points   int
}

type LoginResult struct {
	Token    string
	UserId   string
	Nickname string
	Points   int
}

// Service owns account registration and the session-token lifecycle.
// Resolved sessions are cached in memory; the users table stays the
// source of truth so tokens survive a restart.
type Service struct {
	users  UserRepo
	hasher PasswordHasher
	tokens TokenMinter

	mu       sync.Mutex
	sessions map[string]string // token -> user id
}

func NewService(users UserRepo, hasher PasswordHasher, tokens TokenMinter) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		sessions: make(map[string]string),
	}
}

func validNicknameFormat(nickname string) bool {
	n := utf8.RuneCountInString(nickname)
	return n >= 1 && n <= maxNicknameLength
}

func (s *Service) Register(ctx context.Context, nickname, password string) (string, error) {
	if !validNicknameFormat(nickname) {
		return "", ErrInvalidNicknameFormat
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return "", ErrWeakPassword
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return "", err
	}

	id, err := s.users.CreateUser(ctx, nickname, passwordHash)
	if err != nil {
		return "", err
	}

	log.Info().Str("nickname", nickname).Msg("account created")
	return id, nil
}

func (s *Service) Login(ctx context.Context, nickname, password, ip string) (LoginResult, error) {
	user, err := s.users.GetUserByNickname(ctx, nickname)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	match, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		return LoginResult{}, err
	}
	if !match {
		return LoginResult{}, ErrInvalidCredentials
	}

	token := s.tokens.Generate()
	if err := s.users.UpdateUserSession(ctx, user.Id, token, ip); err != nil {
		return LoginResult{}, err
	}

	s.mu.Lock()
	s.sessions[token] = user.Id
	s.mu.Unlock()

	log.Info().Str("nickname", nickname).Str("ip", ip).Msg("login")

	return LoginResult{
		Token:    token,
		UserId:   user.Id,
		Nickname: user.Nickname,
		Points:   user.Points,
	}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	identity, err := s.Resolve(ctx, token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()

	if err := s.users.UpdateUserSession(ctx, identity.UserId, "", ""); err != nil {
		return err
	}

	log.Info().Str("user_id", identity.UserId).Msg("logout")
	return nil
}

// Resolve maps a session token to a verified identity. The cache
// shadows the store: it answers the token -> user id step, while
// nickname and points are always read fresh so scores stay current.
func (s *Service) Resolve(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrInvalidSession
	}

	s.mu.Lock()
	userId, cached := s.sessions[token]
	s.mu.Unlock()

	if cached {
		user, err := s.users.GetUserById(ctx, userId)
		if err == nil {
			return Identity{UserId: user.Id, Nickname: user.Nickname, Points: user.Points}, nil
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return Identity{}, err
		}
		// stale cache entry, fall through to the store lookup
	}

	user, err := s.users.GetUserBySessionToken(ctx, token)
	if err != nil {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		if errors.Is(err, domain.ErrUserNotFound) {
			return Identity{}, ErrInvalidSession
		}
		return Identity{}, err
	}

	s.mu.Lock()
	s.sessions[token] = user.Id
	s.mu.Unlock()

	return Identity{UserId: user.Id, Nickname: user.Nickname, Points: user.Points}, nil
}

// CheckNickname reports whether a nickname is free to register.
func (s *Service) CheckNickname(ctx context.Context, nickname string) error {
	if !validNicknameFormat(nickname) {
		return ErrInvalidNicknameFormat
	}

	_, err := s.users.GetUserByNickname(ctx, nickname)
	if err == nil {
		return domain.ErrDuplicateNickname
	}
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil
	}
	return err
}
