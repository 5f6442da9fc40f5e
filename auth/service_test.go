package auth_test

import (
	"api/auth"
	"api/domain"
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockUserRepo struct {
	users       []*domain.User
	freshPoints map[string]int // overrides points on id lookups
}

func (r *MockUserRepo) CreateUser(ctx context.Context, nickname, passwordHash string) (string, error) {
	for _, u := range r.users {
		if u.Nickname == nickname {
			return "", domain.ErrDuplicateNickname
		}
	}
	id := "user-" + strconv.Itoa(len(r.users)+1)
	r.users = append(r.users, &domain.User{Id: id, Nickname: nickname, PasswordHash: passwordHash})
	return id, nil
}

func (r *MockUserRepo) GetUserByNickname(ctx context.Context, nickname string) (domain.User, error) {
	for _, u := range r.users {
		if u.Nickname == nickname {
			return *u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (r *MockUserRepo) GetUserById(ctx context.Context, id string) (domain.User, error) {
	for _, u := range r.users {
		if u.Id == id {
			found := *u
			if points, ok := r.freshPoints[id]; ok {
				found.Points = points
			}
			return found, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (r *MockUserRepo) GetUserBySessionToken(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, domain.ErrUserNotFound
	}
	for _, u := range r.users {
		if u.SessionToken == token {
			return *u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (r *MockUserRepo) UpdateUserSession(ctx context.Context, userId, token, ip string) error {
	for _, u := range r.users {
		if u.Id == userId {
			u.SessionToken = token
			u.LastLoginIp = ip
			return nil
		}
	}
	return domain.ErrUserNotFound
}

type MockPasswordHasher struct{}

func (MockPasswordHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (MockPasswordHasher) Compare(hash, password string) (bool, error) {
	return hash == "hashed:"+password, nil
}

type MockTokenMinter struct {
	next int
}

func (m *MockTokenMinter) Generate() string {
	m.next++
	return "token-" + strconv.Itoa(m.next)
}

func TestServiceRegister(t *testing.T) {
	repo := &MockUserRepo{}
	service := auth.NewService(repo, MockPasswordHasher{}, &MockTokenMinter{})
	ctx := context.Background()

	tests := []struct {
		description string
		nickname    string
		password    string
		expected    error
	}{
		{"normal", "anna", "secret99", nil},
		{"with umlauts", "müller_18", "secret99", nil},
		{"duplicate nickname", "anna", "secret99", domain.ErrDuplicateNickname},
		{"nickname at limit", "abcdefghijklmnopqr", "secret99", nil},
		{"nickname too long", "abcdefghijklmnopqrs", "secret99", auth.ErrInvalidNicknameFormat},
		{"empty nickname", "", "secret99", auth.ErrInvalidNicknameFormat},
		{"short password", "ben", "12345", auth.ErrWeakPassword},
		{"empty password", "ben", "", auth.ErrWeakPassword},
	}

	for _, tc := range tests {
		_, err := service.Register(ctx, tc.nickname, tc.password)
		assert.ErrorIs(t, err, tc.expected, tc.description)
	}
}

func TestServiceLogin(t *testing.T) {
	repo := &MockUserRepo{}
	service := auth.NewService(repo, MockPasswordHasher{}, &MockTokenMinter{})
	ctx := context.Background()

	_, err := service.Register(ctx, "anna", "secret99")
	require.NoError(t, err)

	t.Run("Unknown Nickname", func(t *testing.T) {
		_, err := service.Login(ctx, "ghost", "secret99", "10.0.0.1")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		_, err := service.Login(ctx, "anna", "wrong999", "10.0.0.1")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("Success Persists The Session", func(t *testing.T) {
		result, err := service.Login(ctx, "anna", "secret99", "10.0.0.1")
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "anna", result.Nickname)

		stored, err := repo.GetUserByNickname(ctx, "anna")
		require.NoError(t, err)
		assert.Equal(t, result.Token, stored.SessionToken)
		assert.Equal(t, "10.0.0.1", stored.LastLoginIp)
	})
}

func TestServiceResolve(t *testing.T) {
	repo := &MockUserRepo{}
	service := auth.NewService(repo, MockPasswordHasher{}, &MockTokenMinter{})
	ctx := context.Background()

	userId, err := service.Register(ctx, "anna", "secret99")
	require.NoError(t, err)
	login, err := service.Login(ctx, "anna", "secret99", "10.0.0.1")
	require.NoError(t, err)

	t.Run("Valid Token", func(t *testing.T) {
		identity, err := service.Resolve(ctx, login.Token)
		require.NoError(t, err)
		assert.Equal(t, userId, identity.UserId)
		assert.Equal(t, "anna", identity.Nickname)
	})

	t.Run("Cached Resolution Reads Points Fresh", func(t *testing.T) {
		repo.freshPoints = map[string]int{userId: 42}
		identity, err := service.Resolve(ctx, login.Token)
		require.NoError(t, err)
		assert.Equal(t, 42, identity.Points)
	})

	t.Run("Empty Token", func(t *testing.T) {
		_, err := service.Resolve(ctx, "")
		assert.ErrorIs(t, err, auth.ErrInvalidSession)
	})

	t.Run("Unknown Token", func(t *testing.T) {
		_, err := service.Resolve(ctx, "definitely-not-issued")
		assert.ErrorIs(t, err, auth.ErrInvalidSession)
	})

	t.Run("Persisted Session Survives A Cold Cache", func(t *testing.T) {
		// a fresh service shares the repo but not the in-memory cache,
		// like after a restart
		cold := auth.NewService(repo, MockPasswordHasher{}, &MockTokenMinter{})
		identity, err := cold.Resolve(ctx, login.Token)
		require.NoError(t, err)
		assert.Equal(t, userId, identity.UserId)
	})
}

func TestServiceLogout(t *testing.T) {
	repo := &MockUserRepo{}
	service := auth.NewService(repo, MockPasswordHasher{}, &MockTokenMinter{})
	ctx := context.Background()

	_, err := service.Register(ctx, "anna", "secret99")
	require.NoError(t, err)
	login, err := service.Login(ctx, "anna", "secret99", "10.0.0.1")
	require.NoError(t, err)

	require.NoError(t, service.Logout(ctx, login.Token))

	_, err = service.Resolve(ctx, login.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidSession)

	stored, err := repo.GetUserByNickname(ctx, "anna")
	require.NoError(t, err)
	assert.Empty(t, stored.SessionToken)

	assert.ErrorIs(t, service.Logout(ctx, login.Token), auth.ErrInvalidSession)
}

func TestServiceCheckNickname(t *testing.T) {
	repo := &MockUserRepo{}
	service := auth.NewService(repo, MockPasswordHasher{}, &MockTokenMinter{})
	ctx := context.Background()

	_, err := service.Register(ctx, "anna", "secret99")
	require.NoError(t, err)

	assert.NoError(t, service.CheckNickname(ctx, "ben"))
	assert.ErrorIs(t, service.CheckNickname(ctx, "anna"), domain.ErrDuplicateNickname)
	assert.ErrorIs(t, service.CheckNickname(ctx, ""), auth.ErrInvalidNicknameFormat)
}
