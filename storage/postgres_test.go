package storage_test

import (
	"api/domain"
	"api/migrations"
	"api/storage"
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var repo *storage.PostgresRepo

func TestMain(m *testing.M) {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine3.22",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testusername"),
		postgres.WithPassword("testpassword"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		panic(err)
	}

	connString, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic(err)
	}

	migrations.Migrate(connString)

	repo, err = storage.NewPostgresRepo(ctx, connString)
	if err != nil {
		panic(err)
	}

	code := m.Run()

	// Cleanup
	postgresContainer.Terminate(ctx)
	os.Exit(code)
}

func TestPostgresRepo_Users(t *testing.T) {
	ctx := context.Background()

	var aliceId string

	t.Run("CreateUser", func(t *testing.T) {
		id, err := repo.CreateUser(ctx, "alice", "hashed_secret")
		assert.NoError(t, err)
		assert.NotEmpty(t, id)
		aliceId = id
	})

	t.Run("CreateUser_Duplicate", func(t *testing.T) {
		_, err := repo.CreateUser(ctx, "alice", "new_hash")
		assert.ErrorIs(t, err, domain.ErrDuplicateNickname)
	})

	t.Run("GetUserByNickname", func(t *testing.T) {
		user, err := repo.GetUserByNickname(ctx, "alice")
		assert.NoError(t, err)
		assert.Equal(t, "alice", user.Nickname)
		assert.Equal(t, "hashed_secret", user.PasswordHash)
		assert.Equal(t, 0, user.Points)
		assert.Equal(t, aliceId, user.Id)
	})

	t.Run("GetUserByNickname_NotFound", func(t *testing.T) {
		_, err := repo.GetUserByNickname(ctx, "ghost_user")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("GetUserById", func(t *testing.T) {
		user, err := repo.GetUserById(ctx, aliceId)
		assert.NoError(t, err)
		assert.Equal(t, "alice", user.Nickname)
	})

	t.Run("UpdateUserSession_And_GetBySessionToken", func(t *testing.T) {
		err := repo.UpdateUserSession(ctx, aliceId, "tok-123", "10.0.0.1")
		require.NoError(t, err)

		user, err := repo.GetUserBySessionToken(ctx, "tok-123")
		assert.NoError(t, err)
		assert.Equal(t, aliceId, user.Id)
		assert.Equal(t, "alice", user.Nickname)
	})

	t.Run("GetUserBySessionToken_EmptyTokenNeverMatches", func(t *testing.T) {
		err := repo.UpdateUserSession(ctx, aliceId, "", "")
		require.NoError(t, err)

		_, err = repo.GetUserBySessionToken(ctx, "")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("UpdateUserPoints", func(t *testing.T) {
		err := repo.UpdateUserPoints(ctx, aliceId, 7)
		require.NoError(t, err)

		user, err := repo.GetUserById(ctx, aliceId)
		require.NoError(t, err)
		assert.Equal(t, 7, user.Points)
	})

	t.Run("UpdateUserPoints_UnknownUser", func(t *testing.T) {
		err := repo.UpdateUserPoints(ctx, "00000000-0000-0000-0000-000000000000", 3)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("TopUsers", func(t *testing.T) {
		id, err := repo.CreateUser(ctx, "bob", "hash2")
		require.NoError(t, err)
		require.NoError(t, repo.UpdateUserPoints(ctx, id, 3))

		entries, err := repo.TopUsers(ctx, 10)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(entries), 2)
		assert.Equal(t, "alice", entries[0].Nickname)
		assert.Equal(t, 1, entries[0].Rank)
		assert.Equal(t, "bob", entries[1].Nickname)
		assert.Equal(t, 2, entries[1].Rank)
	})
}

func TestPostgresRepo_Prompts(t *testing.T) {
	ctx := context.Background()

	t.Run("RandomPrompt_EmptyBank", func(t *testing.T) {
		_, err := repo.RandomPrompt(ctx)
		assert.ErrorIs(t, err, domain.ErrNoPrompts)
	})

	t.Run("CreatePrompt", func(t *testing.T) {
		id, err := repo.CreatePrompt(ctx, domain.Prompt{
			Text:     "Freedom instead of socialism",
			Category: "CDU",
			Election: "Bundestagswahl 1976",
			Source:   "campaign poster archive",
		})
		assert.NoError(t, err)
		assert.NotEmpty(t, id)
	})

	t.Run("CreatePrompt_Duplicate", func(t *testing.T) {
		_, err := repo.CreatePrompt(ctx, domain.Prompt{
			Text:     "Freedom instead of socialism",
			Category: "CDU",
		})
		assert.ErrorIs(t, err, domain.ErrDuplicatePrompt)
	})

	t.Run("RandomPrompt", func(t *testing.T) {
		_, err := repo.CreatePrompt(ctx, domain.Prompt{Text: "Willy must stay chancellor", Category: "SPD"})
		require.NoError(t, err)

		p, err := repo.RandomPrompt(ctx)
		assert.NoError(t, err)
		assert.NotEmpty(t, p.Id)
		assert.NotEmpty(t, p.Text)
		assert.Contains(t, []string{"CDU", "SPD"}, p.Category)
	})

	t.Run("ListCategories", func(t *testing.T) {
		categories, err := repo.ListCategories(ctx)
		assert.NoError(t, err)
		assert.Equal(t, []string{"CDU", "SPD"}, categories)
	})

	t.Run("CountPrompts", func(t *testing.T) {
		count, err := repo.CountPrompts(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}
