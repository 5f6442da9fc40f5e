package storage

import (
	"api/domain"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresRepo{pool: pool}, nil
}

func (pgr *PostgresRepo) Close() {
	pgr.pool.Close()
}

func wrapQueryError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
}

func (pgr *PostgresRepo) CreateUser(ctx context.Context, nickname string, passwordHash string) (string, error) {
	row := pgr.pool.QueryRow(ctx,
		"INSERT INTO users(nickname, password_hash) VALUES($1, $2) RETURNING id",
		nickname, passwordHash)

	var id string
	err := row.Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// "23505" is the PostgreSQL error code for unique_violation
			if pgErr.Code == "23505" {
				return "", domain.ErrDuplicateNickname
			}
		}
		return "", wrapQueryError(err)
	}

	return id, nil
}

func (pgr *PostgresRepo) GetUserByNickname(ctx context.Context, nickname string) (domain.User, error) {
	user := domain.User{Nickname: nickname}

	row := pgr.pool.QueryRow(ctx,
		"SELECT id, password_hash, points FROM users WHERE nickname = $1", nickname)

	err := row.Scan(&user.Id, &user.PasswordHash, &user.Points)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, wrapQueryError(err)
	}

	return user, nil
}

func (pgr *PostgresRepo) GetUserById(ctx context.Context, id string) (domain.User, error) {
	user := domain.User{Id: id}

	row := pgr.pool.QueryRow(ctx,
		"SELECT nickname, password_hash, points FROM users WHERE id = $1", id)

	err := row.Scan(&user.Nickname, &user.PasswordHash, &user.Points)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, wrapQueryError(err)
	}

	return user, nil
}

func (pgr *PostgresRepo) GetUserBySessionToken(ctx context.Context, token string) (domain.User, error) {
	var user domain.User

	row := pgr.pool.QueryRow(ctx,
		"SELECT id, nickname, points FROM users WHERE session_token = $1 AND session_token <> ''", token)

	err := row.Scan(&user.Id, &user.Nickname, &user.Points)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, wrapQueryError(err)
	}

	return user, nil
}

func (pgr *PostgresRepo) UpdateUserSession(ctx context.Context, userId, token, ip string) error {
	tag, err := pgr.pool.Exec(ctx,
		"UPDATE users SET session_token = $2, last_login_ip = $3, last_login_time = now() WHERE id = $1",
		userId, token, ip)
	if err != nil {
		return wrapQueryError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// UpdateUserPoints persists a player's cumulative score.
func (pgr *PostgresRepo) UpdateUserPoints(ctx context.Context, userId string, points int) error {
	tag, err := pgr.pool.Exec(ctx,
		"UPDATE users SET points = $2 WHERE id = $1", userId, points)
	if err != nil {
		return wrapQueryError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (pgr *PostgresRepo) TopUsers(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := pgr.pool.Query(ctx,
		"SELECT nickname, points FROM users ORDER BY points DESC, nickname ASC LIMIT $1", limit)
	if err != nil {
		return nil, wrapQueryError(err)
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0, limit)
	for rows.Next() {
		entry := domain.LeaderboardEntry{Rank: len(entries) + 1}
		if err := rows.Scan(&entry.Nickname, &entry.Points); err != nil {
			return nil, wrapQueryError(err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError(err)
	}

	return entries, nil
}

// RandomPrompt picks one uniformly random entry of the question bank.
func (pgr *PostgresRepo) RandomPrompt(ctx context.Context) (domain.Prompt, error) {
	var p domain.Prompt
	var published *time.Time

	row := pgr.pool.QueryRow(ctx,
		"SELECT id, text, category, election, published_on, source FROM prompts ORDER BY RANDOM() LIMIT 1")

	err := row.Scan(&p.Id, &p.Text, &p.Category, &p.Election, &published, &p.Source)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Prompt{}, domain.ErrNoPrompts
		}
		return domain.Prompt{}, wrapQueryError(err)
	}
	if published != nil {
		p.Published = *published
	}

	return p, nil
}

func (pgr *PostgresRepo) CreatePrompt(ctx context.Context, p domain.Prompt) (string, error) {
	var published *time.Time
	if !p.Published.IsZero() {
		published = &p.Published
	}

	row := pgr.pool.QueryRow(ctx,
		"INSERT INTO prompts(text, category, election, published_on, source) VALUES($1, $2, $3, $4, $5) RETURNING id",
		p.Text, p.Category, p.Election, published, p.Source)

	var id string
	err := row.Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", domain.ErrDuplicatePrompt
		}
		return "", wrapQueryError(err)
	}

	return id, nil
}

// ListCategories returns the distinct answer categories of the bank,
// sorted, for clients to render as answer buttons.
func (pgr *PostgresRepo) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := pgr.pool.Query(ctx,
		"SELECT DISTINCT category FROM prompts ORDER BY category")
	if err != nil {
		return nil, wrapQueryError(err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, wrapQueryError(err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError(err)
	}

	return categories, nil
}

func (pgr *PostgresRepo) CountPrompts(ctx context.Context) (int, error) {
	var count int
	err := pgr.pool.QueryRow(ctx, "SELECT COUNT(*) FROM prompts").Scan(&count)
	if err != nil {
		return 0, wrapQueryError(err)
	}
	return count, nil
}
