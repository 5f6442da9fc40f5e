package game

import (
	"api/auth"
	"api/domain"
	"context"
	"time"
)

// Broadcaster pushes events to connected clients. Implementations must
// never block the caller on a slow recipient.
type Broadcaster interface {
	SendTo(connId string, event string, payload any)
	SendToAllExcept(connId string, event string, payload any)
	SendToAll(event string, payload any)
}

// PromptSource hands out the next question of a round.
type PromptSource interface {
	RandomPrompt(ctx context.Context) (domain.Prompt, error)
}

// ScoreStore persists cumulative player scores.
type ScoreStore interface {
	UpdateUserPoints(ctx context.Context, userId string, points int) error
}

// Scheduler runs fn once after d. The returned cancel reports whether
// it prevented the call. Injected so tests can fire timers by hand.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) (cancel func() bool)
}

// SessionResolver maps a session token to a verified identity.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (auth.Identity, error)
}

// LeaderboardSource backs the leaderboard/category read endpoints.
type LeaderboardSource interface {
	TopUsers(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	ListCategories(ctx context.Context) ([]string, error)
}
