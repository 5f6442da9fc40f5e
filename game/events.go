package game

import "api/domain"

// Envelope is the JSON frame exchanged over the websocket, both ways.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Server -> client events.
const (
	EventConnected         = "connected"
	EventJoinSuccess       = "join_success"
	EventPlayerJoined      = "player_joined"
	EventPlayerLeft        = "player_left"
	EventPlayerListUpdate  = "player_list_update"
	EventNewRound          = "new_round"
	EventAnswerAccepted    = "answer_accepted"
	EventPlayerAnswered    = "player_answered"
	EventRoundEnd          = "round_end"
	EventLeaderboardUpdate = "leaderboard_update"
	EventError             = "error"
)

// Client -> server events.
const (
	EventJoinGame           = "join_game"
	EventLeaveGame          = "leave_game"
	EventSubmitAnswer       = "submit_answer"
	EventRequestLeaderboard = "request_leaderboard"
)

// PlayerInfo is one row of the public player list.
type PlayerInfo struct {
	Nickname  string `json:"nickname"`
	Points    int    `json:"points"`
	Answered  bool   `json:"answered"`
	CanAnswer bool   `json:"can_answer"`
}

type JoinSuccessPayload struct {
	Players      []PlayerInfo `json:"players"`
	YourNickname string       `json:"your_nickname"`
	RoundActive  bool         `json:"round_active"`
	RoundNumber  int          `json:"round_number"`
}

type PlayerJoinedPayload struct {
	Nickname string `json:"nickname"`
	Points   int    `json:"points"`
}

type PlayerLeftPayload struct {
	Nickname string `json:"nickname"`
	Reason   string `json:"reason"`
}

type PlayerListPayload struct {
	Players []PlayerInfo `json:"players"`
}

type NewRoundPayload struct {
	RoundNumber int    `json:"round_number"`
	Prompt      string `json:"prompt"`
	PromptId    string `json:"prompt_id"`
}

type AnswerAcceptedPayload struct {
	Category string `json:"category"`
}

type PlayerAnsweredPayload struct {
	Nickname string `json:"nickname"`
}

// PlayerResult is one player's line of the round-end breakdown.
// Answered is nil when the player submitted nothing; Correct is nil for
// players who were ineligible this round (they neither win nor lose).
type PlayerResult struct {
	Nickname     string  `json:"nickname"`
	Answered     *string `json:"answered"`
	Correct      *bool   `json:"correct"`
	PointsEarned int     `json:"points_earned"`
	TotalPoints  int     `json:"total_points"`
	CouldAnswer  bool    `json:"could_answer"`
}

type RoundEndPayload struct {
	CorrectCategory string         `json:"correct_category"`
	Results         []PlayerResult `json:"results"`
	Source          string         `json:"source"`
}

type LeaderboardPayload struct {
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
