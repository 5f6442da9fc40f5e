package domain

import "time"

type User struct {
	Id            string
	Nickname      string
	PasswordHash  string
	Points        int
	SessionToken  string
	LastLoginIp   string
	LastLoginTime time.Time
	RegisteredAt  time.Time
}

// Prompt is one entry of the question bank: a piece of text whose
// correct answer is a single category, with an optional citation.
type Prompt struct {
	Id        string
	Text      string
	Category  string
	Election  string
	Published time.Time
	Source    string
}

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Nickname string `json:"nickname"`
	Points   int    `json:"points"`
}
