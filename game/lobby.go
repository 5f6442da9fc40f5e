package game

import (
	"api/domain"
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

type player struct {
	token     string
	userId    string
	nickname  string
	connId    string
	points    int
	answered  bool
	canAnswer bool
}

// Lobby is the single shared room: all current players plus the state
// of the running round. Every mutating operation takes the one mutex,
// so concurrent joins, leaves, answers and timer expiries always
// observe a consistent aggregate. The lobby never schedules anything
// itself; timers and broadcasting belong to the Coordinator.
type Lobby struct {
	scores ScoreStore

	mu          sync.Mutex
	players     map[string]*player // token -> player
	order       []string           // tokens in insertion order
	connToToken map[string]string
	answers     map[string]string // token -> submitted category
	prompt      *domain.Prompt
	roundActive bool
	roundNumber int
}

func NewLobby(scores ScoreStore) *Lobby {
	return &Lobby{
		scores:      scores,
		players:     make(map[string]*player),
		connToToken: make(map[string]string),
		answers:     make(map[string]string),
	}
}

// JoinState is the lobby state right after an AddPlayer, captured under
// the same lock acquisition as the insert. Deciding "am I the first
// player of an idle lobby" from a separate read would race a concurrent
// join, with both arrivals seeing a count of two and nobody starting
// the game.
type JoinState struct {
	PlayerCount int
	RoundActive bool
	RoundNumber int
}

// AddPlayer inserts the player, or replaces the existing entry when the
// same token re-joins (the new connection supersedes the old one).
// A player arriving while a round runs sits that round out.
func (l *Lobby) AddPlayer(token, userId, nickname, connId string, points int) JoinState {
	l.mu.Lock()
	defer l.mu.Unlock()

	if old, ok := l.players[token]; ok {
		delete(l.connToToken, old.connId)
		delete(l.answers, token)
	} else {
		l.order = append(l.order, token)
	}

	l.players[token] = &player{
		token:     token,
		userId:    userId,
		nickname:  nickname,
		connId:    connId,
		points:    points,
		answered:  false,
		canAnswer: !l.roundActive,
	}
	l.connToToken[connId] = token

	return JoinState{
		PlayerCount: len(l.players),
		RoundActive: l.roundActive,
		RoundNumber: l.roundNumber,
	}
}

// RemovedPlayer is the snapshot RemovePlayer hands back for the
// departure broadcast.
type RemovedPlayer struct {
	Nickname string
	Points   int
}

// RemovePlayer removes a player identified by token, or by connection
// id when the token is empty (connection-drop path). A miss is a
// normal outcome: disconnects of never-joined sockets land here.
func (l *Lobby) RemovePlayer(token, connId string) (RemovedPlayer, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if token == "" {
		token = l.connToToken[connId]
	}

	p, ok := l.players[token]
	if !ok {
		return RemovedPlayer{}, false
	}

	delete(l.players, token)
	delete(l.connToToken, p.connId)
	delete(l.answers, token)
	for i, t := range l.order {
		if t == token {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}

	return RemovedPlayer{Nickname: p.nickname, Points: p.points}, true
}

// Players returns an insertion-ordered snapshot safe to serialize
// without the lock.
func (l *Lobby) Players() []PlayerInfo {
	l.mu.Lock()
	defer l.mu.Unlock()

	list := make([]PlayerInfo, 0, len(l.order))
	for _, token := range l.order {
		p := l.players[token]
		list = append(list, PlayerInfo{
			Nickname:  p.nickname,
			Points:    p.points,
			Answered:  p.answered,
			CanAnswer: p.canAnswer,
		})
	}
	return list
}

func (l *Lobby) PlayerCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.players)
}

func (l *Lobby) RoundInfo() (active bool, number int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.roundActive, l.roundNumber
}

// CurrentRound reports the running round's broadcast payload, for
// replaying to players who connect mid-round.
func (l *Lobby) CurrentRound() (NewRoundPayload, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.roundActive || l.prompt == nil {
		return NewRoundPayload{}, false
	}
	return NewRoundPayload{
		RoundNumber: l.roundNumber,
		Prompt:      l.prompt.Text,
		PromptId:    l.prompt.Id,
	}, true
}

// StartRound begins the next round: bumps the round number, clears the
// answer sheet, makes every present player eligible again and picks a
// prompt. Returns ErrRoundInProgress (no-op) when one already runs and
// domain.ErrNoPrompts when the bank is empty, in which case the round
// stays inactive.
func (l *Lobby) StartRound(pick func() (domain.Prompt, error)) (NewRoundPayload, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.roundActive {
		return NewRoundPayload{}, ErrRoundInProgress
	}

	l.roundNumber++
	l.answers = make(map[string]string)
	for _, p := range l.players {
		p.answered = false
		p.canAnswer = true
	}

	prompt, err := pick()
	if err != nil {
		l.prompt = nil
		return NewRoundPayload{}, err
	}

	l.prompt = &prompt
	l.roundActive = true

	return NewRoundPayload{
		RoundNumber: l.roundNumber,
		Prompt:      prompt.Text,
		PromptId:    prompt.Id,
	}, nil
}

// SubmitOutcome is what a successful SubmitAnswer reports back.
// AllAnswered is computed under the same lock acquisition as the
// recording, making it the single gate for early round termination.
type SubmitOutcome struct {
	Nickname    string
	Round       int
	AllAnswered bool
}

func (l *Lobby) SubmitAnswer(token, category string) (SubmitOutcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.roundActive {
		return SubmitOutcome{}, ErrNoActiveRound
	}
	p, ok := l.players[token]
	if !ok {
		return SubmitOutcome{}, ErrUnknownPlayer
	}
	if !p.canAnswer {
		return SubmitOutcome{}, ErrIneligible
	}
	if p.answered {
		return SubmitOutcome{}, ErrAlreadyAnswered
	}

	l.answers[token] = category
	p.answered = true

	eligible := 0
	pending := 0
	for _, q := range l.players {
		if q.canAnswer {
			eligible++
			if !q.answered {
				pending++
			}
		}
	}

	return SubmitOutcome{
		Nickname:    p.nickname,
		Round:       l.roundNumber,
		AllAnswered: eligible > 0 && pending == 0,
	}, nil
}

// EndRound closes round number round and scores it: every eligible
// player whose submitted category matches the prompt's earns one point,
// which is persisted and mirrored in memory. Ineligible players are
// reported with a nil correctness. Exactly one EndRound can succeed per
// round; a second caller (the losing side of the timer race) gets
// ErrNoActiveRound, as does a stale caller whose round already gave way
// to a newer one.
func (l *Lobby) EndRound(ctx context.Context, round int) (RoundEndPayload, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.roundActive || round != l.roundNumber {
		return RoundEndPayload{}, ErrNoActiveRound
	}
	l.roundActive = false

	if l.prompt == nil {
		return RoundEndPayload{}, ErrNoActiveRound
	}

	correct := l.prompt.Category
	results := make([]PlayerResult, 0, len(l.order))

	for _, token := range l.order {
		p := l.players[token]

		var submitted *string
		if answer, ok := l.answers[token]; ok {
			submitted = &answer
		}

		result := PlayerResult{
			Nickname:    p.nickname,
			Answered:    submitted,
			CouldAnswer: p.canAnswer,
		}

		if p.canAnswer {
			isCorrect := submitted != nil && *submitted == correct
			result.Correct = &isCorrect
			if isCorrect {
				result.PointsEarned = 1
				p.points++
				if err := l.scores.UpdateUserPoints(ctx, p.userId, p.points); err != nil {
					// Persistence failure must not break the round; the
					// in-memory score advances and the gap is logged.
					log.Warn().Err(err).
						Str("user_id", p.userId).
						Int("points", p.points).
						Msg("failed to persist score")
				}
			}
		}
		result.TotalPoints = p.points

		results = append(results, result)
	}

	return RoundEndPayload{
		CorrectCategory: correct,
		Results:         results,
		Source:          l.prompt.Source,
	}, nil
}
