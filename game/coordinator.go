package game

import (
	"api/domain"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultRoundDuration = 15 * time.Second
	DefaultCooldown      = 5 * time.Second
)

// Coordinator drives the observable round lifecycle around the lobby's
// state transitions: it owns the countdown timer, decides when rounds
// start and end, and sequences every broadcast. Inbound handlers call
// it from many goroutines; all shared state lives in the lobby, except
// the pending-timer handle guarded here.
type Coordinator struct {
	lobby     *Lobby
	bc        Broadcaster
	prompts   PromptSource
	scheduler Scheduler

	roundDuration time.Duration
	cooldown      time.Duration

	timerMu         sync.Mutex
	cancelCountdown func() bool
}

func NewCoordinator(lobby *Lobby, bc Broadcaster, prompts PromptSource, scheduler Scheduler, roundDuration, cooldown time.Duration) *Coordinator {
	return &Coordinator{
		lobby:         lobby,
		bc:            bc,
		prompts:       prompts,
		scheduler:     scheduler,
		roundDuration: roundDuration,
		cooldown:      cooldown,
	}
}

// HandleJoin admits a resolved identity into the room and, when it is
// the first player of an idle lobby, kicks off the very first round.
func (c *Coordinator) HandleJoin(token, userId, nickname, connId string, points int) {
	state := c.lobby.AddPlayer(token, userId, nickname, connId, points)

	players := c.lobby.Players()
	c.bc.SendToAll(EventPlayerListUpdate, PlayerListPayload{Players: players})
	c.bc.SendToAllExcept(connId, EventPlayerJoined, PlayerJoinedPayload{Nickname: nickname, Points: points})

	c.bc.SendTo(connId, EventJoinSuccess, JoinSuccessPayload{
		Players:      players,
		YourNickname: nickname,
		RoundActive:  state.RoundActive,
		RoundNumber:  state.RoundNumber,
	})

	// A mid-round joiner still needs the running prompt on screen,
	// even though they cannot answer it.
	if payload, ok := c.lobby.CurrentRound(); ok {
		c.bc.SendTo(connId, EventNewRound, payload)
	}

	log.Info().Str("nickname", nickname).Msg("player joined")

	if state.PlayerCount == 1 && !state.RoundActive {
		c.startRound()
	}
}

func (c *Coordinator) HandleLeave(token, connId, reason string) {
	removed, ok := c.lobby.RemovePlayer(token, connId)
	if !ok {
		return
	}

	c.bc.SendToAll(EventPlayerLeft, PlayerLeftPayload{Nickname: removed.Nickname, Reason: reason})
	c.bc.SendToAll(EventPlayerListUpdate, PlayerListPayload{Players: c.lobby.Players()})

	log.Info().Str("nickname", removed.Nickname).Str("reason", reason).Msg("player left")
}

func (c *Coordinator) HandleDisconnect(connId string) {
	c.HandleLeave("", connId, "disconnect")
}

// HandleAnswer records a submission. Success fans out the usual
// acknowledgements; failure goes back to the submitter alone. When the
// last eligible player has answered, the countdown is cancelled and the
// round scores immediately.
func (c *Coordinator) HandleAnswer(token, category, connId string) {
	outcome, err := c.lobby.SubmitAnswer(token, category)
	if err != nil {
		c.bc.SendTo(connId, EventError, ErrorPayload{Message: err.Error()})
		return
	}

	c.bc.SendTo(connId, EventAnswerAccepted, AnswerAcceptedPayload{Category: category})
	c.bc.SendToAllExcept(connId, EventPlayerAnswered, PlayerAnsweredPayload{Nickname: outcome.Nickname})
	c.bc.SendToAll(EventPlayerListUpdate, PlayerListPayload{Players: c.lobby.Players()})

	log.Info().Str("nickname", outcome.Nickname).Str("category", category).Msg("answer recorded")

	if outcome.AllAnswered {
		c.finishRound(outcome.Round)
	}
}

// finishRound performs the SCORING transition for round number round.
// Both the countdown expiry and the all-answered path funnel here;
// whichever loses the race sees ErrNoActiveRound from the lobby and
// backs off, as does a countdown so late its round is long gone.
func (c *Coordinator) finishRound(round int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := c.lobby.EndRound(ctx, round)
	if err != nil {
		return
	}

	// Only the winner disarms the countdown. A stale caller must leave
	// the timer alone: it belongs to a newer round by now.
	c.cancelTimer()

	c.bc.SendToAll(EventRoundEnd, result)
	log.Info().Str("correct", result.CorrectCategory).Int("players", len(result.Results)).Msg("round ended")

	c.scheduler.Schedule(c.cooldown, c.startNextRound)
}

// startNextRound fires after the cooldown: a populated lobby rolls into
// the next round, an empty one goes idle until the next join.
func (c *Coordinator) startNextRound() {
	if c.lobby.PlayerCount() > 0 {
		c.startRound()
	}
}

func (c *Coordinator) startRound() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payload, err := c.lobby.StartRound(func() (domain.Prompt, error) {
		return c.prompts.RandomPrompt(ctx)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrRoundInProgress):
			// benign: someone beat us to it
		case errors.Is(err, domain.ErrNoPrompts):
			log.Warn().Msg("cannot start round, question bank is empty")
		default:
			log.Error().Err(err).Msg("failed to start round")
		}
		return
	}

	c.bc.SendToAll(EventNewRound, payload)
	log.Info().Int("round", payload.RoundNumber).Msg("round started")

	round := payload.RoundNumber
	c.timerMu.Lock()
	c.cancelCountdown = c.scheduler.Schedule(c.roundDuration, func() { c.finishRound(round) })
	c.timerMu.Unlock()
}

func (c *Coordinator) cancelTimer() {
	c.timerMu.Lock()
	if c.cancelCountdown != nil {
		c.cancelCountdown()
		c.cancelCountdown = nil
	}
	c.timerMu.Unlock()
}
