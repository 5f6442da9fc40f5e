package game

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"api/auth"
)

// clientCtx bounds work done on behalf of a websocket message, which
// has no request context of its own.
func clientCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

type Handler struct {
	hub         *Hub
	coordinator *Coordinator
	sessions    SessionResolver
	reads       LeaderboardSource
}

func NewHandler(hub *Hub, coordinator *Coordinator, sessions SessionResolver, reads LeaderboardSource) *Handler {
	return &Handler{
		hub:         hub,
		coordinator: coordinator,
		sessions:    sessions,
		reads:       reads,
	}
}

// WebsocketHandler upgrades the connection and serves it until the
// client goes away. The read loop runs on the request goroutine; the
// write pump gets its own.
func (h *Handler) WebsocketHandler(ctx *gin.Context) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true }, // origins are filtered by middleware
	}

	socket, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("ip", ctx.ClientIP()).Msg("websocket upgrade failed")
		return
	}

	client := h.hub.Register(socket)
	go client.WritePump()

	h.hub.SendTo(client.Id(), EventConnected, nil)
	log.Debug().Str("conn_id", client.Id()).Msg("client connected")

	client.ReadPump(func(event string, data json.RawMessage) {
		h.dispatch(client, event, data)
	})

	h.coordinator.HandleDisconnect(client.Id())
	h.hub.Remove(client.Id())
	log.Debug().Str("conn_id", client.Id()).Msg("client disconnected")
}

func (h *Handler) dispatch(client *Client, event string, data json.RawMessage) {
	switch event {
	case EventJoinGame:
		var body struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			h.hub.SendTo(client.Id(), EventError, ErrorPayload{Message: "bad-request-format"})
			return
		}
		h.handleJoin(client, body.Token)

	case EventLeaveGame:
		var body struct {
			Token  string `json:"token"`
			Reason string `json:"reason"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			h.hub.SendTo(client.Id(), EventError, ErrorPayload{Message: "bad-request-format"})
			return
		}
		if body.Reason == "" {
			body.Reason = "request"
		}
		h.coordinator.HandleLeave(body.Token, client.Id(), body.Reason)

	case EventSubmitAnswer:
		var body struct {
			Token    string `json:"token"`
			Category string `json:"category"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			h.hub.SendTo(client.Id(), EventError, ErrorPayload{Message: "bad-request-format"})
			return
		}
		h.coordinator.HandleAnswer(body.Token, body.Category, client.Id())

	case EventRequestLeaderboard:
		h.handleLeaderboard(client)

	default:
		h.hub.SendTo(client.Id(), EventError, ErrorPayload{Message: "unknown-event"})
	}
}

func (h *Handler) handleJoin(client *Client, token string) {
	ctx, cancel := clientCtx()
	defer cancel()

	identity, err := h.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidSession) {
			h.hub.SendTo(client.Id(), EventError, ErrorPayload{Message: auth.ErrInvalidSession.Error()})
			return
		}
		log.Error().Err(err).Msg("session resolution failed")
		h.hub.SendTo(client.Id(), EventError, ErrorPayload{Message: "unknown-error"})
		return
	}

	h.coordinator.HandleJoin(token, identity.UserId, identity.Nickname, client.Id(), identity.Points)
}

func (h *Handler) handleLeaderboard(client *Client) {
	ctx, cancel := clientCtx()
	defer cancel()

	entries, err := h.reads.TopUsers(ctx, 10)
	if err != nil {
		log.Error().Err(err).Msg("failed to load leaderboard")
		h.hub.SendTo(client.Id(), EventError, ErrorPayload{Message: "unknown-error"})
		return
	}
	h.hub.SendTo(client.Id(), EventLeaderboardUpdate, LeaderboardPayload{Leaderboard: entries})
}

// LeaderboardHandler serves the top players over plain HTTP as well,
// for pages rendered before a socket exists.
func (h *Handler) LeaderboardHandler(ctx *gin.Context) {
	limit := 10
	if raw, ok := ctx.GetQuery("limit"); ok {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid-limit"})
			return
		}
		limit = parsed
	}

	entries, err := h.reads.TopUsers(ctx.Request.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to load leaderboard")
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "leaderboard": entries})
}

// CategoriesHandler lists the answer categories clients render as
// buttons.
func (h *Handler) CategoriesHandler(ctx *gin.Context) {
	categories, err := h.reads.ListCategories(ctx.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to load categories")
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "categories": categories})
}
