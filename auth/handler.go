package auth

import (
	"api/domain"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidRequestFormatStr = "bad-request-format"
	ErrServerTimeoutStr        = "server-timeout"
	ErrUnknownStr              = "unknown-error"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func abortWithUnexpected(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		ctx.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{"error": ErrServerTimeoutStr})
	case errors.Is(err, context.Canceled):
		ctx.AbortWithStatus(499) // http code for "Client Closed Request"
	default:
		log.Error().Err(err).Str("path", ctx.FullPath()).Msg("unexpected auth error")
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": ErrUnknownStr})
	}
}

func (h *Handler) RegisterHandler(ctx *gin.Context) {
	var credentials struct {
		Nickname string `json:"nickname"`
		Password string `json:"password"`
	}

	if err := ctx.ShouldBindJSON(&credentials); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrInvalidRequestFormatStr})
		return
	}

	nickname := strings.TrimSpace(credentials.Nickname)

	userId, err := h.service.Register(ctx.Request.Context(), nickname, credentials.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidNicknameFormat):
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrInvalidNicknameFormat.Error()})
		case errors.Is(err, ErrWeakPassword):
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrWeakPassword.Error()})
		case errors.Is(err, domain.ErrDuplicateNickname):
			ctx.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": domain.ErrDuplicateNickname.Error()})
		default:
			abortWithUnexpected(ctx, err)
		}
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"success": true, "user_id": userId})
}

func (h *Handler) LoginHandler(ctx *gin.Context) {
	var credentials struct {
		Nickname string `json:"nickname"`
		Password string `json:"password"`
	}

	if err := ctx.ShouldBindJSON(&credentials); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrInvalidRequestFormatStr})
		return
	}

	nickname := strings.TrimSpace(credentials.Nickname)

	result, err := h.service.Login(ctx.Request.Context(), nickname, credentials.Password, ctx.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidCredentials.Error()})
		default:
			abortWithUnexpected(ctx, err)
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":  true,
		"token":    result.Token,
		"user_id":  result.UserId,
		"nickname": result.Nickname,
		"points":   result.Points,
	})
}

func (h *Handler) LogoutHandler(ctx *gin.Context) {
	var body struct {
		Token string `json:"token"`
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrInvalidRequestFormatStr})
		return
	}

	if err := h.service.Logout(ctx.Request.Context(), body.Token); err != nil {
		switch {
		case errors.Is(err, ErrInvalidSession):
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidSession.Error()})
		default:
			abortWithUnexpected(ctx, err)
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// ValidateHandler is the HTTP face of Resolve. An unknown token is a
// normal outcome here, not a failure: clients poll it on page load.
func (h *Handler) ValidateHandler(ctx *gin.Context) {
	var body struct {
		Token string `json:"token"`
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrInvalidRequestFormatStr})
		return
	}

	identity, err := h.service.Resolve(ctx.Request.Context(), body.Token)
	if err != nil {
		if errors.Is(err, ErrInvalidSession) {
			ctx.JSON(http.StatusOK, gin.H{"valid": false})
			return
		}
		abortWithUnexpected(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"user_id":  identity.UserId,
		"nickname": identity.Nickname,
		"points":   identity.Points,
	})
}

func (h *Handler) CheckNicknameHandler(ctx *gin.Context) {
	var body struct {
		Nickname string `json:"nickname"`
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrInvalidRequestFormatStr})
		return
	}

	err := h.service.CheckNickname(ctx.Request.Context(), strings.TrimSpace(body.Nickname))
	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, gin.H{"available": true})
	case errors.Is(err, ErrInvalidNicknameFormat):
		ctx.JSON(http.StatusOK, gin.H{"available": false, "reason": ErrInvalidNicknameFormat.Error()})
	case errors.Is(err, domain.ErrDuplicateNickname):
		ctx.JSON(http.StatusOK, gin.H{"available": false, "reason": domain.ErrDuplicateNickname.Error()})
	default:
		abortWithUnexpected(ctx, err)
	}
}
