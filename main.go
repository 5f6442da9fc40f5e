package main

import (
	"api/auth"
	"api/config"
	"api/crypto"
	"api/game"
	"api/migrations"
	"api/storage"
	"context"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {

	// logger setup
	zlog.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	config.Load()
	if config.Envs.GIN_MODE == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if config.Envs.POSTGRES_URL == "" {
		zlog.Fatal().Msg("Missing postgres url")
	}
	if config.Envs.ALLOWED_ORIGINS == "" {
		zlog.Fatal().Msg("Missing allowed origins")
	}
	allowedOrigins := strings.Split(config.Envs.ALLOWED_ORIGINS, ",")

	port := config.Envs.PORT
	if port == "" {
		port = "5000"
	}

	migrations.Migrate(config.Envs.POSTGRES_URL)

	// Dependencies
	pgRepo, err := storage.NewPostgresRepo(context.Background(), config.Envs.POSTGRES_URL)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pgRepo.Close()

	passwordHasher := crypto.NewArgon2idHasher(3, 1024*64, 32, 16, 1)
	tokenGenerator := crypto.NewTokenGenerator()

	authService := auth.NewService(pgRepo, passwordHasher, tokenGenerator)
	authHandler := auth.NewHandler(authService)

	hub := game.NewHub()
	lobby := game.NewLobby(pgRepo)
	coordinator := game.NewCoordinator(lobby, hub, pgRepo, game.NewScheduler(),
		game.DefaultRoundDuration, game.DefaultCooldown)
	gameHandler := game.NewHandler(hub, coordinator, authService, pgRepo)

	r := CreateServer(allowedOrigins)

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"players_online": lobby.PlayerCount(),
		})
	})

	{
		authGroup := r.Group("/api/auth")
		authGroup.POST("/register", authHandler.RegisterHandler)
		authGroup.POST("/login", authHandler.LoginHandler)
		authGroup.POST("/logout", authHandler.LogoutHandler)
		authGroup.POST("/validate", authHandler.ValidateHandler)
		authGroup.POST("/check-username", authHandler.CheckNicknameHandler)
	}

	{
		gameGroup := r.Group("/api/game")
		gameGroup.GET("/leaderboard", gameHandler.LeaderboardHandler)
		gameGroup.GET("/categories", gameHandler.CategoriesHandler)
	}

	r.GET("/game/ws", gameHandler.WebsocketHandler)

	zlog.Info().Str("port", port).Msg("starting server")
	if err := r.Run(":" + port); err != nil {
		zlog.Fatal().Err(err).Msg("server stopped")
	}
}
