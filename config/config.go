package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Load reads a .env file if one is present, then snapshots the
// environment into Envs. Call once, before anything reads Envs.
func Load() {
	godotenv.Load()

	Envs = struct {
		POSTGRES_URL    string
		ALLOWED_ORIGINS string
		PORT            string
		GIN_MODE        string
	}{
		POSTGRES_URL:    os.Getenv("POSTGRES_URL"),
		ALLOWED_ORIGINS: os.Getenv("ALLOWED_ORIGINS"),
		PORT:            os.Getenv("PORT"),
		GIN_MODE:        os.Getenv("GIN_MODE"),
	}
}

var Envs struct {
	POSTGRES_URL    string
	ALLOWED_ORIGINS string
	PORT            string
	GIN_MODE        string
}
