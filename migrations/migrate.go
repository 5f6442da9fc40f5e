package migrations

import (
	"database/sql"
	"embed"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

//go:embed *.sql
var embedMigrations embed.FS

// Migrate applies every embedded migration to the database at pgurl.
// Schema drift is unrecoverable for the server, so any failure is fatal.
func Migrate(pgurl string) {
	db, err := sql.Open("pgx", pgurl)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open database for migrations")
	}

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal().Err(err).Msg("cannot set goose dialect")
	}

	if err := goose.Up(db, "."); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	if err := db.Close(); err != nil {
		log.Fatal().Err(err).Msg("cannot close migration connection")
	}

	log.Info().Msg("migrations applied")
}
