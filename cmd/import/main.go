// Command import loads a prompt bank from a JSON file into the
// database. Duplicate prompt texts are skipped so re-running the same
// file is harmless.
package main

import (
	"api/config"
	"api/domain"
	"api/migrations"
	"api/storage"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

type promptFile struct {
	Prompts []struct {
		Text     string `json:"text"`
		Category string `json:"category"`
		Election string `json:"election"`
		Date     string `json:"date"` // DD.MM.YYYY, optional
		Source   string `json:"source"`
	} `json:"prompts"`
}

func main() {
	zlog.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	path := flag.String("file", "", "path to the prompt bank JSON file")
	flag.Parse()

	if *path == "" {
		zlog.Fatal().Msg("missing -file")
	}

	raw, err := os.ReadFile(*path)
	if err != nil {
		zlog.Fatal().Err(err).Str("file", *path).Msg("cannot read file")
	}

	var bank promptFile
	if err := json.Unmarshal(raw, &bank); err != nil {
		zlog.Fatal().Err(err).Msg("cannot parse file")
	}

	config.Load()
	if config.Envs.POSTGRES_URL == "" {
		zlog.Fatal().Msg("Missing postgres url")
	}
	migrations.Migrate(config.Envs.POSTGRES_URL)

	ctx := context.Background()
	repo, err := storage.NewPostgresRepo(ctx, config.Envs.POSTGRES_URL)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer repo.Close()

	var created, skipped, failed int
	for _, entry := range bank.Prompts {
		if entry.Text == "" || entry.Category == "" {
			zlog.Warn().Str("text", entry.Text).Msg("skipping entry without text or category")
			failed++
			continue
		}

		prompt := domain.Prompt{
			Text:     entry.Text,
			Category: entry.Category,
			Election: entry.Election,
			Source:   entry.Source,
		}
		if entry.Date != "" {
			published, err := time.Parse("02.01.2006", entry.Date)
			if err != nil {
				zlog.Warn().Str("date", entry.Date).Str("text", entry.Text).Msg("ignoring invalid date")
			} else {
				prompt.Published = published
			}
		}

		_, err := repo.CreatePrompt(ctx, prompt)
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrDuplicatePrompt):
			skipped++
		default:
			zlog.Error().Err(err).Str("text", entry.Text).Msg("insert failed")
			failed++
		}
	}

	total, err := repo.CountPrompts(ctx)
	if err != nil {
		zlog.Fatal().Err(err).Msg("count failed")
	}

	zlog.Info().
		Int("created", created).
		Int("skipped", skipped).
		Int("failed", failed).
		Int("total_in_bank", total).
		Msg("import finished")
}
