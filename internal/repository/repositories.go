// Package repository holds the SQL for every entity. Queries are built with
// squirrel and run on *sql.DB, so they work on both Postgres and SQLite.
package repository

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/deppfellow/anime-api/internal/server"
)

type Repositories struct {
	Anime *AnimeRepository
	User  *UserRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Anime: NewAnimeRepository(s.DB, *s.Logger),
		User:  NewUserRepository(s.DB, *s.Logger),
	}
}

func logSlowQuery(log zerolog.Logger, threshold time.Duration, name, query string, start time.Time) {
	if elapsed := time.Since(start); threshold > 0 && elapsed > threshold {
		log.Warn().
			Str("query", query).
			Dur("duration", elapsed).
			Dur("threshold", threshold).
			Msg(name + ": slow query")
	}
}
