// Package service contains the business logic.
//
// It sits between the handler and repository layers: it receives validated
// requests from handlers, applies the rules of the domain, and calls the
// repositories to read and write data.
package service

import (
	"github.com/deppfellow/anime-api/internal/repository"
	"github.com/deppfellow/anime-api/internal/server"
)

type Services struct {
	Auth  *AuthService
	Anime *AnimeService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	return &Services{
		Auth:  NewAuthService(s, repos.User),
		Anime: NewAnimeService(s, repos.Anime),
	}
}
