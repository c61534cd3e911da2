package handler

import (
	"github.com/deppfellow/anime-api/internal/server"
	"github.com/deppfellow/anime-api/internal/service"
)

type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Anime   *AnimeHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Anime:   NewAnimeHandler(s, services.Anime),
	}
}
