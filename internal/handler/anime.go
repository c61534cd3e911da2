package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/anime-api/internal/middleware"
	"github.com/deppfellow/anime-api/internal/model"
	"github.com/deppfellow/anime-api/internal/server"
	"github.com/deppfellow/anime-api/internal/service"
)

type AnimeHandler struct {
	Handler
	animeService *service.AnimeService
}

func NewAnimeHandler(s *server.Server, animeService *service.AnimeService) *AnimeHandler {
	return &AnimeHandler{
		Handler:      NewHandler(s),
		animeService: animeService,
	}
}

func (h *AnimeHandler) ListAnimes(c echo.Context, req *model.ListAnimesRequest) (model.Page[model.Anime], error) {
	return h.animeService.List(c.Request().Context(), req.PageRequest())
}

func (h *AnimeHandler) ListAllAnimes(c echo.Context, _ *model.ListAllAnimesRequest) ([]model.Anime, error) {
	return h.animeService.ListAll(c.Request().Context())
}

func (h *AnimeHandler) GetAnime(c echo.Context, req *model.AnimeIDRequest) (*model.Anime, error) {
	return h.animeService.FindByIDOrBadRequest(c.Request().Context(), req.ID)
}

// GetAnimeAsAdmin is GetAnime behind the ADMIN role; it records who asked.
func (h *AnimeHandler) GetAnimeAsAdmin(c echo.Context, req *model.AnimeIDRequest) (*model.Anime, error) {
	if user := middleware.GetUser(c); user != nil {
		middleware.GetLogger(c).Info().
			Str("username", user.Username).
			Int64("anime_id", req.ID).
			Msg("admin anime lookup")
	}
	return h.animeService.FindByIDOrBadRequest(c.Request().Context(), req.ID)
}

func (h *AnimeHandler) FindAnimesByName(c echo.Context, req *model.FindAnimesByNameRequest) ([]model.Anime, error) {
	return h.animeService.FindByName(c.Request().Context(), req.Name)
}

func (h *AnimeHandler) CreateAnime(c echo.Context, req *model.CreateAnimeRequest) (*model.Anime, error) {
	return h.animeService.Create(c.Request().Context(), req)
}

func (h *AnimeHandler) ReplaceAnime(c echo.Context, req *model.ReplaceAnimeRequest) error {
	return h.animeService.Replace(c.Request().Context(), req)
}

func (h *AnimeHandler) DeleteAnime(c echo.Context, req *model.AnimeIDRequest) error {
	return h.animeService.Delete(c.Request().Context(), req.ID)
}
