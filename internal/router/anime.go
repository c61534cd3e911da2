package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/anime-api/internal/handler"
	"github.com/deppfellow/anime-api/internal/middleware"
	"github.com/deppfellow/anime-api/internal/model"
)

func registerAnimeRoutes(r *echo.Group, h *handler.AnimeHandler, auth *middleware.AuthMiddleware) {
	animes := r.Group("/animes", auth.RequireAuth(), auth.RequireRole(model.RoleUser))
	requireAdmin := auth.RequireRole(model.RoleAdmin)

	animes.GET("", handler.Handle(
		h.Handler,
		h.ListAnimes,
		http.StatusOK,
		&model.ListAnimesRequest{},
	))

	animes.GET("/all", handler.Handle(
		h.Handler,
		h.ListAllAnimes,
		http.StatusOK,
		&model.ListAllAnimesRequest{},
	))

	animes.GET("/find", handler.Handle(
		h.Handler,
		h.FindAnimesByName,
		http.StatusOK,
		&model.FindAnimesByNameRequest{},
	))

	animes.GET("/:id", handler.Handle(
		h.Handler,
		h.GetAnime,
		http.StatusOK,
		&model.AnimeIDRequest{},
	))

	animes.GET("/id/:id", handler.Handle(
		h.Handler,
		h.GetAnimeAsAdmin,
		http.StatusOK,
		&model.AnimeIDRequest{},
	), requireAdmin)

	animes.POST("", handler.Handle(
		h.Handler,
		h.CreateAnime,
		http.StatusCreated,
		&model.CreateAnimeRequest{},
	))

	animes.PUT("", handler.HandleNoContent(
		h.Handler,
		h.ReplaceAnime,
		http.StatusNoContent,
		&model.ReplaceAnimeRequest{},
	))

	animes.DELETE("/admin/:id", handler.HandleNoContent(
		h.Handler,
		h.DeleteAnime,
		http.StatusNoContent,
		&model.AnimeIDRequest{},
	), requireAdmin)
}
