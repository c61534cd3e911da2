package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/anime-api/internal/handler"
)

// registerSystemRoutes mounts the unauthenticated health and docs routes.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	r.StaticFS("/static", echo.MustSubFS(handler.StaticFiles, "static"))

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
