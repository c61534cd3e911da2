// Package router builds the Echo instance: the global middleware chain, the
// system routes and the versioned API groups.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/anime-api/internal/handler"
	"github.com/deppfellow/anime-api/internal/middleware"
	"github.com/deppfellow/anime-api/internal/server"
	"github.com/deppfellow/anime-api/internal/service"
)

func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s, services)

	router := echo.New()
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// Order matters: the request id and the New Relic transaction must exist
	// before the context logger is built.
	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.RateLimit.Limit(),
	)

	registerSystemRoutes(router, h)

	v1 := router.Group("/api/v1")
	registerAnimeRoutes(v1, h.Anime, middlewares.Auth)

	return router
}
