// Package middleware holds the global and route-specific Echo middleware:
// request ids, request-scoped logging, New Relic tracing, CORS, rate
// limiting, panic recovery, HTTP Basic authentication and role checks.
package middleware

import (
	"github.com/deppfellow/anime-api/internal/server"
	"github.com/deppfellow/anime-api/internal/service"
)

// Middlewares groups every middleware component so routing code can build
// them once from the shared server container.
type Middlewares struct {
	Global          *GlobalMiddlewares
	Auth            *AuthMiddleware
	ContextEnhancer *ContextEnhancer
	Tracing         *TracingMiddleware
	RateLimit       *RateLimitMiddleware
}

func NewMiddlewares(s *server.Server, services *service.Services) *Middlewares {
	// nil when New Relic is disabled; tracing then degrades to a no-op.
	nrApp := s.LoggerService.GetApplication()

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		Auth:            NewAuthMiddleware(s, services.Auth),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
