package middleware

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/deppfellow/anime-api/internal/errs"
	"github.com/deppfellow/anime-api/internal/model"
	"github.com/deppfellow/anime-api/internal/server"
	"github.com/deppfellow/anime-api/internal/service"
)

type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
}

type AuthMiddleware struct {
	server *server.Server
	auth   Authenticator
}

func NewAuthMiddleware(s *server.Server, auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
		auth:   auth,
	}
}

// RequireAuth enforces HTTP Basic authentication against the users table.
// Missing or wrong credentials produce a 401 with a WWW-Authenticate header.
// On success the principal is stored under UserKey, UserIDKey and UserRoleKey.
func (auth *AuthMiddleware) RequireAuth() echo.MiddlewareFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm: auth.server.Config.Auth.Realm,
		Validator: func(username, password string, c echo.Context) (bool, error) {
			start := time.Now()

			user, err := auth.auth.Authenticate(c.Request().Context(), username, password)
			if err != nil {
				if errors.Is(err, service.ErrInvalidCredentials) {
					GetLogger(c).Warn().
						Str("function", "RequireAuth").
						Str("username", username).
						Dur("duration", time.Since(start)).
						Msg("invalid credentials")
					return false, nil
				}
				return false, err
			}

			role := primaryRole(user)
			c.Set(UserKey, user)
			c.Set(UserIDKey, strconv.FormatInt(user.ID, 10))
			c.Set(UserRoleKey, string(role))

			l := GetLogger(c).With().
				Str("user_id", strconv.FormatInt(user.ID, 10)).
				Str("user_role", string(role)).
				Logger()
			setLogger(c, l)

			l.Debug().
				Str("function", "RequireAuth").
				Str("username", user.Username).
				Dur("duration", time.Since(start)).
				Msg("user authenticated successfully")

			return true, nil
		},
	})
}

// RequireRole rejects principals lacking role with a 403. ADMIN satisfies
// any role check.
func (auth *AuthMiddleware) RequireRole(role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := GetUser(c)
			if user == nil {
				return errs.NewUnauthorizedError("Unauthorized", false)
			}

			if !user.HasRole(role) && !user.HasRole(model.RoleAdmin) {
				GetLogger(c).Warn().
					Str("function", "RequireRole").
					Str("required_role", string(role)).
					Msg("access denied")
				return errs.NewForbiddenError("Access denied", false)
			}

			return next(c)
		}
	}
}

func primaryRole(user *model.User) model.Role {
	if user.HasRole(model.RoleAdmin) {
		return model.RoleAdmin
	}
	return model.RoleUser
}
