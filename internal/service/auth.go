package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/deppfellow/anime-api/internal/errs"
	"github.com/deppfellow/anime-api/internal/model"
	"github.com/deppfellow/anime-api/internal/server"
	"github.com/deppfellow/anime-api/internal/sqlerr"
)

// bcryptPrefix marks the hash format of stored passwords. Hashes without it
// are accepted as plain bcrypt.
const bcryptPrefix = "{bcrypt}"

// ErrInvalidCredentials covers both unknown users and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid credentials")

type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, user *model.User) (*model.User, error)
}

type AuthService struct {
	server *server.Server
	repo   UserRepository
}

func NewAuthService(s *server.Server, repo UserRepository) *AuthService {
	return &AuthService{
		server: s,
		repo:   repo,
	}
}

// Authenticate checks a username/password pair against the stored bcrypt
// hash. It returns ErrInvalidCredentials when they do not match.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	hash := strings.TrimPrefix(user.Password, bcryptPrefix)
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// CreateUser hashes the password and stores a new user. An ADMIN always gets
// the USER role as well.
func (s *AuthService) CreateUser(ctx context.Context, input model.CreateUserInput) (*model.User, error) {
	input.Roles = normalizeRoles(input.Roles)
	if err := input.Validate(); err != nil {
		return nil, errs.ValidationError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.server.Config.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, &model.User{
		Name:        input.Name,
		Username:    input.Username,
		Password:    bcryptPrefix + string(hash),
		Authorities: model.FormatAuthorities(input.Roles),
	})
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	s.server.Logger.Info().
		Str("username", user.Username).
		Str("authorities", user.Authorities).
		Msg("user created")

	return user, nil
}

func normalizeRoles(roles []model.Role) []model.Role {
	var normalized []model.Role
	hasUser, hasAdmin := false, false

	for _, role := range roles {
		r := model.Role(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(string(role))), "ROLE_"))
		if r == "" {
			continue
		}
		switch r {
		case model.RoleUser:
			if hasUser {
				continue
			}
			hasUser = true
		case model.RoleAdmin:
			if hasAdmin {
				continue
			}
			hasAdmin = true
		}
		normalized = append(normalized, r)
	}

	if hasAdmin && !hasUser {
		normalized = append([]model.Role{model.RoleUser}, normalized...)
	}

	return normalized
}
