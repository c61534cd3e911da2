package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/deppfellow/anime-api/internal/errs"
	"github.com/deppfellow/anime-api/internal/model"
	"github.com/deppfellow/anime-api/internal/server"
	"github.com/deppfellow/anime-api/internal/sqlerr"
)

// ErrCodeAnimeNotFound is returned, with status 400, for ids that do not exist.
const ErrCodeAnimeNotFound = "ANIME_NOT_FOUND"

// AnimeRepository is the storage the service needs.
type AnimeRepository interface {
	FindAll(ctx context.Context, page model.PageRequest) (model.Page[model.Anime], error)
	FindAllUnpaged(ctx context.Context) ([]model.Anime, error)
	FindByID(ctx context.Context, id int64) (*model.Anime, error)
	FindByName(ctx context.Context, name string) ([]model.Anime, error)
	Save(ctx context.Context, anime *model.Anime) (*model.Anime, error)
	Delete(ctx context.Context, id int64) error
}

type AnimeService struct {
	server *server.Server
	repo   AnimeRepository
}

func NewAnimeService(s *server.Server, repo AnimeRepository) *AnimeService {
	return &AnimeService{
		server: s,
		repo:   repo,
	}
}

func (s *AnimeService) List(ctx context.Context, page model.PageRequest) (model.Page[model.Anime], error) {
	result, err := s.repo.FindAll(ctx, page)
	if err != nil {
		s.logger(ctx).Error().Err(err).Msg("failed to list animes")
		return model.Page[model.Anime]{}, sqlerr.HandleError(err)
	}
	return result, nil
}

func (s *AnimeService) ListAll(ctx context.Context) ([]model.Anime, error) {
	animes, err := s.repo.FindAllUnpaged(ctx)
	if err != nil {
		s.logger(ctx).Error().Err(err).Msg("failed to list all animes")
		return nil, sqlerr.HandleError(err)
	}
	return animes, nil
}

// FindByName returns every anime named exactly name, possibly none.
func (s *AnimeService) FindByName(ctx context.Context, name string) ([]model.Anime, error) {
	animes, err := s.repo.FindByName(ctx, name)
	if err != nil {
		s.logger(ctx).Error().Err(err).Msg("failed to find animes by name")
		return nil, sqlerr.HandleError(err)
	}
	return animes, nil
}

// FindByIDOrBadRequest loads an anime, reporting a missing id as a 400 with
// code ANIME_NOT_FOUND.
func (s *AnimeService) FindByIDOrBadRequest(ctx context.Context, id int64) (*model.Anime, error) {
	anime, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, animeNotFound()
		}
		s.logger(ctx).Error().Err(err).Msg("failed to find anime")
		return nil, sqlerr.HandleError(err)
	}
	return anime, nil
}

func (s *AnimeService) Create(ctx context.Context, req *model.CreateAnimeRequest) (*model.Anime, error) {
	if err := req.Validate(); err != nil {
		return nil, errs.ValidationError(err)
	}

	anime, err := s.repo.Save(ctx, req.ToAnime())
	if err != nil {
		s.logger(ctx).Error().Err(err).Msg("failed to create anime")
		return nil, sqlerr.HandleError(err)
	}

	newrelic.FromContext(ctx).AddAttribute("anime.id", anime.ID)

	s.logger(ctx).Info().
		Int64("anime_id", anime.ID).
		Str("name", anime.Name).
		Msg("anime created")

	return anime, nil
}

// Replace overwrites the name of the stored anime. The stored id is kept.
func (s *AnimeService) Replace(ctx context.Context, req *model.ReplaceAnimeRequest) error {
	if err := req.Validate(); err != nil {
		return errs.ValidationError(err)
	}

	stored, err := s.FindByIDOrBadRequest(ctx, req.ID)
	if err != nil {
		return err
	}

	replacement := req.ToAnime()
	replacement.ID = stored.ID

	if _, err := s.repo.Save(ctx, replacement); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return animeNotFound()
		}
		s.logger(ctx).Error().Err(err).Msg("failed to replace anime")
		return sqlerr.HandleError(err)
	}

	s.logger(ctx).Info().Int64("anime_id", stored.ID).Msg("anime replaced")

	return nil
}

// Delete removes an existing anime. A missing id is a 400 like any lookup.
func (s *AnimeService) Delete(ctx context.Context, id int64) error {
	if _, err := s.FindByIDOrBadRequest(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return animeNotFound()
		}
		s.logger(ctx).Error().Err(err).Msg("failed to delete anime")
		return sqlerr.HandleError(err)
	}

	s.logger(ctx).Info().Int64("anime_id", id).Msg("anime deleted")

	return nil
}

// logger prefers the request-scoped logger carried by ctx.
func (s *AnimeService) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return s.server.Logger
}

func animeNotFound() error {
	code := ErrCodeAnimeNotFound
	return errs.NewBadRequestError("Anime ID not found", true, &code, nil, nil)
}
