// Package model holds the stored entities and the request/response shapes
// exchanged with API clients.
package model

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Anime is the stored entity. ID is assigned by the database.
type Anime struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// CreateAnimeRequest is the POST /api/v1/animes body.
type CreateAnimeRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (r *CreateAnimeRequest) Validate() error {
	return validate.Struct(r)
}

// ToAnime maps the request to an unsaved entity.
func (r *CreateAnimeRequest) ToAnime() *Anime {
	return &Anime{Name: r.Name}
}

// ReplaceAnimeRequest is the PUT /api/v1/animes body.
type ReplaceAnimeRequest struct {
	ID   int64  `json:"id" validate:"required,min=1"`
	Name string `json:"name" validate:"required,max=255"`
}

func (r *ReplaceAnimeRequest) Validate() error {
	return validate.Struct(r)
}

func (r *ReplaceAnimeRequest) ToAnime() *Anime {
	return &Anime{ID: r.ID, Name: r.Name}
}

// AnimeIDRequest binds the :id path parameter.
type AnimeIDRequest struct {
	ID int64 `param:"id" validate:"required,min=1"`
}

func (r *AnimeIDRequest) Validate() error {
	return validate.Struct(r)
}

// FindAnimesByNameRequest binds ?name=. An empty name matches nothing.
type FindAnimesByNameRequest struct {
	Name string `query:"name"`
}

func (r *FindAnimesByNameRequest) Validate() error {
	return validate.Struct(r)
}

// ListAllAnimesRequest carries no parameters.
type ListAllAnimesRequest struct{}

func (r *ListAllAnimesRequest) Validate() error {
	return nil
}
