package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/anime-api/internal/database"
	"github.com/deppfellow/anime-api/internal/model"
)

const usersTable = "users"

type UserRepository struct {
	log     zerolog.Logger
	db      *sql.DB
	builder sq.StatementBuilderType
	slow    time.Duration
}

func NewUserRepository(db *database.Database, log zerolog.Logger) *UserRepository {
	return &UserRepository{
		log:     log.With().Str("repo", "user").Logger(),
		db:      db.DB,
		builder: db.Builder,
		slow:    db.SlowQueryThreshold,
	}
}

// FindByUsername wraps sql.ErrNoRows for unknown usernames.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query, args, err := r.builder.
		Select("id", "name", "username", "password", "authorities").
		From(usersTable).
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Str("username", username).Msg("FindByUsername")

	start := time.Now()
	var user model.User
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&user.ID, &user.Name, &user.Username, &user.Password, &user.Authorities)
	if err != nil {
		return nil, errors.Wrapf(err, "user %q", username)
	}
	logSlowQuery(r.log, r.slow, "FindByUsername", query, start)

	return &user, nil
}

// Create stores user. Password must already be hashed.
func (r *UserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	query, args, err := r.builder.
		Insert(usersTable).
		Columns("name", "username", "password", "authorities").
		Values(user.Name, user.Username, user.Password, user.Authorities).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Str("username", user.Username).Msg("Create")

	created := *user
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&created.ID); err != nil {
		return nil, errors.Wrap(err, "error inserting user")
	}

	return &created, nil
}
