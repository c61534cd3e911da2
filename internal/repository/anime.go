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

const animesTable = "animes"

type AnimeRepository struct {
	log     zerolog.Logger
	db      *sql.DB
	builder sq.StatementBuilderType
	slow    time.Duration
}

func NewAnimeRepository(db *database.Database, log zerolog.Logger) *AnimeRepository {
	return &AnimeRepository{
		log:     log.With().Str("repo", "anime").Logger(),
		db:      db.DB,
		builder: db.Builder,
		slow:    db.SlowQueryThreshold,
	}
}

// FindAll returns one page of animes and the total row count.
func (r *AnimeRepository) FindAll(ctx context.Context, page model.PageRequest) (model.Page[model.Anime], error) {
	var total int64

	countQuery, countArgs, err := r.builder.Select("COUNT(*)").From(animesTable).ToSql()
	if err != nil {
		return model.Page[model.Anime]{}, errors.Wrap(err, "error building query")
	}
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return model.Page[model.Anime]{}, errors.Wrap(err, "error counting animes")
	}

	orderBy := []string{page.Sort.String()}
	if page.Sort.Field != "id" {
		orderBy = append(orderBy, "id ASC")
	}

	queryBuilder := r.builder.
		Select("id", "name").
		From(animesTable).
		OrderBy(orderBy...).
		Limit(uint64(page.Size)).
		Offset(page.Offset())

	animes, err := r.query(ctx, "FindAll", queryBuilder)
	if err != nil {
		return model.Page[model.Anime]{}, err
	}

	return model.NewPage(animes, page, total), nil
}

// FindAllUnpaged returns every anime ordered by id.
func (r *AnimeRepository) FindAllUnpaged(ctx context.Context) ([]model.Anime, error) {
	queryBuilder := r.builder.
		Select("id", "name").
		From(animesTable).
		OrderBy("id ASC")

	return r.query(ctx, "FindAllUnpaged", queryBuilder)
}

// FindByName matches the name exactly. No match yields an empty slice.
func (r *AnimeRepository) FindByName(ctx context.Context, name string) ([]model.Anime, error) {
	queryBuilder := r.builder.
		Select("id", "name").
		From(animesTable).
		Where(sq.Eq{"name": name}).
		OrderBy("id ASC")

	return r.query(ctx, "FindByName", queryBuilder)
}

// FindByID returns an error wrapping sql.ErrNoRows when id does not exist.
func (r *AnimeRepository) FindByID(ctx context.Context, id int64) (*model.Anime, error) {
	query, args, err := r.builder.
		Select("id", "name").
		From(animesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("FindByID")

	start := time.Now()
	var anime model.Anime
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&anime.ID, &anime.Name); err != nil {
		return nil, errors.Wrapf(err, "anime %d", id)
	}
	logSlowQuery(r.log, r.slow, "FindByID", query, start)

	return &anime, nil
}

// Save inserts anime when its ID is zero and updates it otherwise. The
// returned entity carries the stored id.
func (r *AnimeRepository) Save(ctx context.Context, anime *model.Anime) (*model.Anime, error) {
	if anime.ID == 0 {
		return r.insert(ctx, anime)
	}
	return r.update(ctx, anime)
}

func (r *AnimeRepository) insert(ctx context.Context, anime *model.Anime) (*model.Anime, error) {
	query, args, err := r.builder.
		Insert(animesTable).
		Columns("name").
		Values(anime.Name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Save")

	start := time.Now()
	saved := &model.Anime{Name: anime.Name}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&saved.ID); err != nil {
		return nil, errors.Wrap(err, "error inserting anime")
	}
	logSlowQuery(r.log, r.slow, "Save", query, start)

	return saved, nil
}

func (r *AnimeRepository) update(ctx context.Context, anime *model.Anime) (*model.Anime, error) {
	query, args, err := r.builder.
		Update(animesTable).
		Set("name", anime.Name).
		Where(sq.Eq{"id": anime.ID}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Save")

	start := time.Now()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error updating anime")
	}
	logSlowQuery(r.log, r.slow, "Save", query, start)

	if err := requireRow(result); err != nil {
		return nil, errors.Wrapf(err, "anime %d", anime.ID)
	}

	saved := *anime
	return &saved, nil
}

// Delete removes the anime with id. Deleting a missing id wraps sql.ErrNoRows.
func (r *AnimeRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.builder.
		Delete(animesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Delete")

	start := time.Now()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "error deleting anime")
	}
	logSlowQuery(r.log, r.slow, "Delete", query, start)

	return errors.Wrapf(requireRow(result), "anime %d", id)
}

func (r *AnimeRepository) query(ctx context.Context, name string, queryBuilder sq.SelectBuilder) ([]model.Anime, error) {
	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg(name)

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error executing query")
	}
	defer rows.Close()

	animes := make([]model.Anime, 0)
	for rows.Next() {
		var anime model.Anime
		if err := rows.Scan(&anime.ID, &anime.Name); err != nil {
			return nil, errors.Wrap(err, "error scanning row")
		}
		animes = append(animes, anime)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating rows")
	}

	logSlowQuery(r.log, r.slow, name, query, start)

	return animes, nil
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "error reading affected rows")
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
