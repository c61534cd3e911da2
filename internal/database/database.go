// Package database opens the storage backend and runs schema migrations.
//
// Postgres is reached through a pgx connection pool, exposed to the rest of
// the app as *sql.DB via pgx's stdlib adapter. SQLite (modernc, pure Go) is
// used for local runs and tests. Repositories only see *sql.DB and a squirrel
// builder, so the same SQL runs on both.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/deppfellow/anime-api/internal/config"
	loggerConfig "github.com/deppfellow/anime-api/internal/logger"
)

// DatabasePingTimeout is in seconds.
const DatabasePingTimeout = 10

type Database struct {
	// Pool is nil for sqlite.
	Pool    *pgxpool.Pool
	DB      *sql.DB
	Builder sq.StatementBuilderType
	Driver  string

	// SlowQueryThreshold makes repositories warn about slower queries.
	// Zero disables the warning.
	SlowQueryThreshold time.Duration

	log *zerolog.Logger
}

// multiTracer fans pgx query tracing out to several tracers, since pgx only
// holds one.
type multiTracer struct {
	tracers []pgx.QueryTracer
}

func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		ctx = tracer.TraceQueryStart(ctx, conn, data)
	}
	return ctx
}

func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		tracer.TraceQueryEnd(ctx, conn, data)
	}
}

// New opens the database selected by cfg.Database.Driver and pings it.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return newPostgres(cfg, logger, loggerService)
	case config.DriverSQLite:
		return newSQLite(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// DSN builds the postgres connection URL, escaping the password.
func DSN(cfg config.DatabaseConfig) string {
	hostPort := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		hostPort,
		cfg.Name,
		cfg.SSLMode,
	)
}

func newPostgres(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	pgxPoolConfig, err := pgxpool.ParseConfig(DSN(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	pgxPoolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	pgxPoolConfig.MinConns = int32(cfg.Database.MaxIdleConns)
	pgxPoolConfig.MaxConnLifetime = time.Duration(cfg.Database.ConnMaxLifetime) * time.Second
	pgxPoolConfig.MaxConnIdleTime = time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second

	var tracers []pgx.QueryTracer
	if loggerService.GetApplication() != nil {
		tracers = append(tracers, nrpgx5.NewTracer())
	}

	// SQL logging is noisy; local only.
	if cfg.IsLocal() {
		globalLevel := logger.GetLevel()
		pgxLogger := loggerConfig.NewPgxLogger(globalLevel)
		tracers = append(tracers, &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(pgxLogger),
			LogLevel: tracelog.LogLevel(loggerConfig.GetPgxTraceLogLevel(globalLevel)),
		})
	}

	switch len(tracers) {
	case 0:
	case 1:
		pgxPoolConfig.ConnConfig.Tracer = tracers[0]
	default:
		pgxPoolConfig.ConnConfig.Tracer = &multiTracer{tracers: tracers}
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), pgxPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	database := &Database{
		Pool:    pool,
		DB:      stdlib.OpenDBFromPool(pool),
		Builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		Driver:  config.DriverPostgres,
		log:     logger,

		SlowQueryThreshold: cfg.Observability.Logging.SlowQueryThreshold,
	}

	if err := database.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info().Str("driver", database.Driver).Msg("connected to the database")

	return database, nil
}

func newSQLite(cfg *config.Config, logger *zerolog.Logger) (*Database, error) {
	dsn := sqliteDSN(cfg.Database.Path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if isMemory(cfg.Database.Path) {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		if _, err := db.Exec(`PRAGMA journal_mode = wal;`); err != nil {
			db.Close()
			return nil, fmt.Errorf("unable to enable WAL mode: %w", err)
		}
	}

	database := &Database{
		DB:      db,
		Builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		Driver:  config.DriverSQLite,
		log:     logger,

		SlowQueryThreshold: cfg.Observability.Logging.SlowQueryThreshold,
	}

	if err := database.Ping(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().Str("driver", database.Driver).Str("path", cfg.Database.Path).Msg("connected to the database")

	return database, nil
}

func sqliteDSN(path string) string {
	params := "_pragma=busy_timeout%3d1000&_pragma=foreign_keys(1)"
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

// Ping fails fast if the database is unreachable.
func (db *Database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DatabasePingTimeout*time.Second)
	defer cancel()

	if err := db.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func (db *Database) Close() error {
	db.log.Info().Msg("closing database connection pool")

	err := db.DB.Close()
	if db.Pool != nil {
		db.Pool.Close()
	}
	return err
}
