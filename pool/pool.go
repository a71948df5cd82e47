package psqlpool

import (
	"context"

	"heroes/heroes_go_service/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
)

// Pool wraps pgxpool and opens a span for every statement.
type Pool struct {
	Db *pgxpool.Pool
}

func New(ctx context.Context, cfg config.Config) (*Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.PostgresURL())
	if err != nil {
		return nil, errors.Wrap(err, "pgxpool.ParseConfig")
	}

	poolConfig.MaxConns = cfg.PostgresMaxConnections

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Wrap(err, "pgxpool.NewWithConfig")
	}

	if err = db.Ping(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	return &Pool{Db: db}, nil
}

func (b *Pool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "pgx.QueryRow")
	defer dbSpan.Finish()

	dbSpan.SetTag("sql", sql)
	dbSpan.SetTag("args", args)

	return b.Db.QueryRow(ctx, sql, args...)
}

func (b *Pool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "pgx.Query")
	defer dbSpan.Finish()

	dbSpan.SetTag("sql", sql)
	dbSpan.SetTag("args", args)

	rows, err := b.Db.Query(ctx, sql, args...)
	if err != nil {
		markError(dbSpan, err)
	}

	return rows, err
}

func (b *Pool) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "pgx.Exec")
	defer dbSpan.Finish()

	dbSpan.SetTag("sql", sql)
	dbSpan.SetTag("args", arguments)

	tag, err := b.Db.Exec(ctx, sql, arguments...)
	if err != nil {
		markError(dbSpan, err)
	}

	return tag, err
}

func (b *Pool) Begin(ctx context.Context) (pgx.Tx, error) {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "pgx.Begin")
	defer dbSpan.Finish()

	tx, err := b.Db.Begin(ctx)
	if err != nil {
		markError(dbSpan, err)
		return nil, err
	}

	return tx, nil
}

// InTx runs fn inside a transaction, committing when it returns nil.
func (b *Pool) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := b.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err = fn(tx); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(ctx), "commit")
}

func (b *Pool) Ping(ctx context.Context) error {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "pgx.Ping")
	defer dbSpan.Finish()

	return b.Db.Ping(ctx)
}

func (b *Pool) Close() {
	b.Db.Close()
}

func markError(span opentracing.Span, err error) {
	span.SetTag("error", true)
	span.LogKV("error.message", err.Error())
}
