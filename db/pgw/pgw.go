// pgx wrappers that carry a context and a logger and account for time spent in the db
package pgw

import (
	"context"
	"docdiff/log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Queryable interface {
	Begin() (*Tx, error)
	Exec(sql string, args ...any) (pgconn.CommandTag, error)
	Query(sql string, args ...any) (pgx.Rows, error)
	QueryRow(sql string, args ...any) pgx.Row
	Logger() log.Logger
	Context() context.Context
}

type Pool struct {
	impl   *pgxpool.Pool
	ctx    context.Context
	logger log.Logger
}

func NewPool(ctx context.Context, connString string, logger log.Logger) (*Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &Pool{
		impl:   pool,
		ctx:    ctx,
		logger: logger,
	}, nil
}

// Child shares the underlying pgx pool but scopes acquired connections to the given
// context and logger (one per request or background task).
func (pool *Pool) Child(ctx context.Context, logger log.Logger) *Pool {
	return &Pool{
		impl:   pool.impl,
		ctx:    ctx,
		logger: logger,
	}
}

func (pool *Pool) Acquire() (*Conn, error) {
	t1 := time.Now()
	defer addDuration(pool.ctx, t1)()

	conn, err := pool.impl.Acquire(pool.ctx)
	if err != nil {
		return nil, err
	}

	return &Conn{
		impl:   conn,
		ctx:    pool.ctx,
		logger: pool.logger,
	}, nil
}

func (pool *Pool) Logger() log.Logger {
	return pool.logger
}

type Conn struct {
	impl   *pgxpool.Conn
	ctx    context.Context
	logger log.Logger
}

func (conn *Conn) Begin() (*Tx, error) {
	t1 := time.Now()
	defer addDuration(conn.ctx, t1)()

	tx, err := conn.impl.Begin(conn.ctx)
	if err != nil {
		return nil, err
	}
	return &Tx{
		impl:   tx,
		ctx:    conn.ctx,
		logger: conn.logger,
	}, nil
}

func (conn *Conn) Exec(sql string, args ...any) (pgconn.CommandTag, error) {
	t1 := time.Now()
	defer addDuration(conn.ctx, t1)()

	return conn.impl.Exec(conn.ctx, sql, args...)
}

func (conn *Conn) Query(sql string, args ...any) (pgx.Rows, error) {
	t1 := time.Now()
	defer addDuration(conn.ctx, t1)()

	return conn.impl.Query(conn.ctx, sql, args...)
}

func (conn *Conn) QueryRow(sql string, args ...any) pgx.Row {
	t1 := time.Now()
	defer addDuration(conn.ctx, t1)()

	return conn.impl.QueryRow(conn.ctx, sql, args...)
}

func (conn *Conn) Logger() log.Logger {
	return conn.logger
}

func (conn *Conn) Context() context.Context {
	return conn.ctx
}

func (conn *Conn) Release() {
	conn.impl.Release()
}

type Tx struct {
	impl   pgx.Tx
	ctx    context.Context
	logger log.Logger
}

// Begin starts a pseudo nested transaction.
func (tx *Tx) Begin() (*Tx, error) {
	t1 := time.Now()
	defer addDuration(tx.ctx, t1)()

	nested, err := tx.impl.Begin(tx.ctx)
	if err != nil {
		return nil, err
	}

	return &Tx{
		impl:   nested,
		ctx:    tx.ctx,
		logger: tx.logger,
	}, nil
}

// Commit commits the transaction if this is a real transaction or releases the savepoint if this is a
// pseudo nested transaction. Safe to call multiple times, the second call returns ErrTxClosed.
func (tx *Tx) Commit() error {
	t1 := time.Now()
	defer addDuration(tx.ctx, t1)()

	return tx.impl.Commit(tx.ctx)
}

// Rollback rolls back the transaction if this is a real transaction or rolls back to the savepoint if
// this is a pseudo nested transaction. A defer tx.Rollback() is safe even if tx.Commit() is called
// first in a non-error condition.
func (tx *Tx) Rollback() error {
	t1 := time.Now()
	defer addDuration(tx.ctx, t1)()

	return tx.impl.Rollback(tx.ctx)
}

func (tx *Tx) Exec(sql string, args ...any) (pgconn.CommandTag, error) {
	t1 := time.Now()
	defer addDuration(tx.ctx, t1)()

	return tx.impl.Exec(tx.ctx, sql, args...)
}

func (tx *Tx) Query(sql string, args ...any) (pgx.Rows, error) {
	t1 := time.Now()
	defer addDuration(tx.ctx, t1)()

	return tx.impl.Query(tx.ctx, sql, args...)
}

func (tx *Tx) QueryRow(sql string, args ...any) pgx.Row {
	t1 := time.Now()
	defer addDuration(tx.ctx, t1)()

	return tx.impl.QueryRow(tx.ctx, sql, args...)
}

func (tx *Tx) Logger() log.Logger {
	return tx.logger
}

func (tx *Tx) Context() context.Context {
	return tx.ctx
}

type dbDurationKeyType struct{}

var dbDurationKey = &dbDurationKeyType{}

func addDuration(ctx context.Context, t1 time.Time) func() {
	return func() {
		t2 := time.Now()
		dbDurationAny := ctx.Value(dbDurationKey)
		if dbDurationAny != nil {
			dbDuration := dbDurationAny.(*time.Duration)
			*dbDuration += t2.Sub(t1)
		}
	}
}

func DbDuration(ctx context.Context) time.Duration {
	dbDuration := ctx.Value(dbDurationKey)
	if dbDuration == nil {
		panic("Must call pgw.WithDBDuration() first")
	}

	return *dbDuration.(*time.Duration)
}

func WithDBDuration(r *http.Request) *http.Request {
	dbDuration := time.Duration(0)
	r = r.WithContext(context.WithValue(r.Context(), dbDurationKey, &dbDuration))
	return r
}
