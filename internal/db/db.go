package db

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// Idle connections are recycled so a restarted Postgres does not leave the
// pool holding dead sockets.
const connMaxIdleTime = 5 * time.Minute

// Connect opens a Postgres pool for dsn and pings it. The pool comes back
// even when the ping fails; Open relies on that to start degraded.
func Connect(ctx context.Context, dsn string, maxOpen, maxIdle int) (*sql.DB, error) {
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(maxOpen)
	pool.SetMaxIdleConns(maxIdle)
	pool.SetConnMaxIdleTime(connMaxIdleTime)

	return pool, pool.PingContext(ctx)
}
