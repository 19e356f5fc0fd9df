package repository

import (
	"context"
	"database/sql"
	"log/slog"
)

// Advisory lock key shared by all sync cycles. Overlapping cron triggers
// would otherwise race each other between the dedup check and the insert.
const syncLockKey = 727968101

// SyncLock is a held advisory lock. Release must be called once.
type SyncLock interface {
	Release(ctx context.Context) error
}

type SyncLockRepository interface {
	// Acquire returns a held lock, or nil when another cycle holds it.
	Acquire(ctx context.Context) (SyncLock, error)
}

type syncLockRepository struct {
	db *sql.DB
}

func NewSyncLockRepository(db *sql.DB) SyncLockRepository {
	return &syncLockRepository{db: db}
}

type syncLock struct {
	conn *sql.Conn
}

func (r *syncLockRepository) Acquire(ctx context.Context) (SyncLock, error) {
	// Advisory locks are session-scoped, so the lock has to live on a
	// dedicated connection rather than whatever the pool hands out next.
	conn, err := r.db.Conn(ctx)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	var locked bool
	err = conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, syncLockKey).Scan(&locked)
	if err != nil {
		conn.Close()
		slog.Info(err.Error())
		return nil, err
	}

	if !locked {
		conn.Close()
		return nil, nil
	}

	return &syncLock{conn: conn}, nil
}

func (l *syncLock) Release(ctx context.Context) error {
	defer l.conn.Close()

	var unlocked bool
	err := l.conn.QueryRowContext(ctx, `SELECT pg_advisory_unlock($1)`, syncLockKey).Scan(&unlocked)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
