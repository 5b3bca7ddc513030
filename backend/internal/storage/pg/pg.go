// Package pg stores each board as one row: its threads live in a JSONB column
// and a version column guards concurrent saves.
package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/msgboard/msgboard/backend/internal/storage"
	"github.com/msgboard/msgboard/shared/config"
	"github.com/msgboard/msgboard/shared/domain"
	"github.com/msgboard/msgboard/shared/logger"
	sharedpg "github.com/msgboard/msgboard/shared/storage/pg"
)

type Storage struct {
	db       *sql.DB
	attempts int
}

var _ storage.Backend = (*Storage)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS boards (
	name    text        PRIMARY KEY,
	threads jsonb       NOT NULL DEFAULT '[]'::jsonb,
	version bigint      NOT NULL DEFAULT 1,
	created timestamptz NOT NULL DEFAULT now()
)`

// New connects, creates the schema if needed and returns the store.
func New(ctx context.Context, cfg config.Pg, updateAttempts int) (*Storage, error) {
	logger.Log.Info("connecting to postgres", "host", cfg.Host, "db", cfg.Dbname)
	db, err := sharedpg.Connect(ctx, cfg, sharedpg.DefaultConnectionConfig())
	if err != nil {
		return nil, err
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	logger.Log.Info("connected to postgres")
	return newWithDB(db, updateAttempts), nil
}

func newWithDB(db *sql.DB, updateAttempts int) *Storage {
	if updateAttempts <= 0 {
		updateAttempts = storage.DefaultUpdateAttempts
	}
	return &Storage{db: db, attempts: updateAttempts}
}

func migrate(ctx context.Context, db *sql.DB) error {
	return sharedpg.WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schema); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS boards_thread_count_idx ON boards ((jsonb_array_length(threads)) DESC)`)
		return err
	})
}

func (s *Storage) UpdateBoard(ctx context.Context, name domain.BoardName, fn func(*domain.Board) error) (*domain.Board, error) {
	return storage.Update(ctx, s, name, s.attempts, fn)
}

func (s *Storage) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.db.Close()
}
