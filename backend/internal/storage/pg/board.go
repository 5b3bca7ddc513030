package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/msgboard/msgboard/backend/internal/storage"
	"github.com/msgboard/msgboard/shared/domain"
	internal_errors "github.com/msgboard/msgboard/shared/errors"
)

func decodeThreads(raw []byte) ([]domain.Thread, error) {
	board := &domain.Board{}
	if err := json.Unmarshal(raw, &board.Threads); err != nil {
		return nil, fmt.Errorf("unmarshal threads: %w", err)
	}
	return storage.Normalize(board).Threads, nil
}

func encodeThreads(threads []domain.Thread) ([]byte, error) {
	if threads == nil {
		threads = []domain.Thread{}
	}
	data, err := json.Marshal(threads)
	if err != nil {
		return nil, fmt.Errorf("marshal threads: %w", err)
	}
	return data, nil
}

func (s *Storage) FindByName(ctx context.Context, name domain.BoardName) (*domain.Board, error) {
	var raw []byte
	board := &domain.Board{Name: name}
	err := s.db.QueryRowContext(ctx, `SELECT threads, version FROM boards WHERE name = $1`, name).Scan(&raw, &board.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, internal_errors.NewBoardNotFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("select board %q: %w", name, err)
	}
	if board.Threads, err = decodeThreads(raw); err != nil {
		return nil, err
	}
	return board, nil
}

func (s *Storage) FindAll(ctx context.Context, excluding []domain.BoardName) ([]domain.BoardMetadata, error) {
	if excluding == nil {
		excluding = []domain.BoardName{}
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, jsonb_array_length(threads)
		FROM boards
		WHERE name <> ALL($1::text[])
		ORDER BY 2 DESC, name COLLATE "C"`, pq.Array(excluding))
	if err != nil {
		return nil, fmt.Errorf("select boards: %w", err)
	}
	defer rows.Close()

	boards := []domain.BoardMetadata{}
	for rows.Next() {
		var b domain.BoardMetadata
		if err := rows.Scan(&b.Name, &b.ThreadCount); err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return storage.SortMetadata(boards), nil
}

func (s *Storage) CreateBoard(ctx context.Context, name domain.BoardName) (*domain.Board, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO boards (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return nil, fmt.Errorf("insert board %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, &internal_errors.ConflictError{Board: name}
	}
	return &domain.Board{Name: name, Threads: []domain.Thread{}, Version: 1}, nil
}

// UpsertPushThread is one statement, so two first posts to a new board
// end up as one row with both threads.
func (s *Storage) UpsertPushThread(ctx context.Context, name domain.BoardName, thread domain.Thread) (*domain.Board, error) {
	pushed, err := encodeThreads([]domain.Thread{thread})
	if err != nil {
		return nil, err
	}

	var raw []byte
	board := &domain.Board{Name: name}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO boards (name, threads) VALUES ($1, $2::jsonb)
		ON CONFLICT (name) DO UPDATE
			SET threads = boards.threads || EXCLUDED.threads,
			    version = boards.version + 1
		RETURNING threads, version`, name, string(pushed)).Scan(&raw, &board.Version)
	if err != nil {
		return nil, fmt.Errorf("push thread to %q: %w", name, err)
	}
	if board.Threads, err = decodeThreads(raw); err != nil {
		return nil, err
	}
	return board, nil
}

func (s *Storage) Save(ctx context.Context, board *domain.Board) error {
	data, err := encodeThreads(board.Threads)
	if err != nil {
		return err
	}

	var version int64
	err = s.db.QueryRowContext(ctx, `
		UPDATE boards SET threads = $3::jsonb, version = version + 1
		WHERE name = $1 AND version = $2
		RETURNING version`, board.Name, board.Version, string(data)).Scan(&version)
	if err == nil {
		board.Version = version
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update board %q: %w", board.Name, err)
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM boards WHERE name = $1)`, board.Name).Scan(&exists); err != nil {
		return fmt.Errorf("check board %q: %w", board.Name, err)
	}
	if !exists {
		return internal_errors.NewBoardNotFound(board.Name)
	}
	return storage.ErrStaleBoard
}
