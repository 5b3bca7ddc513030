// Package storage holds what every board store shares: the backend contract,
// the optimistic update loop and the stale-version error.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/msgboard/msgboard/shared/domain"
)

// ErrStaleBoard is returned by Save when the stored document moved past board.Version.
var ErrStaleBoard = errors.New("board was modified concurrently")

// DefaultUpdateAttempts is used when a store is built without an explicit limit.
const DefaultUpdateAttempts = 5

// Backend is a document store keeping one document per board.
//
// FindByName and Save return *errors.NotFoundError for unknown boards,
// CreateBoard returns *errors.ConflictError when the name is taken.
type Backend interface {
	FindByName(ctx context.Context, name domain.BoardName) (*domain.Board, error)
	// FindAll lists boards not in excluding, by thread count desc, ties by name.
	FindAll(ctx context.Context, excluding []domain.BoardName) ([]domain.BoardMetadata, error)
	CreateBoard(ctx context.Context, name domain.BoardName) (*domain.Board, error)
	// UpsertPushThread appends thread to the board in one atomic step, creating the board if needed.
	UpsertPushThread(ctx context.Context, name domain.BoardName, thread domain.Thread) (*domain.Board, error)
	// Save writes board only if the stored version still equals board.Version,
	// then increments board.Version.
	Save(ctx context.Context, board *domain.Board) error
	// UpdateBoard runs read, fn, Save until Save stops failing with ErrStaleBoard.
	UpdateBoard(ctx context.Context, name domain.BoardName, fn func(*domain.Board) error) (*domain.Board, error)
	Ping(ctx context.Context) error
	Close() error
}

type finderSaver interface {
	FindByName(ctx context.Context, name domain.BoardName) (*domain.Board, error)
	Save(ctx context.Context, board *domain.Board) error
}

// Update is the read-mutate-save loop backends use to implement UpdateBoard.
// An error from fn aborts without writing and is returned as is.
func Update(ctx context.Context, s finderSaver, name domain.BoardName, attempts int, fn func(*domain.Board) error) (*domain.Board, error) {
	if attempts <= 0 {
		attempts = DefaultUpdateAttempts
	}
	for i := 0; i < attempts; i++ {
		board, err := s.FindByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if err := fn(board); err != nil {
			return nil, err
		}
		err = s.Save(ctx, board)
		if err == nil {
			return board, nil
		}
		if !errors.Is(err, ErrStaleBoard) {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
	}
	return nil, fmt.Errorf("update board %q: gave up after %d attempts: %w", name, attempts, ErrStaleBoard)
}

// SortMetadata applies the FindAll order to boards collected by a backend.
func SortMetadata(boards []domain.BoardMetadata) []domain.BoardMetadata {
	domain.SortBoards(boards)
	return boards
}

// Excluded builds a lookup set from reserved board names.
func Excluded(names []domain.BoardName) map[domain.BoardName]struct{} {
	set := make(map[domain.BoardName]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Normalize replaces nil collections left by a decoder with empty ones.
func Normalize(board *domain.Board) *domain.Board {
	if board.Threads == nil {
		board.Threads = []domain.Thread{}
	}
	for i := range board.Threads {
		if board.Threads[i].Replies == nil {
			board.Threads[i].Replies = []domain.Reply{}
		}
	}
	return board
}
