// Package memory is a board store kept in process memory. It backs development
// runs and the handler end-to-end tests.
package memory

import (
	"context"
	"sync"

	"github.com/msgboard/msgboard/backend/internal/storage"
	"github.com/msgboard/msgboard/shared/domain"
	"github.com/msgboard/msgboard/shared/errors"
)

type Storage struct {
	mu       sync.RWMutex
	boards   map[domain.BoardName]*domain.Board
	attempts int
}

var _ storage.Backend = (*Storage)(nil)

func New(updateAttempts int) *Storage {
	return &Storage{
		boards:   make(map[domain.BoardName]*domain.Board),
		attempts: updateAttempts,
	}
}

func (s *Storage) FindByName(_ context.Context, name domain.BoardName) (*domain.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	board, ok := s.boards[name]
	if !ok {
		return nil, errors.NewBoardNotFound(name)
	}
	return board.Clone(), nil
}

func (s *Storage) FindAll(_ context.Context, excluding []domain.BoardName) ([]domain.BoardMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	skip := storage.Excluded(excluding)
	boards := make([]domain.BoardMetadata, 0, len(s.boards))
	for name, board := range s.boards {
		if _, ok := skip[name]; ok {
			continue
		}
		boards = append(boards, board.Metadata())
	}
	return storage.SortMetadata(boards), nil
}

func (s *Storage) CreateBoard(_ context.Context, name domain.BoardName) (*domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.boards[name]; ok {
		return nil, &errors.ConflictError{Board: name}
	}
	board := &domain.Board{Name: name, Threads: []domain.Thread{}, Version: 1}
	s.boards[name] = board
	return board.Clone(), nil
}

func (s *Storage) UpsertPushThread(_ context.Context, name domain.BoardName, thread domain.Thread) (*domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	board, ok := s.boards[name]
	if !ok {
		board = &domain.Board{Name: name, Threads: []domain.Thread{}}
		s.boards[name] = board
	}
	board.Threads = append(board.Threads, thread)
	board.Version++
	return board.Clone(), nil
}

func (s *Storage) Save(_ context.Context, board *domain.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.boards[board.Name]
	if !ok {
		return errors.NewBoardNotFound(board.Name)
	}
	if current.Version != board.Version {
		return storage.ErrStaleBoard
	}
	board.Version++
	s.boards[board.Name] = board.Clone()
	return nil
}

func (s *Storage) UpdateBoard(ctx context.Context, name domain.BoardName, fn func(*domain.Board) error) (*domain.Board, error) {
	return storage.Update(ctx, s, name, s.attempts, fn)
}

func (s *Storage) Ping(context.Context) error {
	return nil
}

func (s *Storage) Close() error {
	return nil
}
