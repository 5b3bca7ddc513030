package service

import (
	"context"
	"sync"

	"github.com/msgboard/msgboard/shared/domain"
	internal_errors "github.com/msgboard/msgboard/shared/errors"
)

// --- Mocks ---

// MockStorage mocks every storage interface of the package.
type MockStorage struct {
	findByNameFunc       func(name domain.BoardName) (*domain.Board, error)
	findAllFunc          func(excluding []domain.BoardName) ([]domain.BoardMetadata, error)
	createBoardFunc      func(name domain.BoardName) (*domain.Board, error)
	upsertPushThreadFunc func(name domain.BoardName, thread domain.Thread) (*domain.Board, error)
	updateBoardFunc      func(name domain.BoardName, fn func(*domain.Board) error) (*domain.Board, error)

	mu          sync.Mutex
	writes      int
	pushedBoard domain.BoardName
	pushed      *domain.Thread
}

func (m *MockStorage) FindByName(_ context.Context, name domain.BoardName) (*domain.Board, error) {
	if m.findByNameFunc != nil {
		return m.findByNameFunc(name)
	}
	return nil, internal_errors.NewBoardNotFound(name)
}

func (m *MockStorage) FindAll(_ context.Context, excluding []domain.BoardName) ([]domain.BoardMetadata, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(excluding)
	}
	return []domain.BoardMetadata{}, nil
}

func (m *MockStorage) CreateBoard(_ context.Context, name domain.BoardName) (*domain.Board, error) {
	m.mu.Lock()
	m.writes++
	m.mu.Unlock()
	if m.createBoardFunc != nil {
		return m.createBoardFunc(name)
	}
	return &domain.Board{Name: name, Threads: []domain.Thread{}}, nil
}

func (m *MockStorage) UpsertPushThread(_ context.Context, name domain.BoardName, thread domain.Thread) (*domain.Board, error) {
	m.mu.Lock()
	m.writes++
	m.pushedBoard = name
	m.pushed = &thread
	m.mu.Unlock()
	if m.upsertPushThreadFunc != nil {
		return m.upsertPushThreadFunc(name, thread)
	}
	return &domain.Board{Name: name, Threads: []domain.Thread{thread}}, nil
}

func (m *MockStorage) UpdateBoard(_ context.Context, name domain.BoardName, fn func(*domain.Board) error) (*domain.Board, error) {
	if m.updateBoardFunc != nil {
		return m.updateBoardFunc(name, fn)
	}
	return nil, internal_errors.NewBoardNotFound(name)
}

// withBoard serves a single board document. Updates run on a copy and are
// kept only when the mutation succeeds, like a real store.
func withBoard(board *domain.Board) *MockStorage {
	m := &MockStorage{}
	m.findByNameFunc = func(name domain.BoardName) (*domain.Board, error) {
		if name != board.Name {
			return nil, internal_errors.NewBoardNotFound(name)
		}
		return board.Clone(), nil
	}
	m.updateBoardFunc = func(name domain.BoardName, fn func(*domain.Board) error) (*domain.Board, error) {
		if name != board.Name {
			return nil, internal_errors.NewBoardNotFound(name)
		}
		draft := board.Clone()
		if err := fn(draft); err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.writes++
		m.mu.Unlock()
		draft.Version++
		*board = *draft.Clone()
		return draft, nil
	}
	return m
}

// MockTextValidator mocks the TextValidator interface.
type MockTextValidator struct {
	textFunc func(text string) (string, error)
}

func (m *MockTextValidator) Text(text string) (string, error) {
	if m.textFunc != nil {
		return m.textFunc(text)
	}
	return text, nil
}

// MockBoardValidator mocks the BoardValidator interface.
type MockBoardValidator struct {
	nameFunc func(name string) error
}

func (m *MockBoardValidator) Name(name string) error {
	if m.nameFunc != nil {
		return m.nameFunc(name)
	}
	return nil
}

// boardWithThread returns a board "b" holding one thread with password "secret"
// and the given number of replies, each with password "rp".
func boardWithThread(replies int) (*domain.Board, domain.Thread) {
	now := domain.Now()
	thread := domain.NewThread("op", "secret", now)
	for i := 0; i < replies; i++ {
		thread.AppendReply(domain.NewReply("reply", "rp", now))
	}
	board := &domain.Board{Name: "b", Threads: []domain.Thread{thread}, Version: 1}
	return board, thread
}
