package service

import (
	"context"
	"time"

	"github.com/msgboard/msgboard/shared/domain"
	"github.com/msgboard/msgboard/shared/errors"
)

type ThreadService interface {
	Create(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadId, error)
	ListLatest(ctx context.Context, board domain.BoardName) (*domain.BoardSummary, error)
	Report(ctx context.Context, board domain.BoardName, id domain.ThreadId) error
	Delete(ctx context.Context, board domain.BoardName, id domain.ThreadId, password domain.Password) error
}

type Thread struct {
	storage   ThreadStorage
	validator TextValidator
	passwords PasswordScheme
	limits    Limits
	now       func() time.Time
}

type ThreadStorage interface {
	FindByName(ctx context.Context, name domain.BoardName) (*domain.Board, error)
	UpsertPushThread(ctx context.Context, name domain.BoardName, thread domain.Thread) (*domain.Board, error)
	UpdateBoard(ctx context.Context, name domain.BoardName, fn func(*domain.Board) error) (*domain.Board, error)
}

// TextValidator checks a post body and returns the text to store.
type TextValidator interface {
	Text(text string) (string, error)
}

// Limits caps the board preview.
type Limits struct {
	LatestThreads int
	LatestReplies int
}

func DefaultLimits() Limits {
	return Limits{LatestThreads: 10, LatestReplies: 3}
}

func NewThread(storage ThreadStorage, validator TextValidator, passwords PasswordScheme, limits Limits) ThreadService {
	return &Thread{storage: storage, validator: validator, passwords: passwords, limits: limits, now: domain.Now}
}

func (s *Thread) Create(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadId, error) {
	text, err := s.validator.Text(data.Text)
	if err != nil {
		return "", err
	}
	password, err := s.passwords.Hash(data.DeletePassword)
	if err != nil {
		return "", err
	}

	thread := domain.NewThread(text, password, s.now())
	if _, err := s.storage.UpsertPushThread(ctx, data.Board, thread); err != nil {
		return "", errors.Write(err)
	}
	return thread.Id, nil
}

func (s *Thread) ListLatest(ctx context.Context, board domain.BoardName) (*domain.BoardSummary, error) {
	b, err := findBoard(ctx, s.storage, board)
	if err != nil {
		return nil, err
	}
	summary := domain.Latest(b, s.limits.LatestThreads, s.limits.LatestReplies)
	return &summary, nil
}

func (s *Thread) Report(ctx context.Context, board domain.BoardName, id domain.ThreadId) error {
	_, err := s.storage.UpdateBoard(ctx, board, func(b *domain.Board) error {
		thread, _, err := findThread(b, id)
		if err != nil {
			return err
		}
		thread.Reported = true
		return nil
	})
	return errors.Write(err)
}

func (s *Thread) Delete(ctx context.Context, board domain.BoardName, id domain.ThreadId, password domain.Password) error {
	_, err := s.storage.UpdateBoard(ctx, board, func(b *domain.Board) error {
		thread, idx, err := findThread(b, id)
		if err != nil {
			return err
		}
		if err := checkPassword(s.passwords, password, thread.DeletePassword); err != nil {
			return err
		}
		b.RemoveThread(idx)
		return nil
	})
	return errors.Write(err)
}
