package service

import (
	"context"
	"time"

	"github.com/msgboard/msgboard/shared/domain"
	"github.com/msgboard/msgboard/shared/errors"
)

type ReplyService interface {
	Create(ctx context.Context, data domain.ReplyCreationData) (domain.ReplyId, error)
	GetThread(ctx context.Context, board domain.BoardName, threadId domain.ThreadId) (*domain.ThreadDetail, error)
	Report(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, id domain.ReplyId) error
	Delete(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, id domain.ReplyId, password domain.Password) error
}

type Reply struct {
	storage   ReplyStorage
	validator TextValidator
	passwords PasswordScheme
	now       func() time.Time
}

type ReplyStorage interface {
	FindByName(ctx context.Context, name domain.BoardName) (*domain.Board, error)
	UpdateBoard(ctx context.Context, name domain.BoardName, fn func(*domain.Board) error) (*domain.Board, error)
}

func NewReply(storage ReplyStorage, validator TextValidator, passwords PasswordScheme) ReplyService {
	return &Reply{storage: storage, validator: validator, passwords: passwords, now: domain.Now}
}

// Create appends the reply and bumps its thread in the same board write.
func (s *Reply) Create(ctx context.Context, data domain.ReplyCreationData) (domain.ReplyId, error) {
	text, err := s.validator.Text(data.Text)
	if err != nil {
		return "", err
	}
	password, err := s.passwords.Hash(data.DeletePassword)
	if err != nil {
		return "", err
	}

	var id domain.ReplyId
	_, err = s.storage.UpdateBoard(ctx, data.Board, func(b *domain.Board) error {
		thread, _, err := findThread(b, data.ThreadId)
		if err != nil {
			return err
		}
		reply := domain.NewReply(text, password, s.now())
		thread.AppendReply(reply)
		id = reply.Id
		return nil
	})
	if err != nil {
		return "", errors.Write(err)
	}
	return id, nil
}

func (s *Reply) GetThread(ctx context.Context, board domain.BoardName, threadId domain.ThreadId) (*domain.ThreadDetail, error) {
	b, err := findBoard(ctx, s.storage, board)
	if err != nil {
		return nil, err
	}
	thread, _, err := findThread(b, threadId)
	if err != nil {
		return nil, err
	}
	detail := domain.Detail(*thread)
	return &detail, nil
}

func (s *Reply) Report(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, id domain.ReplyId) error {
	_, err := s.storage.UpdateBoard(ctx, board, func(b *domain.Board) error {
		thread, _, err := findThread(b, threadId)
		if err != nil {
			return err
		}
		reply, err := findReply(b, thread, id)
		if err != nil {
			return err
		}
		reply.Reported = true
		return nil
	})
	return errors.Write(err)
}

// Delete redacts the reply text. Deleting an already deleted reply succeeds.
func (s *Reply) Delete(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, id domain.ReplyId, password domain.Password) error {
	_, err := s.storage.UpdateBoard(ctx, board, func(b *domain.Board) error {
		thread, _, err := findThread(b, threadId)
		if err != nil {
			return err
		}
		reply, err := findReply(b, thread, id)
		if err != nil {
			return err
		}
		if err := checkPassword(s.passwords, password, reply.DeletePassword); err != nil {
			return err
		}
		reply.SoftDelete()
		return nil
	})
	return errors.Write(err)
}
