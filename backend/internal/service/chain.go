package service

import (
	"context"

	"github.com/msgboard/msgboard/shared/domain"
	"github.com/msgboard/msgboard/shared/errors"
)

// Existence and password checks. Each returns the first failure; thread and
// reply lookups scan the board already in hand.

type boardFinder interface {
	FindByName(ctx context.Context, name domain.BoardName) (*domain.Board, error)
}

func findBoard(ctx context.Context, s boardFinder, name domain.BoardName) (*domain.Board, error) {
	board, err := s.FindByName(ctx, name)
	if err != nil {
		return nil, errors.Read(err)
	}
	return board, nil
}

func findThread(board *domain.Board, id domain.ThreadId) (*domain.Thread, int, error) {
	thread, idx := board.Thread(id)
	if thread == nil {
		return nil, -1, errors.NewThreadNotFound(id, board.Name)
	}
	return thread, idx, nil
}

func findReply(board *domain.Board, thread *domain.Thread, id domain.ReplyId) (*domain.Reply, error) {
	reply, _ := thread.Reply(id)
	if reply == nil {
		return nil, errors.NewReplyNotFound(id, thread.Id, board.Name)
	}
	return reply, nil
}

func checkPassword(scheme PasswordScheme, supplied, stored domain.Password) error {
	if !scheme.Verify(supplied, stored) {
		return errors.ErrIncorrectPassword
	}
	return nil
}
