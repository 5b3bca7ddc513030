package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/msgboard/msgboard/shared/domain"
	internal_errors "github.com/msgboard/msgboard/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReplyService(storage ReplyStorage) *Reply {
	return NewReply(storage, &MockTextValidator{}, PlainPassword{}).(*Reply)
}

func TestReplyCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("appends and bumps thread", func(t *testing.T) {
		board, thread := boardWithThread(1)
		storage := withBoard(board)
		s := newReplyService(storage)
		later := thread.BumpedOn.Add(time.Minute)
		s.now = func() time.Time { return later }

		id, err := s.Create(ctx, domain.ReplyCreationData{Board: "b", ThreadId: thread.Id, Text: "hey", DeletePassword: "p"})

		require.NoError(t, err)
		assert.Equal(t, 1, storage.writes)
		stored := board.Threads[0]
		require.Len(t, stored.Replies, 2)
		last := stored.Replies[1]
		assert.Equal(t, id, last.Id)
		assert.Equal(t, "hey", last.Text)
		assert.Equal(t, "p", last.DeletePassword)
		assert.False(t, last.Reported)
		assert.True(t, later.Equal(stored.BumpedOn))
		assert.True(t, later.Equal(last.CreatedOn))
	})

	t.Run("thread not found", func(t *testing.T) {
		board, _ := boardWithThread(0)
		storage := withBoard(board)
		s := newReplyService(storage)

		_, err := s.Create(ctx, domain.ReplyCreationData{Board: "b", ThreadId: "missing", Text: "hey", DeletePassword: "p"})

		var nf *internal_errors.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, internal_errors.ThreadNotFound, nf.Kind)
		assert.Equal(t, 0, storage.writes)
	})

	t.Run("board not found", func(t *testing.T) {
		s := newReplyService(&MockStorage{})

		_, err := s.Create(ctx, domain.ReplyCreationData{Board: "nope", ThreadId: "t", Text: "hey", DeletePassword: "p"})

		assert.Equal(t, "Board [nope] not found.", err.Error())
	})

	t.Run("invalid text", func(t *testing.T) {
		board, thread := boardWithThread(0)
		storage := withBoard(board)
		validator := &MockTextValidator{textFunc: func(string) (string, error) {
			return "", &internal_errors.ValidationError{Scope: "request_body", Message: "Text is too long. Maximum is 5 characters."}
		}}
		s := NewReply(storage, validator, PlainPassword{})

		_, err := s.Create(ctx, domain.ReplyCreationData{Board: "b", ThreadId: thread.Id, Text: "", DeletePassword: "p"})

		assert.True(t, internal_errors.Is[*internal_errors.ValidationError](err))
		assert.Equal(t, 0, storage.writes)
	})
}

func TestReplyGetThread(t *testing.T) {
	ctx := context.Background()

	t.Run("all replies in order", func(t *testing.T) {
		board, thread := boardWithThread(5)
		s := newReplyService(withBoard(board))

		detail, err := s.GetThread(ctx, "b", thread.Id)

		require.NoError(t, err)
		assert.Equal(t, thread.Id, detail.Id)
		require.Len(t, detail.Replies, 5)
		for i, r := range detail.Replies {
			assert.Equal(t, thread.Replies[i].Id, r.Id)
		}
	})

	t.Run("thread not found", func(t *testing.T) {
		board, _ := boardWithThread(0)
		s := newReplyService(withBoard(board))

		_, err := s.GetThread(ctx, "b", "missing")

		assert.Equal(t, "Thread [missing] not found in board [b].", err.Error())
	})

	t.Run("read failure", func(t *testing.T) {
		storage := &MockStorage{findByNameFunc: func(domain.BoardName) (*domain.Board, error) {
			return nil, errors.New("connection refused")
		}}
		s := newReplyService(storage)

		_, err := s.GetThread(ctx, "b", "t")

		var failure *internal_errors.StoreFailure
		require.ErrorAs(t, err, &failure)
		assert.False(t, failure.Write)
	})
}

func TestReplyReport(t *testing.T) {
	ctx := context.Background()

	t.Run("marks reply", func(t *testing.T) {
		board, thread := boardWithThread(2)
		s := newReplyService(withBoard(board))

		require.NoError(t, s.Report(ctx, "b", thread.Id, thread.Replies[1].Id))
		require.NoError(t, s.Report(ctx, "b", thread.Id, thread.Replies[1].Id))

		assert.False(t, board.Threads[0].Replies[0].Reported)
		assert.True(t, board.Threads[0].Replies[1].Reported)
		assert.False(t, board.Threads[0].Reported)
	})

	t.Run("reply not found", func(t *testing.T) {
		board, thread := boardWithThread(1)
		s := newReplyService(withBoard(board))

		err := s.Report(ctx, "b", thread.Id, "missing")

		var nf *internal_errors.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, internal_errors.ReplyNotFound, nf.Kind)
		assert.Equal(t, "Reply [missing] not found in thread ["+thread.Id+"] in board [b].", nf.Error())
	})
}

func TestReplyDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("soft delete keeps position and count", func(t *testing.T) {
		board, thread := boardWithThread(3)
		s := newReplyService(withBoard(board))
		target := thread.Replies[1]

		require.NoError(t, s.Delete(ctx, "b", thread.Id, target.Id, "rp"))

		replies := board.Threads[0].Replies
		require.Len(t, replies, 3)
		assert.Equal(t, target.Id, replies[1].Id)
		assert.Equal(t, domain.DeletedText, replies[1].Text)
		assert.True(t, target.CreatedOn.Equal(replies[1].CreatedOn))
		assert.Equal(t, "reply", replies[0].Text)
	})

	t.Run("deleting twice succeeds", func(t *testing.T) {
		board, thread := boardWithThread(1)
		s := newReplyService(withBoard(board))
		id := thread.Replies[0].Id

		require.NoError(t, s.Delete(ctx, "b", thread.Id, id, "rp"))
		require.NoError(t, s.Delete(ctx, "b", thread.Id, id, "rp"))

		assert.Equal(t, domain.DeletedText, board.Threads[0].Replies[0].Text)
	})

	t.Run("thread password does not delete replies", func(t *testing.T) {
		board, thread := boardWithThread(1)
		storage := withBoard(board)
		s := newReplyService(storage)

		err := s.Delete(ctx, "b", thread.Id, thread.Replies[0].Id, "secret")

		assert.ErrorIs(t, err, internal_errors.ErrIncorrectPassword)
		assert.Equal(t, "reply", board.Threads[0].Replies[0].Text)
		assert.Equal(t, 0, storage.writes)
	})

	t.Run("thread not found before reply", func(t *testing.T) {
		board, _ := boardWithThread(1)
		s := newReplyService(withBoard(board))

		err := s.Delete(ctx, "b", "missing", "missing", "rp")

		var nf *internal_errors.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, internal_errors.ThreadNotFound, nf.Kind)
	})
}
