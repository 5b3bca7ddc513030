// Package storagetest runs the same behaviour checks against every board store backend.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/msgboard/msgboard/backend/internal/storage"
	"github.com/msgboard/msgboard/shared/domain"
	internal_errors "github.com/msgboard/msgboard/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store. Stores must allow at least 50 update attempts
// so the concurrent update check does not run out of retries.
type Factory func(t *testing.T) storage.Backend

func Run(t *testing.T, newStore Factory) {
	t.Run("FindByName missing", func(t *testing.T) { testFindMissing(t, newStore(t)) })
	t.Run("CreateBoard", func(t *testing.T) { testCreateBoard(t, newStore(t)) })
	t.Run("UpsertPushThread", func(t *testing.T) { testUpsertPushThread(t, newStore(t)) })
	t.Run("Save", func(t *testing.T) { testSave(t, newStore(t)) })
	t.Run("UpdateBoard", func(t *testing.T) { testUpdateBoard(t, newStore(t)) })
	t.Run("FindAll", func(t *testing.T) { testFindAll(t, newStore(t)) })
	t.Run("concurrent first posts", func(t *testing.T) { testConcurrentUpserts(t, newStore(t)) })
	t.Run("concurrent updates", func(t *testing.T) { testConcurrentUpdates(t, newStore(t)) })
}

func testFindMissing(t *testing.T, s storage.Backend) {
	_, err := s.FindByName(context.Background(), "nope")

	var nf *internal_errors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, internal_errors.BoardNotFound, nf.Kind)
	assert.Equal(t, "nope", nf.Board)
}

func testCreateBoard(t *testing.T, s storage.Backend) {
	ctx := context.Background()

	board, err := s.CreateBoard(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", board.Name)
	assert.Empty(t, board.Threads)

	_, err = s.CreateBoard(ctx, "b")
	var conflict *internal_errors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "b", conflict.Board)

	found, err := s.FindByName(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, found.Threads)
}

func testUpsertPushThread(t *testing.T, s storage.Backend) {
	ctx := context.Background()
	first := domain.NewThread("first", "p", domain.Now())
	second := domain.NewThread("second", "p", domain.Now().Add(time.Second))

	board, err := s.UpsertPushThread(ctx, "x", first)
	require.NoError(t, err)
	require.Len(t, board.Threads, 1)

	board, err = s.UpsertPushThread(ctx, "x", second)
	require.NoError(t, err)
	require.Len(t, board.Threads, 2)

	found, err := s.FindByName(ctx, "x")
	require.NoError(t, err)
	require.Len(t, found.Threads, 2)
	assert.Equal(t, board.Version, found.Version)

	got, _ := found.Thread(first.Id)
	require.NotNil(t, got)
	assert.Equal(t, "first", got.Text)
	assert.Equal(t, "p", got.DeletePassword)
	assert.True(t, first.CreatedOn.Equal(got.CreatedOn), "created_on round trip")
	assert.True(t, first.BumpedOn.Equal(got.BumpedOn), "bumped_on round trip")
	assert.NotNil(t, got.Replies)
	assert.Empty(t, got.Replies)
}

func testSave(t *testing.T, s storage.Backend) {
	ctx := context.Background()
	thread := domain.NewThread("hi", "p", domain.Now())
	_, err := s.UpsertPushThread(ctx, "b", thread)
	require.NoError(t, err)

	board, err := s.FindByName(ctx, "b")
	require.NoError(t, err)
	stale, err := s.FindByName(ctx, "b")
	require.NoError(t, err)

	reply := domain.NewReply("r", "rp", domain.Now().Add(time.Second))
	board.Threads[0].AppendReply(reply)
	before := board.Version
	require.NoError(t, s.Save(ctx, board))
	assert.Equal(t, before+1, board.Version)

	stale.Threads[0].Reported = true
	assert.ErrorIs(t, s.Save(ctx, stale), storage.ErrStaleBoard)

	found, err := s.FindByName(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, board.Version, found.Version)
	assert.False(t, found.Threads[0].Reported)
	require.Len(t, found.Threads[0].Replies, 1)
	assert.Equal(t, reply.Id, found.Threads[0].Replies[0].Id)
	assert.True(t, reply.CreatedOn.Equal(found.Threads[0].BumpedOn))

	missing := &domain.Board{Name: "missing"}
	assert.True(t, internal_errors.Is[*internal_errors.NotFoundError](s.Save(ctx, missing)))
}

func testUpdateBoard(t *testing.T, s storage.Backend) {
	ctx := context.Background()
	thread := domain.NewThread("hi", "p", domain.Now())
	_, err := s.UpsertPushThread(ctx, "b", thread)
	require.NoError(t, err)

	board, err := s.UpdateBoard(ctx, "b", func(b *domain.Board) error {
		b.Threads[0].Reported = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, board.Threads[0].Reported)

	_, err = s.UpdateBoard(ctx, "b", func(b *domain.Board) error {
		b.RemoveThread(0)
		return internal_errors.ErrIncorrectPassword
	})
	assert.ErrorIs(t, err, internal_errors.ErrIncorrectPassword)

	found, err := s.FindByName(ctx, "b")
	require.NoError(t, err)
	require.Len(t, found.Threads, 1)
	assert.True(t, found.Threads[0].Reported)

	_, err = s.UpdateBoard(ctx, "nope", func(*domain.Board) error { return nil })
	assert.True(t, internal_errors.Is[*internal_errors.NotFoundError](err))
}

func testFindAll(t *testing.T, s storage.Backend) {
	ctx := context.Background()
	for name, n := range map[string]int{"a": 1, "b": 3, "c": 1, "test": 5} {
		for i := 0; i < n; i++ {
			_, err := s.UpsertPushThread(ctx, name, domain.NewThread("t", "p", domain.Now()))
			require.NoError(t, err)
		}
	}
	_, err := s.CreateBoard(ctx, "empty")
	require.NoError(t, err)

	boards, err := s.FindAll(ctx, []domain.BoardName{"test"})
	require.NoError(t, err)

	assert.Equal(t, []domain.BoardMetadata{
		{Name: "b", ThreadCount: 3},
		{Name: "a", ThreadCount: 1},
		{Name: "c", ThreadCount: 1},
		{Name: "empty", ThreadCount: 0},
	}, boards)
}

func testConcurrentUpserts(t *testing.T, s storage.Backend) {
	const posts = 8
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, posts)
	for i := 0; i < posts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.UpsertPushThread(ctx, "fresh", domain.NewThread(fmt.Sprintf("t%d", i), "p", domain.Now()))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	board, err := s.FindByName(ctx, "fresh")
	require.NoError(t, err)
	assert.Len(t, board.Threads, posts)

	boards, err := s.FindAll(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, boards, 1)
}

func testConcurrentUpdates(t *testing.T, s storage.Backend) {
	const replies = 8
	ctx := context.Background()
	thread := domain.NewThread("hi", "p", domain.Now())
	_, err := s.UpsertPushThread(ctx, "b", thread)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, replies)
	for i := 0; i < replies; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.UpdateBoard(ctx, "b", func(b *domain.Board) error {
				b.Threads[0].AppendReply(domain.NewReply(fmt.Sprintf("r%d", i), "p", domain.Now()))
				return nil
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	board, err := s.FindByName(ctx, "b")
	require.NoError(t, err)
	assert.Len(t, board.Threads[0].Replies, replies)
}
