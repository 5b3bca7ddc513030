package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/msgboard/msgboard/shared/config"
	"github.com/msgboard/msgboard/shared/domain"
	"github.com/msgboard/msgboard/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateThreadHandler(t *testing.T) {
	t.Run("form post redirects to board", func(t *testing.T) {
		h := newTestHandler()
		var got domain.ThreadCreationData
		h.thread = &MockThreadService{MockCreate: func(_ context.Context, data domain.ThreadCreationData) (domain.ThreadId, error) {
			got = data
			return "t1", nil
		}}

		rr := serve(h, formRequest(http.MethodPost, "/api/threads/x", url.Values{"text": {"hi"}, "delete_password": {"p"}}))

		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "https://boards.example/b/x/", rr.Header().Get("Location"))
		assert.Equal(t, domain.ThreadCreationData{Board: "x", Text: "hi", DeletePassword: "p"}, got)
	})

	t.Run("json post", func(t *testing.T) {
		h := newTestHandler()

		rr := serve(h, jsonRequest(http.MethodPost, "/api/threads/x", `{"text":"hi","delete_password":"p"}`))

		assert.Equal(t, http.StatusFound, rr.Code)
	})

	t.Run("all shape errors in declaration order", func(t *testing.T) {
		h := newTestHandler()
		h.thread = &MockThreadService{MockCreate: func(context.Context, domain.ThreadCreationData) (domain.ThreadId, error) {
			t.Fatal("service must not be called")
			return "", nil
		}}

		rr := serve(h, jsonRequest(http.MethodPost, "/api/threads/x", `{"delete_password":5}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, []errors.Entry{
			{"request_body": "Request body missing property [text]."},
			{"request_body": "Request body property [delete_password] value must be a string."},
		}, errorEntries(t, rr.Body))
	})

	t.Run("validation error", func(t *testing.T) {
		h := newTestHandler()
		h.thread = &MockThreadService{MockCreate: func(context.Context, domain.ThreadCreationData) (domain.ThreadId, error) {
			return "", &errors.ValidationError{Scope: "request_body", Message: "Text is too long. Maximum is 5 characters."}
		}}

		rr := serve(h, jsonRequest(http.MethodPost, "/api/threads/x", `{"text":"too long","delete_password":"p"}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, []errors.Entry{{"request_body": "Text is too long. Maximum is 5 characters."}}, errorEntries(t, rr.Body))
	})

	t.Run("body too large", func(t *testing.T) {
		cfg := &config.Config{Public: config.Public{MaxBodySize: 16}}
		h := New(&MockBoardService{}, &MockThreadService{}, &MockReplyService{}, &MockHealthChecker{}, cfg)

		rr := serve(h, jsonRequest(http.MethodPost, "/api/threads/x", `{"text":"`+strings.Repeat("a", 64)+`","delete_password":"p"}`))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	})
}

func TestGetThreadsHandler(t *testing.T) {
	t.Run("summary", func(t *testing.T) {
		h := newTestHandler()
		created := domain.Now()
		h.thread = &MockThreadService{MockListLatest: func(_ context.Context, board domain.BoardName) (*domain.BoardSummary, error) {
			return &domain.BoardSummary{Board: board, LatestThreads: []domain.ThreadSummary{{
				Id: "t1", Text: "hi", CreatedOn: created, BumpedOn: created, ReplyCount: 0, LatestReplies: []domain.ReplyView{},
			}}}, nil
		}}

		rr := serve(h, jsonRequest(http.MethodGet, "/api/threads/x", ""))

		require.Equal(t, http.StatusOK, rr.Code)
		body := rr.Body.String()
		assert.Contains(t, body, `"board":"x"`)
		assert.Contains(t, body, `"_id":"t1"`)
		assert.Contains(t, body, `"reply_count":0`)
		assert.Contains(t, body, `"latest_replies":[]`)
		assert.NotContains(t, body, "delete_password")
		assert.NotContains(t, body, "reported")
	})

	t.Run("board not found", func(t *testing.T) {
		h := newTestHandler()
		h.thread = &MockThreadService{MockListLatest: func(_ context.Context, board domain.BoardName) (*domain.BoardSummary, error) {
			return nil, errors.NewBoardNotFound(board)
		}}

		rr := serve(h, jsonRequest(http.MethodGet, "/api/threads/nope", ""))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, []errors.Entry{{"endpoint": "Board [nope] not found."}}, errorEntries(t, rr.Body))
	})
}

func TestReportThreadHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := newTestHandler()
		var reported domain.ThreadId
		h.thread = &MockThreadService{MockReport: func(_ context.Context, _ domain.BoardName, id domain.ThreadId) error {
			reported = id
			return nil
		}}

		rr := serve(h, formRequest(http.MethodPut, "/api/threads/x", url.Values{"thread_id": {"t1"}}))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"success":"Thread successfully reported.","thread_id":"t1"}`, rr.Body.String())
		assert.Equal(t, "t1", reported)
	})

	t.Run("missing thread_id", func(t *testing.T) {
		h := newTestHandler()

		rr := serve(h, formRequest(http.MethodPut, "/api/threads/x", url.Values{}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, []errors.Entry{{"request_body": "Request body missing property [thread_id]."}}, errorEntries(t, rr.Body))
	})

	t.Run("thread not found", func(t *testing.T) {
		h := newTestHandler()
		h.thread = &MockThreadService{MockReport: func(_ context.Context, board domain.BoardName, id domain.ThreadId) error {
			return errors.NewThreadNotFound(id, board)
		}}

		rr := serve(h, jsonRequest(http.MethodPut, "/api/threads/x", `{"thread_id":"t9"}`))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, []errors.Entry{{"request": "Thread [t9] not found in board [x]."}}, errorEntries(t, rr.Body))
	})
}

func TestDeleteThreadHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := newTestHandler()

		rr := serve(h, formRequest(http.MethodDelete, "/api/threads/x", url.Values{"thread_id": {"t1"}, "delete_password": {"p"}}))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"success":"Thread successfully deleted.","reply_id":"t1"}`, rr.Body.String())
	})

	t.Run("both fields missing", func(t *testing.T) {
		h := newTestHandler()

		rr := serve(h, formRequest(http.MethodDelete, "/api/threads/x", url.Values{}))

		assert.Equal(t, []errors.Entry{
			{"request_body": "Request body missing property [thread_id]."},
			{"request_body": "Request body missing property [delete_password]."},
		}, errorEntries(t, rr.Body))
	})

	t.Run("wrong password", func(t *testing.T) {
		h := newTestHandler()
		h.thread = &MockThreadService{MockDelete: func(context.Context, domain.BoardName, domain.ThreadId, domain.Password) error {
			return errors.ErrIncorrectPassword
		}}

		rr := serve(h, jsonRequest(http.MethodDelete, "/api/threads/x", `{"thread_id":"t1","delete_password":"nope"}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, []errors.Entry{{"password": "Incorrect Password"}}, errorEntries(t, rr.Body))
	})
}
