package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/msgboard/msgboard/shared/api"
	"github.com/msgboard/msgboard/shared/config"
	"github.com/msgboard/msgboard/shared/domain"
	"github.com/msgboard/msgboard/shared/errors"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockBoardService struct {
	MockList   func(ctx context.Context) ([]domain.BoardMetadata, error)
	MockCreate func(ctx context.Context, name domain.BoardName) error
}

func (m *MockBoardService) List(ctx context.Context) ([]domain.BoardMetadata, error) {
	if m.MockList != nil {
		return m.MockList(ctx)
	}
	return []domain.BoardMetadata{}, nil
}

func (m *MockBoardService) Create(ctx context.Context, name domain.BoardName) error {
	if m.MockCreate != nil {
		return m.MockCreate(ctx, name)
	}
	return nil
}

type MockThreadService struct {
	MockCreate     func(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadId, error)
	MockListLatest func(ctx context.Context, board domain.BoardName) (*domain.BoardSummary, error)
	MockReport     func(ctx context.Context, board domain.BoardName, id domain.ThreadId) error
	MockDelete     func(ctx context.Context, board domain.BoardName, id domain.ThreadId, password domain.Password) error
}

func (m *MockThreadService) Create(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadId, error) {
	if m.MockCreate != nil {
		return m.MockCreate(ctx, data)
	}
	return "t1", nil
}

func (m *MockThreadService) ListLatest(ctx context.Context, board domain.BoardName) (*domain.BoardSummary, error) {
	if m.MockListLatest != nil {
		return m.MockListLatest(ctx, board)
	}
	return &domain.BoardSummary{Board: board, LatestThreads: []domain.ThreadSummary{}}, nil
}

func (m *MockThreadService) Report(ctx context.Context, board domain.BoardName, id domain.ThreadId) error {
	if m.MockReport != nil {
		return m.MockReport(ctx, board, id)
	}
	return nil
}

func (m *MockThreadService) Delete(ctx context.Context, board domain.BoardName, id domain.ThreadId, password domain.Password) error {
	if m.MockDelete != nil {
		return m.MockDelete(ctx, board, id, password)
	}
	return nil
}

type MockReplyService struct {
	MockCreate    func(ctx context.Context, data domain.ReplyCreationData) (domain.ReplyId, error)
	MockGetThread func(ctx context.Context, board domain.BoardName, threadId domain.ThreadId) (*domain.ThreadDetail, error)
	MockReport    func(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, id domain.ReplyId) error
	MockDelete    func(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, id domain.ReplyId, password domain.Password) error
}

func (m *MockReplyService) Create(ctx context.Context, data domain.ReplyCreationData) (domain.ReplyId, error) {
	if m.MockCreate != nil {
		return m.MockCreate(ctx, data)
	}
	return "r1", nil
}

func (m *MockReplyService) GetThread(ctx context.Context, board domain.BoardName, threadId domain.ThreadId) (*domain.ThreadDetail, error) {
	if m.MockGetThread != nil {
		return m.MockGetThread(ctx, board, threadId)
	}
	return &domain.ThreadDetail{Id: threadId, Replies: []domain.ReplyView{}}, nil
}

func (m *MockReplyService) Report(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, id domain.ReplyId) error {
	if m.MockReport != nil {
		return m.MockReport(ctx, board, threadId, id)
	}
	return nil
}

func (m *MockReplyService) Delete(ctx context.Context, board domain.BoardName, threadId domain.ThreadId, id domain.ReplyId, password domain.Password) error {
	if m.MockDelete != nil {
		return m.MockDelete(ctx, board, threadId, id, password)
	}
	return nil
}

type MockHealthChecker struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil // Default: healthy
}

// --- Helpers ---

func newTestHandler() *Handler {
	cfg := &config.Config{Public: config.Public{PublicURL: "https://boards.example"}}
	return New(&MockBoardService{}, &MockThreadService{}, &MockReplyService{}, &MockHealthChecker{}, cfg)
}

// routes mounts h the way the API router does.
func routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/boards", h.GetBoards)
		r.Post("/boards", h.CreateBoard)
		r.Route("/threads/{board}", func(r chi.Router) {
			r.Post("/", h.CreateThread)
			r.Get("/", h.GetThreads)
			r.Put("/", h.ReportThread)
			r.Delete("/", h.DeleteThread)
		})
		r.Route("/replies/{board}", func(r chi.Router) {
			r.Post("/", h.CreateReply)
			r.Get("/", h.GetThread)
			r.Put("/", h.ReportReply)
			r.Delete("/", h.DeleteReply)
		})
	})
	return r
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	routes(h).ServeHTTP(rr, req)
	return rr
}

func errorEntries(t *testing.T, body io.Reader) []errors.Entry {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.Error
}
