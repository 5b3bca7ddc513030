package handler

import (
	"context"

	"github.com/msgboard/msgboard/backend/internal/service"
	"github.com/msgboard/msgboard/shared/config"
)

// HealthChecker is implemented by the store.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	board       service.BoardService
	thread      service.ThreadService
	reply       service.ReplyService
	health      HealthChecker
	cfg         *config.Config
	maxBodySize int64 // 0 falls back to validation.DefaultMaxBodySize
}

func New(board service.BoardService, thread service.ThreadService, reply service.ReplyService, health HealthChecker, cfg *config.Config) *Handler {
	h := &Handler{
		board:  board,
		thread: thread,
		reply:  reply,
		health: health,
		cfg:    cfg,
	}
	if cfg != nil {
		h.maxBodySize = cfg.Public.MaxBodySize
	}
	return h
}
