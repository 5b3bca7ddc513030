package setup

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/msgboard/msgboard/backend/internal/handler"
	"github.com/msgboard/msgboard/backend/internal/service"
	"github.com/msgboard/msgboard/backend/internal/storage"
	"github.com/msgboard/msgboard/backend/internal/storage/guard"
	"github.com/msgboard/msgboard/backend/internal/storage/memory"
	"github.com/msgboard/msgboard/backend/internal/storage/mongo"
	"github.com/msgboard/msgboard/backend/internal/storage/pg"
	"github.com/msgboard/msgboard/backend/internal/storage/redis"
	"github.com/msgboard/msgboard/backend/internal/utils"
	"github.com/msgboard/msgboard/shared/config"
	"github.com/msgboard/msgboard/shared/logger"
	"github.com/msgboard/msgboard/shared/middleware/ratelimiter"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Storage     storage.Backend
	Handler     *handler.Handler
	Config      *config.Config
	Registry    *prometheus.Registry
	PostLimiter *ratelimiter.Limiter // nil when rate limiting is off
}

// OpenBackend connects to the store selected by store.driver.
func OpenBackend(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	attempts := cfg.Public.Store.UpdateAttempts
	switch driver := cfg.Public.Store.Driver; driver {
	case "memory":
		logger.Log.Warn("using in-memory store, boards are lost on restart")
		return memory.New(attempts), nil
	case "pg":
		return pg.New(ctx, cfg.Private.Pg, attempts)
	case "redis":
		return redis.New(cfg.Private.RedisURL, attempts)
	case "mongo":
		return mongo.New(ctx, cfg.Private.Mongo, attempts)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config, reg *prometheus.Registry) (*Dependencies, error) {
	backend, err := OpenBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	deps, err := NewDependencies(cfg, backend, reg)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return deps, nil
}

// NewDependencies wires services and handlers around an opened backend.
// The backend is wrapped in the store guard.
func NewDependencies(cfg *config.Config, backend storage.Backend, reg *prometheus.Registry) (*Dependencies, error) {
	passwords, err := service.NewPasswordScheme(cfg.Public.PasswordScheme)
	if err != nil {
		return nil, err
	}

	storeCfg := cfg.Public.Store
	guarded := guard.New(backend, guard.Settings{
		Name:         storeCfg.Driver,
		Timeout:      storeCfg.Timeout,
		FailureRatio: storeCfg.BreakerFailureRatio,
		MinRequests:  storeCfg.BreakerMinRequests,
		OpenTimeout:  storeCfg.BreakerOpenTimeout,
	}, reg)

	textValidator := utils.NewTextValidator(cfg.Public.MaxTextLength, cfg.Public.SanitizeText)
	limits := service.Limits{LatestThreads: cfg.Public.LatestThreads, LatestReplies: cfg.Public.LatestReplies}

	board := service.NewBoard(guarded, utils.NewBoardNameValidator(), cfg.Public.ReservedBoards)
	thread := service.NewThread(guarded, textValidator, passwords, limits)
	reply := service.NewReply(guarded, textValidator, passwords)

	var limiter *ratelimiter.Limiter
	if rl := cfg.Public.RateLimit; rl.PostsPerMinute > 0 {
		limiter = ratelimiter.PerMinute(rl.PostsPerMinute, rl.Burst)
	}

	return &Dependencies{
		Storage:     guarded,
		Handler:     handler.New(board, thread, reply, guarded, cfg),
		Config:      cfg,
		Registry:    reg,
		PostLimiter: limiter,
	}, nil
}

// Close stops background timers and closes the store.
func (d *Dependencies) Close() error {
	if d.PostLimiter != nil {
		d.PostLimiter.Stop()
	}
	return d.Storage.Close()
}
