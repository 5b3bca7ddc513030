// Package redis keeps each board as a JSON document under its own key.
// Writes run inside WATCH/MULTI so concurrent writers never lose an update.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/msgboard/msgboard/backend/internal/storage"
	"github.com/msgboard/msgboard/shared/domain"
	internal_errors "github.com/msgboard/msgboard/shared/errors"
	"github.com/msgboard/msgboard/shared/logger"
	"github.com/redis/go-redis/v9"
)

const DefaultPrefix = "msgboard:"

type Storage struct {
	client   *redis.Client
	prefix   string
	attempts int
}

var _ storage.Backend = (*Storage)(nil)

// New connects to redisURL and checks the connection.
func New(redisURL string, updateAttempts int) (*Storage, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Log.Info("connected to redis", "addr", opts.Addr, "db", opts.DB)

	return NewWithClient(client, DefaultPrefix, updateAttempts), nil
}

func NewWithClient(client *redis.Client, prefix string, updateAttempts int) *Storage {
	if updateAttempts <= 0 {
		updateAttempts = storage.DefaultUpdateAttempts
	}
	return &Storage{client: client, prefix: prefix, attempts: updateAttempts}
}

func (s *Storage) key(name domain.BoardName) string {
	return s.prefix + "board:" + name
}

func (s *Storage) index() string {
	return s.prefix + "boards"
}

func decode(raw string) (*domain.Board, error) {
	var board domain.Board
	if err := json.Unmarshal([]byte(raw), &board); err != nil {
		return nil, fmt.Errorf("unmarshal board: %w", err)
	}
	return storage.Normalize(&board), nil
}

// encode marshals board as it will be stored at the given version.
func encode(board *domain.Board, version int64) ([]byte, error) {
	doc := *board
	doc.Version = version
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal board: %w", err)
	}
	return data, nil
}

func (s *Storage) FindByName(ctx context.Context, name domain.BoardName) (*domain.Board, error) {
	raw, err := s.client.Get(ctx, s.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, internal_errors.NewBoardNotFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("get board %q: %w", name, err)
	}
	return decode(raw)
}

func (s *Storage) FindAll(ctx context.Context, excluding []domain.BoardName) ([]domain.BoardMetadata, error) {
	names, err := s.client.SMembers(ctx, s.index()).Result()
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	skip := storage.Excluded(excluding)
	keys := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := skip[name]; !ok {
			keys = append(keys, s.key(name))
		}
	}
	boards := make([]domain.BoardMetadata, 0, len(keys))
	if len(keys) == 0 {
		return boards, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load boards: %w", err)
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// indexed but gone, skip it
			continue
		}
		board, err := decode(raw)
		if err != nil {
			return nil, err
		}
		boards = append(boards, board.Metadata())
	}
	return storage.SortMetadata(boards), nil
}

func (s *Storage) CreateBoard(ctx context.Context, name domain.BoardName) (*domain.Board, error) {
	board := &domain.Board{Name: name, Threads: []domain.Thread{}}
	data, err := encode(board, 1)
	if err != nil {
		return nil, err
	}

	var created *redis.BoolCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.SetNX(ctx, s.key(name), data, 0)
		pipe.SAdd(ctx, s.index(), name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create board %q: %w", name, err)
	}
	if !created.Val() {
		return nil, &internal_errors.ConflictError{Board: name}
	}
	board.Version = 1
	return board, nil
}

func (s *Storage) UpsertPushThread(ctx context.Context, name domain.BoardName, thread domain.Thread) (*domain.Board, error) {
	key := s.key(name)
	var result *domain.Board

	push := func(tx *redis.Tx) error {
		board := &domain.Board{Name: name, Threads: []domain.Thread{}}
		raw, err := tx.Get(ctx, key).Result()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if board, err = decode(raw); err != nil {
				return err
			}
		}

		board.Threads = append(board.Threads, thread)
		data, err := encode(board, board.Version+1)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, s.index(), name)
			return nil
		})
		if err == nil {
			board.Version++
			result = board
		}
		return err
	}

	for i := 0; i < s.attempts; i++ {
		err := s.client.Watch(ctx, push, key)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, fmt.Errorf("push thread to %q: %w", name, err)
		}
	}
	return nil, fmt.Errorf("push thread to %q: gave up after %d attempts: %w", name, s.attempts, redis.TxFailedErr)
}

func (s *Storage) Save(ctx context.Context, board *domain.Board) error {
	key := s.key(board.Name)
	next := board.Version + 1
	data, err := encode(board, next)
	if err != nil {
		return err
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return internal_errors.NewBoardNotFound(board.Name)
		}
		if err != nil {
			return err
		}
		current, err := decode(raw)
		if err != nil {
			return err
		}
		if current.Version != board.Version {
			return storage.ErrStaleBoard
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		board.Version = next
		return nil
	case errors.Is(err, redis.TxFailedErr):
		// someone wrote the key between GET and EXEC
		return storage.ErrStaleBoard
	case errors.Is(err, storage.ErrStaleBoard), internal_errors.Is[*internal_errors.NotFoundError](err):
		return err
	default:
		return fmt.Errorf("save board %q: %w", board.Name, err)
	}
}

func (s *Storage) UpdateBoard(ctx context.Context, name domain.BoardName, fn func(*domain.Board) error) (*domain.Board, error) {
	return storage.Update(ctx, s, name, s.attempts, fn)
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Storage) Close() error {
	return s.client.Close()
}
