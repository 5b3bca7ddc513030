// Package mongo keeps one BSON document per board in a "boards" collection
// with a unique index on the board name.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/msgboard/msgboard/backend/internal/storage"
	"github.com/msgboard/msgboard/shared/config"
	"github.com/msgboard/msgboard/shared/domain"
	internal_errors "github.com/msgboard/msgboard/shared/errors"
	"github.com/msgboard/msgboard/shared/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const collectionName = "boards"

type Storage struct {
	client   *mongo.Client
	boards   *mongo.Collection
	attempts int
}

var _ storage.Backend = (*Storage)(nil)

// New connects to the configured deployment and makes sure the name index exists.
func New(ctx context.Context, cfg config.Mongo, updateAttempts int) (*Storage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetTimeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := newWithClient(client, cfg.Database, updateAttempts)
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	logger.Log.Info("connected to mongo", "database", cfg.Database)
	return s, nil
}

func newWithClient(client *mongo.Client, database string, updateAttempts int) *Storage {
	if updateAttempts <= 0 {
		updateAttempts = storage.DefaultUpdateAttempts
	}
	return &Storage{
		client:   client,
		boards:   client.Database(database).Collection(collectionName),
		attempts: updateAttempts,
	}
}

func (s *Storage) ensureIndexes(ctx context.Context) error {
	_, err := s.boards.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "board", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("board_unique"),
	})
	if err != nil {
		return fmt.Errorf("create board index: %w", err)
	}
	return nil
}

func (s *Storage) FindByName(ctx context.Context, name domain.BoardName) (*domain.Board, error) {
	var board domain.Board
	err := s.boards.FindOne(ctx, bson.M{"board": name}).Decode(&board)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, internal_errors.NewBoardNotFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("find board %q: %w", name, err)
	}
	return storage.Normalize(&board), nil
}

type boardCount struct {
	Board string `bson:"board"`
	Count int    `bson:"count"`
}

func (s *Storage) FindAll(ctx context.Context, excluding []domain.BoardName) ([]domain.BoardMetadata, error) {
	if excluding == nil {
		excluding = []domain.BoardName{}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"board": bson.M{"$nin": excluding}}}},
		{{Key: "$project", Value: bson.M{"_id": 0, "board": 1, "count": bson.M{"$size": bson.M{"$ifNull": bson.A{"$threads", bson.A{}}}}}}},
	}
	cursor, err := s.boards.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	var counts []boardCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("decode boards: %w", err)
	}

	boards := make([]domain.BoardMetadata, len(counts))
	for i, c := range counts {
		boards[i] = domain.BoardMetadata{Name: c.Board, ThreadCount: c.Count}
	}
	return storage.SortMetadata(boards), nil
}

func (s *Storage) CreateBoard(ctx context.Context, name domain.BoardName) (*domain.Board, error) {
	board := &domain.Board{Name: name, Threads: []domain.Thread{}, Version: 1}
	if _, err := s.boards.InsertOne(ctx, board); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &internal_errors.ConflictError{Board: name}
		}
		return nil, fmt.Errorf("insert board %q: %w", name, err)
	}
	return board, nil
}

// UpsertPushThread is a single findAndModify. Two upserts racing on a new name can
// still collide on the unique index, the loser retries and then updates.
func (s *Storage) UpsertPushThread(ctx context.Context, name domain.BoardName, thread domain.Thread) (*domain.Board, error) {
	update := bson.M{
		"$push": bson.M{"threads": thread},
		"$inc":  bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	for i := 0; i < s.attempts; i++ {
		var board domain.Board
		err := s.boards.FindOneAndUpdate(ctx, bson.M{"board": name}, update, opts).Decode(&board)
		if err == nil {
			return storage.Normalize(&board), nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("push thread to %q: %w", name, err)
		}
	}
	return nil, fmt.Errorf("push thread to %q: gave up after %d attempts", name, s.attempts)
}

func (s *Storage) Save(ctx context.Context, board *domain.Board) error {
	threads := board.Threads
	if threads == nil {
		threads = []domain.Thread{}
	}
	res, err := s.boards.UpdateOne(ctx,
		bson.M{"board": board.Name, "version": board.Version},
		bson.M{"$set": bson.M{"threads": threads}, "$inc": bson.M{"version": 1}},
	)
	if err != nil {
		return fmt.Errorf("update board %q: %w", board.Name, err)
	}
	if res.MatchedCount == 1 {
		board.Version++
		return nil
	}

	n, err := s.boards.CountDocuments(ctx, bson.M{"board": board.Name})
	if err != nil {
		return fmt.Errorf("check board %q: %w", board.Name, err)
	}
	if n == 0 {
		return internal_errors.NewBoardNotFound(board.Name)
	}
	return storage.ErrStaleBoard
}

func (s *Storage) UpdateBoard(ctx context.Context, name domain.BoardName, fn func(*domain.Board) error) (*domain.Board, error) {
	return storage.Update(ctx, s, name, s.attempts, fn)
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Storage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
