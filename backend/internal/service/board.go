package service

import (
	"context"

	"github.com/msgboard/msgboard/shared/domain"
	"github.com/msgboard/msgboard/shared/errors"
)

// to mock service in tests
type BoardService interface {
	List(ctx context.Context) ([]domain.BoardMetadata, error)
	Create(ctx context.Context, name domain.BoardName) error
}

type Board struct {
	storage       BoardStorage
	nameValidator BoardValidator
	reserved      []domain.BoardName
}

type BoardStorage interface {
	FindAll(ctx context.Context, excluding []domain.BoardName) ([]domain.BoardMetadata, error)
	CreateBoard(ctx context.Context, name domain.BoardName) (*domain.Board, error)
}

type BoardValidator interface {
	Name(name string) error
}

// NewBoard hides the reserved boards from listings; they still work by name.
func NewBoard(storage BoardStorage, validator BoardValidator, reserved []domain.BoardName) BoardService {
	return &Board{storage: storage, nameValidator: validator, reserved: reserved}
}

func (b *Board) List(ctx context.Context) ([]domain.BoardMetadata, error) {
	boards, err := b.storage.FindAll(ctx, b.reserved)
	if err != nil {
		return nil, errors.Read(err)
	}
	return boards, nil
}

func (b *Board) Create(ctx context.Context, name domain.BoardName) error {
	if err := b.nameValidator.Name(name); err != nil {
		return err
	}
	if _, err := b.storage.CreateBoard(ctx, name); err != nil {
		return errors.Write(err)
	}
	return nil
}
