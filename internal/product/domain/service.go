package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, clientID, id snowflake.ID) (*Product, error)
	List(ctx context.Context, db *gorm.DB, clientID snowflake.ID) ([]*Product, error)
}

type CreateProductRequest struct {
	Code string
	Name string
}

type GetProductRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateProductRequest) (Product, error)
	GetByID(context.Context, GetProductRequest) (Product, error)
	List(context.Context) ([]Product, error)
}

var (
	ErrInvalidClient = errors.New("invalid_client")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidID     = errors.New("invalid_id")
	ErrNotFound      = errors.New("not_found")
)
