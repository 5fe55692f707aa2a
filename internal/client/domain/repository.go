package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, client *Client) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Client, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Client, error)
	List(ctx context.Context, db *gorm.DB) ([]*Client, error)
	Update(ctx context.Context, db *gorm.DB, client *Client) error
}
