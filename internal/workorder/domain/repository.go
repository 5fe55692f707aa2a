package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/plantpulse/plantpulse/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListWorkOrderFilter struct {
	Status    Status
	ProductID *snowflake.ID
	DateFrom  *time.Time
	DateTo    *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *WorkOrder) error
	FindByID(ctx context.Context, db *gorm.DB, clientID, id snowflake.ID) (*WorkOrder, error)
	FindByNumber(ctx context.Context, db *gorm.DB, clientID snowflake.ID, number string) (*WorkOrder, error)
	List(ctx context.Context, db *gorm.DB, clientID snowflake.ID, filter ListWorkOrderFilter, page pagination.Pagination) ([]*WorkOrder, error)
	Update(ctx context.Context, db *gorm.DB, order *WorkOrder) error
	Delete(ctx context.Context, db *gorm.DB, clientID, id snowflake.ID) error

	// DeliveryWindow returns every order for the client whose planned or
	// actual delivery falls inside [from, to]. The OTD engine builds all of
	// its aggregations from this population.
	DeliveryWindow(ctx context.Context, db *gorm.DB, clientID snowflake.ID, from, to time.Time, productID *snowflake.ID) ([]*WorkOrder, error)
}
