package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductionEntry records output against a work order for one shift.
// client_id must always agree with the parent work order's client_id; a
// disagreement is a data-integrity fault, not a filterable condition.
type ProductionEntry struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ClientID    snowflake.ID `gorm:"not null;index" json:"client_id"`
	WorkOrderID snowflake.ID `gorm:"not null;index" json:"work_order_id"`

	ShiftDate time.Time `gorm:"not null;index" json:"shift_date"`
	Operator  string    `json:"operator,omitempty"`

	UnitsProduced decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"units_produced"`
	UnitsGood     decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"units_good"`
	UnitsScrap    decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"units_scrap"`
	RunHours      float64         `gorm:"not null" json:"run_hours"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ProductionEntry) TableName() string { return "production_entries" }

type CreateEntryRequest struct {
	WorkOrderID   string
	ShiftDate     time.Time
	Operator      string
	UnitsProduced decimal.Decimal
	UnitsGood     decimal.Decimal
	UnitsScrap    decimal.Decimal
	RunHours      float64
}

type ListEntryRequest struct {
	WorkOrderID string
	DateFrom    *time.Time
	DateTo      *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *ProductionEntry) error
	FindByID(ctx context.Context, db *gorm.DB, clientID, id snowflake.ID) (*ProductionEntry, error)
	List(ctx context.Context, db *gorm.DB, clientID snowflake.ID, workOrderID *snowflake.ID, from, to *time.Time) ([]*ProductionEntry, error)
	Delete(ctx context.Context, db *gorm.DB, clientID, id snowflake.ID) error

	// CountMismatched returns how many of the client's entries point at a
	// work order owned by a different client. Anything above zero is a
	// cross-tenant integrity fault.
	CountMismatched(ctx context.Context, db *gorm.DB, clientID snowflake.ID) (int64, error)
}

type Service interface {
	Create(context.Context, CreateEntryRequest) (ProductionEntry, error)
	GetByID(ctx context.Context, id string) (ProductionEntry, error)
	List(context.Context, ListEntryRequest) ([]ProductionEntry, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidClient   = errors.New("invalid_client")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrWorkOrderGone   = errors.New("work_order_not_found")
	ErrClientMismatch  = errors.New("client_mismatch")
	ErrNotFound        = errors.New("not_found")
)
