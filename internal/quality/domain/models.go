package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QualityEntry records one inspection pass. Opportunities is the number of
// defect opportunities per unit, used for DPMO.
type QualityEntry struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	ClientID    snowflake.ID  `gorm:"not null;index" json:"client_id"`
	WorkOrderID *snowflake.ID `gorm:"index" json:"work_order_id,omitempty"`

	InspectionDate time.Time `gorm:"not null;index" json:"inspection_date"`
	Stage          string    `gorm:"not null;default:final" json:"stage"`

	UnitsInspected decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"units_inspected"`
	UnitsFirstPass decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"units_first_pass"`
	UnitsDefective decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"units_defective"`
	DefectCount    int64           `gorm:"not null" json:"defect_count"`
	Opportunities  int64           `gorm:"not null;default:1" json:"opportunities"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (QualityEntry) TableName() string { return "quality_entries" }

type CreateEntryRequest struct {
	WorkOrderID    string
	InspectionDate time.Time
	Stage          string
	UnitsInspected decimal.Decimal
	UnitsFirstPass decimal.Decimal
	UnitsDefective decimal.Decimal
	DefectCount    int64
	Opportunities  int64
}

type ListEntryRequest struct {
	WorkOrderID string
	Stage       string
	DateFrom    *time.Time
	DateTo      *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *QualityEntry) error
	List(ctx context.Context, db *gorm.DB, clientID snowflake.ID, workOrderID *snowflake.ID, stage string, from, to *time.Time) ([]*QualityEntry, error)
	Delete(ctx context.Context, db *gorm.DB, clientID, id snowflake.ID) error
	// CountMismatched returns how many of the client's entries point at a
	// work order belonging to a different client. Any nonzero count is an
	// integrity fault.
	CountMismatched(ctx context.Context, db *gorm.DB, clientID snowflake.ID) (int64, error)
}

type Service interface {
	Create(context.Context, CreateEntryRequest) (QualityEntry, error)
	List(context.Context, ListEntryRequest) ([]QualityEntry, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidClient   = errors.New("invalid_client")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrNotFound        = errors.New("not_found")
	ErrClientMismatch  = errors.New("client_mismatch")
)
