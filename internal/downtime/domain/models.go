package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// DowntimeEntry records lost minutes against planned production time.
type DowntimeEntry struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	ClientID    snowflake.ID  `gorm:"not null;index" json:"client_id"`
	WorkOrderID *snowflake.ID `gorm:"index" json:"work_order_id,omitempty"`

	Date            time.Time `gorm:"not null;index" json:"date"`
	PlannedMinutes  float64   `gorm:"not null" json:"planned_minutes"`
	DowntimeMinutes float64   `gorm:"not null" json:"downtime_minutes"`
	Reason          string    `json:"reason,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (DowntimeEntry) TableName() string { return "downtime_entries" }

type CreateEntryRequest struct {
	WorkOrderID     string
	Date            time.Time
	PlannedMinutes  float64
	DowntimeMinutes float64
	Reason          string
}

type ListEntryRequest struct {
	WorkOrderID string
	DateFrom    *time.Time
	DateTo      *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *DowntimeEntry) error
	List(ctx context.Context, db *gorm.DB, clientID snowflake.ID, workOrderID *snowflake.ID, from, to *time.Time) ([]*DowntimeEntry, error)
	Delete(ctx context.Context, db *gorm.DB, clientID, id snowflake.ID) error
	// CountMismatched returns how many of the client's entries point at a
	// work order belonging to a different client. Any nonzero count is an
	// integrity fault.
	CountMismatched(ctx context.Context, db *gorm.DB, clientID snowflake.ID) (int64, error)
}

type Service interface {
	Create(context.Context, CreateEntryRequest) (DowntimeEntry, error)
	List(context.Context, ListEntryRequest) ([]DowntimeEntry, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidClient  = errors.New("invalid_client")
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidMinutes = errors.New("invalid_minutes")
	ErrNotFound       = errors.New("not_found")
	ErrClientMismatch = errors.New("client_mismatch")
)
