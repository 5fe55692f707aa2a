package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the work order lifecycle. It is a closed enumeration; call sites
// use the predicates below instead of comparing raw strings.
type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
	StatusOnHold     Status = "on_hold"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether the value is a member of the enumeration.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusComplete, StatusOnHold, StatusCancelled:
		return true
	default:
		return false
	}
}

// TerminalSuccess reports whether the order finished production. Only these
// orders count toward TRUE-OTD; cancelled or in-flight orders cannot yet be
// judged late or on time.
func (s Status) TerminalSuccess() bool {
	return s == StatusComplete
}

// Closed reports whether the order left the active pipeline, successfully
// or not. Closed orders are never flagged as overdue.
func (s Status) Closed() bool {
	return s == StatusComplete || s == StatusCancelled
}

// WorkOrder is a unit of planned production. client_id is immutable after
// creation; updates never touch it.
type WorkOrder struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	ClientID snowflake.ID `gorm:"not null;uniqueIndex:idx_work_orders_client_number" json:"client_id"`
	Number   string       `gorm:"not null;uniqueIndex:idx_work_orders_client_number" json:"number"`

	ProductID *snowflake.ID `gorm:"index" json:"product_id,omitempty"`
	Status    Status        `gorm:"not null;default:planned;index" json:"status"`

	PlannedQuantity int64 `gorm:"not null" json:"planned_quantity"`

	// Cycle times are hours per unit. Ideal comes from engineering; the
	// calculated value is a measured fallback from past runs.
	IdealCycleTime      *float64 `json:"ideal_cycle_time,omitempty"`
	CalculatedCycleTime *float64 `json:"calculated_cycle_time,omitempty"`

	PlannedStartDate   *time.Time `gorm:"index" json:"planned_start_date,omitempty"`
	PlannedShipDate    *time.Time `gorm:"index" json:"planned_ship_date,omitempty"`
	RequiredDate       *time.Time `json:"required_date,omitempty"`
	ActualDeliveryDate *time.Time `gorm:"index" json:"actual_delivery_date,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (WorkOrder) TableName() string { return "work_orders" }
