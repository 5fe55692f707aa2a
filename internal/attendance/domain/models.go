package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// AttendanceEntry records scheduled vs. absent hours for one employee-day.
type AttendanceEntry struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	ClientID snowflake.ID `gorm:"not null;index" json:"client_id"`

	EmployeeRef    string    `gorm:"not null" json:"employee_ref"`
	Date           time.Time `gorm:"not null;index" json:"date"`
	ScheduledHours float64   `gorm:"not null" json:"scheduled_hours"`
	AbsentHours    float64   `gorm:"not null" json:"absent_hours"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (AttendanceEntry) TableName() string { return "attendance_entries" }

type CreateEntryRequest struct {
	EmployeeRef    string
	Date           time.Time
	ScheduledHours float64
	AbsentHours    float64
}

type ListEntryRequest struct {
	EmployeeRef string
	DateFrom    *time.Time
	DateTo      *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AttendanceEntry) error
	List(ctx context.Context, db *gorm.DB, clientID snowflake.ID, employeeRef string, from, to *time.Time) ([]*AttendanceEntry, error)
	Delete(ctx context.Context, db *gorm.DB, clientID, id snowflake.ID) error
}

type Service interface {
	Create(context.Context, CreateEntryRequest) (AttendanceEntry, error)
	List(context.Context, ListEntryRequest) ([]AttendanceEntry, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidClient   = errors.New("invalid_client")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidEmployee = errors.New("invalid_employee")
	ErrInvalidHours    = errors.New("invalid_hours")
	ErrNotFound        = errors.New("not_found")
)
