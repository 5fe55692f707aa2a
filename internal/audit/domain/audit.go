package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/plantpulse/plantpulse/pkg/db/pagination"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is one append-only record of a mutation. OrderingKey is a ULID
// minted at write time; it sorts lexicographically by creation instant and
// breaks ties between rows created in the same millisecond.
type AuditLog struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	ClientID snowflake.ID `gorm:"not null;index" json:"client_id"`

	OrderingKey string `gorm:"not null;uniqueIndex" json:"ordering_key"`

	Actor    string  `gorm:"not null" json:"actor"`
	Action   string  `gorm:"not null;index" json:"action"`
	Entity   string  `gorm:"not null;index" json:"entity"`
	EntityID *string `json:"entity_id,omitempty"`

	Metadata datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

type ListFilter struct {
	ClientID snowflake.ID
	Action   string
	Entity   string
	EntityID string
	StartAt  *time.Time
	EndAt    *time.Time
	// AfterKey pages backward in time: only rows whose ordering key sorts
	// strictly below it are returned.
	AfterKey string
	Limit    int
}

type ListRequest struct {
	pagination.Pagination
	Action   string
	Entity   string
	EntityID string
	StartAt  *time.Time
	EndAt    *time.Time
}

type ListResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"audit_logs"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*AuditLog, error)
}

type Service interface {
	// Record never fails the caller's operation; write errors are logged
	// and returned for visibility only.
	Record(ctx context.Context, action, entity string, entityID *string, metadata map[string]any) error
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrInvalidClient    = errors.New("invalid_client")
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
