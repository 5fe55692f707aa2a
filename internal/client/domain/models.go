package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Client is a tenant. Every transactional row in the system carries a
// client_id foreign key into this registry.
type Client struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name      string            `gorm:"not null" json:"name"`
	Code      string            `gorm:"not null;uniqueIndex" json:"code"`
	Active    bool              `gorm:"not null;default:true" json:"active"`
	// APITokenHash is the bcrypt hash of the client's API token. Empty
	// means no token has been issued yet.
	APITokenHash string `gorm:"column:api_token_hash" json:"-"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Client) TableName() string { return "clients" }
