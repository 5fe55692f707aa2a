package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Product struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	ClientID  snowflake.ID `gorm:"not null;uniqueIndex:idx_products_client_code" json:"client_id"`
	Code      string       `gorm:"not null;uniqueIndex:idx_products_client_code" json:"code"`
	Name      string       `gorm:"not null" json:"name"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Product) TableName() string { return "products" }
