package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/plantpulse/plantpulse/internal/client/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultClientName = "Main Plant"
	defaultClientCode = "main-plant"
)

// EnsureDefaultClient seeds the bootstrap client so a fresh install can
// take writes immediately. Safe to run on every startup.
func EnsureDefaultClient(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing clientdomain.Client
		err := tx.Where("code = ?", defaultClientCode).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		client := clientdomain.Client{
			ID:        node.Generate(),
			Name:      defaultClientName,
			Code:      defaultClientCode,
			Active:    true,
			Metadata:  datatypes.JSONMap{"seeded": true},
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tx.Create(&client).Error
	})
}
