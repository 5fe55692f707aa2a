package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/plantpulse/plantpulse/internal/production/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.ProductionEntry) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, clientID, id snowflake.ID) (*domain.ProductionEntry, error) {
	var entry domain.ProductionEntry
	err := db.WithContext(ctx).
		Where("client_id = ? AND id = ?", clientID, id).
		Limit(1).
		Find(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == 0 {
		return nil, nil
	}
	return &entry, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, clientID snowflake.ID, workOrderID *snowflake.ID, from, to *time.Time) ([]*domain.ProductionEntry, error) {
	var entries []*domain.ProductionEntry
	stmt := db.WithContext(ctx).
		Model(&domain.ProductionEntry{}).
		Where("client_id = ?", clientID)
	if workOrderID != nil {
		stmt = stmt.Where("work_order_id = ?", *workOrderID)
	}
	if from != nil {
		stmt = stmt.Where("shift_date >= ?", *from)
	}
	if to != nil {
		stmt = stmt.Where("shift_date <= ?", *to)
	}
	err := stmt.
		Order("shift_date desc, id desc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, clientID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("client_id = ? AND id = ?", clientID, id).
		Delete(&domain.ProductionEntry{}).Error
}

func (r *repo) CountMismatched(ctx context.Context, db *gorm.DB, clientID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Table("production_entries").
		Joins("JOIN work_orders ON work_orders.id = production_entries.work_order_id").
		Where("production_entries.client_id = ?", clientID).
		Where("work_orders.client_id <> production_entries.client_id").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
