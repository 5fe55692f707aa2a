package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/plantpulse/plantpulse/internal/quality/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.QualityEntry) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, clientID snowflake.ID, workOrderID *snowflake.ID, stage string, from, to *time.Time) ([]*domain.QualityEntry, error) {
	var entries []*domain.QualityEntry
	stmt := db.WithContext(ctx).
		Model(&domain.QualityEntry{}).
		Where("client_id = ?", clientID)
	if workOrderID != nil {
		stmt = stmt.Where("work_order_id = ?", *workOrderID)
	}
	if stage != "" {
		stmt = stmt.Where("stage = ?", stage)
	}
	if from != nil {
		stmt = stmt.Where("inspection_date >= ?", *from)
	}
	if to != nil {
		stmt = stmt.Where("inspection_date <= ?", *to)
	}
	err := stmt.
		Order("inspection_date desc, id desc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) CountMismatched(ctx context.Context, db *gorm.DB, clientID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Table("quality_entries").
		Joins("JOIN work_orders ON work_orders.id = quality_entries.work_order_id").
		Where("quality_entries.client_id = ?", clientID).
		Where("work_orders.client_id <> quality_entries.client_id").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, clientID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("client_id = ? AND id = ?", clientID, id).
		Delete(&domain.QualityEntry{}).Error
}
