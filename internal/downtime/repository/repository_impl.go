package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/plantpulse/plantpulse/internal/downtime/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.DowntimeEntry) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, clientID snowflake.ID, workOrderID *snowflake.ID, from, to *time.Time) ([]*domain.DowntimeEntry, error) {
	var entries []*domain.DowntimeEntry
	stmt := db.WithContext(ctx).
		Model(&domain.DowntimeEntry{}).
		Where("client_id = ?", clientID)
	if workOrderID != nil {
		stmt = stmt.Where("work_order_id = ?", *workOrderID)
	}
	if from != nil {
		stmt = stmt.Where("date >= ?", *from)
	}
	if to != nil {
		stmt = stmt.Where("date <= ?", *to)
	}
	err := stmt.
		Order("date desc, id desc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) CountMismatched(ctx context.Context, db *gorm.DB, clientID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Table("downtime_entries").
		Joins("JOIN work_orders ON work_orders.id = downtime_entries.work_order_id").
		Where("downtime_entries.client_id = ?", clientID).
		Where("work_orders.client_id <> downtime_entries.client_id").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, clientID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("client_id = ? AND id = ?", clientID, id).
		Delete(&domain.DowntimeEntry{}).Error
}
