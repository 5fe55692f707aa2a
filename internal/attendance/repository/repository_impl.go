package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/plantpulse/plantpulse/internal/attendance/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.AttendanceEntry) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, clientID snowflake.ID, employeeRef string, from, to *time.Time) ([]*domain.AttendanceEntry, error) {
	var entries []*domain.AttendanceEntry
	stmt := db.WithContext(ctx).
		Model(&domain.AttendanceEntry{}).
		Where("client_id = ?", clientID)
	if employeeRef != "" {
		stmt = stmt.Where("employee_ref = ?", employeeRef)
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

func (r *repo) Delete(ctx context.Context, db *gorm.DB, clientID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("client_id = ? AND id = ?", clientID, id).
		Delete(&domain.AttendanceEntry{}).Error
}
