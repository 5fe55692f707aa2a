package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/plantpulse/plantpulse/internal/workorder/domain"
	"github.com/plantpulse/plantpulse/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.WorkOrder) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, clientID, id snowflake.ID) (*domain.WorkOrder, error) {
	var order domain.WorkOrder
	err := db.WithContext(ctx).
		Where("client_id = ? AND id = ?", clientID, id).
		Limit(1).
		Find(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, clientID snowflake.ID, number string) (*domain.WorkOrder, error) {
	var order domain.WorkOrder
	err := db.WithContext(ctx).
		Where("client_id = ? AND number = ?", clientID, number).
		Limit(1).
		Find(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, clientID snowflake.ID, filter domain.ListWorkOrderFilter, page pagination.Pagination) ([]*domain.WorkOrder, error) {
	var orders []*domain.WorkOrder
	stmt := db.WithContext(ctx).
		Model(&domain.WorkOrder{}).
		Where("client_id = ?", clientID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.ProductID != nil {
		stmt = stmt.Where("product_id = ?", *filter.ProductID)
	}
	if filter.DateFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		stmt = stmt.Where("created_at <= ?", *filter.DateTo)
	}
	if page.PageSize > 0 {
		stmt = stmt.Limit(page.PageSize + 1)
	}
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		createdAt, err := time.Parse(time.RFC3339, cursor.CreatedAt)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("created_at < ?", createdAt)
	}
	err := stmt.
		Order("created_at desc, id desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, order *domain.WorkOrder) error {
	// client_id is deliberately absent from the update set.
	return db.WithContext(ctx).
		Model(&domain.WorkOrder{}).
		Where("client_id = ? AND id = ?", order.ClientID, order.ID).
		Updates(map[string]any{
			"status":                order.Status,
			"planned_quantity":      order.PlannedQuantity,
			"ideal_cycle_time":      order.IdealCycleTime,
			"calculated_cycle_time": order.CalculatedCycleTime,
			"planned_start_date":    order.PlannedStartDate,
			"planned_ship_date":     order.PlannedShipDate,
			"required_date":         order.RequiredDate,
			"actual_delivery_date":  order.ActualDeliveryDate,
			"updated_at":            order.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, clientID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("client_id = ? AND id = ?", clientID, id).
		Delete(&domain.WorkOrder{}).Error
}

func (r *repo) DeliveryWindow(ctx context.Context, db *gorm.DB, clientID snowflake.ID, from, to time.Time, productID *snowflake.ID) ([]*domain.WorkOrder, error) {
	var orders []*domain.WorkOrder
	stmt := db.WithContext(ctx).
		Model(&domain.WorkOrder{}).
		Where("client_id = ?", clientID).
		Where(db.Session(&gorm.Session{NewDB: true}).
			Where("actual_delivery_date BETWEEN ? AND ?", from, to).
			Or("planned_ship_date BETWEEN ? AND ?", from, to).
			Or("required_date BETWEEN ? AND ?", from, to).
			Or("planned_start_date BETWEEN ? AND ?", from, to))
	if productID != nil {
		stmt = stmt.Where("product_id = ?", *productID)
	}
	err := stmt.
		Order("id asc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
