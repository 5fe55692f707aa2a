package domain

import (
	"context"
	"errors"
	"time"

	"github.com/plantpulse/plantpulse/pkg/db/pagination"
)

type CreateWorkOrderRequest struct {
	Number              string
	ProductID           string
	PlannedQuantity     int64
	IdealCycleTime      *float64
	CalculatedCycleTime *float64
	PlannedStartDate    *time.Time
	PlannedShipDate     *time.Time
	RequiredDate        *time.Time
}

type UpdateWorkOrderRequest struct {
	ID                  string
	Status              *string
	PlannedQuantity     *int64
	IdealCycleTime      *float64
	CalculatedCycleTime *float64
	PlannedStartDate    *time.Time
	PlannedShipDate     *time.Time
	RequiredDate        *time.Time
	ActualDeliveryDate  *time.Time
}

type ListWorkOrderRequest struct {
	PageToken string
	PageSize  int
	Status    string
	ProductID string
	DateFrom  *time.Time
	DateTo    *time.Time
}

type ListWorkOrderResponse struct {
	pagination.PageInfo
	WorkOrders []WorkOrder `json:"work_orders"`
}

type GetWorkOrderRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateWorkOrderRequest) (WorkOrder, error)
	GetByID(context.Context, GetWorkOrderRequest) (WorkOrder, error)
	List(context.Context, ListWorkOrderRequest) (ListWorkOrderResponse, error)
	Update(context.Context, UpdateWorkOrderRequest) (WorkOrder, error)
	Delete(context.Context, GetWorkOrderRequest) error
}

var (
	ErrInvalidClient    = errors.New("invalid_client")
	ErrInvalidNumber    = errors.New("invalid_number")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidDateRange = errors.New("invalid_date_range")
	ErrNumberTaken      = errors.New("number_taken")
	ErrNotFound         = errors.New("not_found")
)
