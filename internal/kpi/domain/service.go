package domain

import (
	"context"
	"errors"
	"time"

	"github.com/plantpulse/plantpulse/internal/kpi/otd"
)

// RangeRequest scopes a KPI query. The client is never part of the
// request; it always comes from the caller's context.
type RangeRequest struct {
	DateFrom  time.Time
	DateTo    time.Time
	ProductID string
}

type TrendRequest struct {
	RangeRequest
	Interval otd.Interval
}

// Summary bundles the arithmetic shop-floor KPIs for a window. Percentages
// are 0 when no data backs them.
type Summary struct {
	Efficiency   float64 `json:"efficiency"`
	Performance  float64 `json:"performance"`
	Availability float64 `json:"availability"`
	QualityRate  float64 `json:"quality_rate"`
	OEE          float64 `json:"oee"`

	PPM  float64 `json:"ppm"`
	DPMO float64 `json:"dpmo"`
	RTY  float64 `json:"rty"`

	// FPY carries per-stage first pass yields as fractions in [0,1],
	// keyed by inspection stage.
	FPY map[string]float64 `json:"fpy"`

	Absenteeism float64 `json:"absenteeism"`
}

type Service interface {
	OTD(context.Context, RangeRequest) (otd.OTDResult, error)
	TrueOTD(context.Context, RangeRequest) (otd.TrueOTDResult, error)
	OTDTrend(context.Context, TrendRequest) (otd.TrendResult, error)
	OTDByProduct(context.Context, RangeRequest) (otd.ByProductResult, error)
	OTDByWorkOrder(context.Context, RangeRequest) ([]otd.WorkOrderOTD, error)
	DeliveryVariance(context.Context, RangeRequest) (otd.VarianceResult, error)
	LateOrders(context.Context, RangeRequest) ([]otd.LateOrder, error)

	InferDeliveryDate(ctx context.Context, workOrderID string) (otd.InferredDate, error)
	LeadTime(ctx context.Context, workOrderID string) (*otd.LeadTime, error)
	CycleTime(ctx context.Context, workOrderID string) (*otd.CycleTime, error)

	Summary(context.Context, RangeRequest) (Summary, error)
}

var (
	ErrInvalidClient    = errors.New("invalid_client")
	ErrInvalidID        = errors.New("invalid_id")
	ErrWorkOrderGone    = errors.New("work_order_not_found")
	ErrInvalidDateRange = otd.ErrInvalidDateRange
	ErrInvalidInterval  = otd.ErrInvalidInterval
)
