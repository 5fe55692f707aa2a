package otd

import (
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
)

// VarianceResult summarizes the day-variance distribution of delivered
// orders in a window. Negative variance means early, positive means late.
type VarianceResult struct {
	TotalOrders         int     `json:"total_orders"`
	EarlyDeliveries     int     `json:"early_deliveries"`
	OnTimeDeliveries    int     `json:"on_time_deliveries"`
	LateDeliveries      int     `json:"late_deliveries"`
	AverageVarianceDays float64 `json:"average_variance_days"`
}

// LateOrder is one order flagged by IdentifyLateOrders.
type LateOrder struct {
	WorkOrderID string     `json:"work_order_id"`
	Number      string     `json:"number"`
	PlannedDate time.Time  `json:"planned_date"`
	ActualDate  *time.Time `json:"actual_date,omitempty"`
	DaysLate    int        `json:"days_late"`
	Source      Source     `json:"inference_source"`
	Confidence  float64    `json:"confidence_score"`
	Undelivered bool       `json:"undelivered"`
}

// WorkOrderOTD is the per-order classification behind the aggregates.
type WorkOrderOTD struct {
	WorkOrderID  string       `json:"work_order_id"`
	Number       string       `json:"number"`
	Inferred     InferredDate `json:"planned_delivery"`
	ActualDate   *time.Time   `json:"actual_date,omitempty"`
	OnTime       *bool        `json:"on_time,omitempty"`
	VarianceDays *int         `json:"variance_days,omitempty"`
}

// CalculateDeliveryVariance measures how far deliveries landed from their
// planned dates. Only orders with both an actual and a resolvable planned
// date contribute; the rest are simply not part of the distribution.
func (e *Engine) CalculateDeliveryVariance(ctx context.Context, clientID snowflake.ID, from, to time.Time, productID *snowflake.ID) (VarianceResult, error) {
	if from.After(to) {
		return VarianceResult{}, ErrInvalidDateRange
	}

	orders, err := e.orders.DeliveryWindow(ctx, e.db, clientID, from, to, productID)
	if err != nil {
		return VarianceResult{}, err
	}

	var result VarianceResult
	var totalDays int
	for _, order := range orders {
		inferred := e.policy.Infer(*order)
		if order.ActualDeliveryDate == nil || inferred.Date == nil {
			continue
		}

		result.TotalOrders++
		days := dayDiff(*inferred.Date, *order.ActualDeliveryDate)
		totalDays += days
		switch {
		case days < 0:
			result.EarlyDeliveries++
		case days == 0:
			result.OnTimeDeliveries++
		default:
			result.LateDeliveries++
		}
	}

	if result.TotalOrders > 0 {
		result.AverageVarianceDays = float64(totalDays) / float64(result.TotalOrders)
	}
	return result, nil
}

// IdentifyLateOrders lists every order in the window that was delivered
// late, plus undelivered orders whose planned date has already passed.
// Most-late first.
func (e *Engine) IdentifyLateOrders(ctx context.Context, clientID snowflake.ID, from, to time.Time) ([]LateOrder, error) {
	if from.After(to) {
		return nil, ErrInvalidDateRange
	}

	orders, err := e.orders.DeliveryWindow(ctx, e.db, clientID, from, to, nil)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	late := []LateOrder{}
	for _, order := range orders {
		inferred := e.policy.Infer(*order)
		if inferred.Date == nil {
			continue
		}

		deadline := inferred.Date.Add(e.policy.Grace)
		switch {
		case order.ActualDeliveryDate != nil:
			if order.ActualDeliveryDate.After(deadline) {
				late = append(late, LateOrder{
					WorkOrderID: order.ID.String(),
					Number:      order.Number,
					PlannedDate: *inferred.Date,
					ActualDate:  order.ActualDeliveryDate,
					DaysLate:    dayDiff(*inferred.Date, *order.ActualDeliveryDate),
					Source:      inferred.Source,
					Confidence:  inferred.Confidence,
				})
			}
		case now.After(deadline) && !order.Status.Closed():
			late = append(late, LateOrder{
				WorkOrderID: order.ID.String(),
				Number:      order.Number,
				PlannedDate: *inferred.Date,
				DaysLate:    dayDiff(*inferred.Date, now),
				Source:      inferred.Source,
				Confidence:  inferred.Confidence,
				Undelivered: true,
			})
		}
	}

	sort.Slice(late, func(i, j int) bool {
		if late[i].DaysLate != late[j].DaysLate {
			return late[i].DaysLate > late[j].DaysLate
		}
		return late[i].Number < late[j].Number
	})
	return late, nil
}

// CalculateOTDByWorkOrder exposes the raw per-order classification the
// aggregates are built from. Orders that cannot be judged yet come back
// with OnTime and VarianceDays unset.
func (e *Engine) CalculateOTDByWorkOrder(ctx context.Context, clientID snowflake.ID, from, to time.Time) ([]WorkOrderOTD, error) {
	if from.After(to) {
		return nil, ErrInvalidDateRange
	}

	orders, err := e.orders.DeliveryWindow(ctx, e.db, clientID, from, to, nil)
	if err != nil {
		return nil, err
	}

	rows := make([]WorkOrderOTD, 0, len(orders))
	for _, order := range orders {
		row := WorkOrderOTD{
			WorkOrderID: order.ID.String(),
			Number:      order.Number,
			Inferred:    e.policy.Infer(*order),
			ActualDate:  order.ActualDeliveryDate,
		}
		if order.ActualDeliveryDate != nil && row.Inferred.Date != nil {
			onTime := e.policy.onTime(*order.ActualDeliveryDate, *row.Inferred.Date)
			days := dayDiff(*row.Inferred.Date, *order.ActualDeliveryDate)
			row.OnTime = &onTime
			row.VarianceDays = &days
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// dayDiff counts calendar days from planned to actual. Early deliveries
// are negative.
func dayDiff(planned, actual time.Time) int {
	p := truncateDay(planned)
	a := truncateDay(actual)
	return int(a.Sub(p) / (24 * time.Hour))
}
