package otd

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// LeadTime is the observed span from order creation to delivery.
type LeadTime struct {
	WorkOrderID string  `json:"work_order_id"`
	Days        float64 `json:"days"`
}

// CycleTime is the measured hours-per-unit derived from production entries.
type CycleTime struct {
	WorkOrderID   string  `json:"work_order_id"`
	HoursPerUnit  float64 `json:"hours_per_unit"`
	UnitsProduced float64 `json:"units_produced"`
	RunHours      float64 `json:"run_hours"`
}

// CalculateLeadTime returns how long the order took from creation to
// delivery. Nil when the order is missing or not yet delivered.
func (e *Engine) CalculateLeadTime(ctx context.Context, clientID, workOrderID snowflake.ID) (*LeadTime, error) {
	order, err := e.orders.FindByID(ctx, e.db, clientID, workOrderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.ActualDeliveryDate == nil {
		return nil, nil
	}

	days := order.ActualDeliveryDate.Sub(order.CreatedAt).Hours() / 24
	return &LeadTime{WorkOrderID: order.ID.String(), Days: days}, nil
}

// CalculateCycleTime derives the order's actual cycle time from its
// production entries. Nil when the order is missing or nothing has been
// produced yet.
func (e *Engine) CalculateCycleTime(ctx context.Context, clientID, workOrderID snowflake.ID) (*CycleTime, error) {
	order, err := e.orders.FindByID(ctx, e.db, clientID, workOrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil
	}

	entries, err := e.production.List(ctx, e.db, clientID, &workOrderID, nil, nil)
	if err != nil {
		return nil, err
	}

	units := decimal.Zero
	var hours float64
	for _, entry := range entries {
		units = units.Add(entry.UnitsProduced)
		hours += entry.RunHours
	}
	produced, _ := units.Float64()
	if produced <= 0 {
		return nil, nil
	}

	return &CycleTime{
		WorkOrderID:   order.ID.String(),
		HoursPerUnit:  hours / produced,
		UnitsProduced: produced,
		RunHours:      hours,
	}, nil
}
