package otd

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	workorderdomain "github.com/plantpulse/plantpulse/internal/workorder/domain"
)

// Interval is a trend bucket width.
type Interval string

const (
	IntervalDaily   Interval = "daily"
	IntervalWeekly  Interval = "weekly"
	IntervalMonthly Interval = "monthly"
)

func (i Interval) Valid() bool {
	switch i {
	case IntervalDaily, IntervalWeekly, IntervalMonthly:
		return true
	}
	return false
}

// TrendBucket is one point on the trend line. Start and End are the closed
// bucket bounds; End never exceeds the requested range end.
type TrendBucket struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	OTDResult
}

// TrendResult echoes the interval back so a caller rendering several trends
// does not have to carry it out of band.
type TrendResult struct {
	Interval Interval      `json:"interval"`
	Buckets  []TrendBucket `json:"buckets"`
}

// CalculateOTDTrend slices [from, to] into calendar buckets and computes
// the metric per bucket. Both endpoints are inclusive, so a seven day
// range yields eight daily buckets. Orders are bucketed by their effective
// delivery date: the actual date when present, the planned one otherwise.
func (e *Engine) CalculateOTDTrend(ctx context.Context, clientID snowflake.ID, from, to time.Time, interval Interval) (TrendResult, error) {
	if from.After(to) {
		return TrendResult{}, ErrInvalidDateRange
	}
	if !interval.Valid() {
		return TrendResult{}, ErrInvalidInterval
	}

	orders, err := e.orders.DeliveryWindow(ctx, e.db, clientID, from, to, nil)
	if err != nil {
		return TrendResult{}, err
	}

	result := TrendResult{Interval: interval, Buckets: []TrendBucket{}}
	for start := truncateDay(from); !start.After(to); start = advance(start, interval) {
		end := advance(start, interval).AddDate(0, 0, -1)
		if end.After(to) {
			end = truncateDay(to)
		}

		bucket := TrendBucket{Start: start, End: end}
		bucket.OTDResult = e.aggregate(ctx, orders, func(order *workorderdomain.WorkOrder) bool {
			date := effectiveDate(e.policy, order)
			if date == nil {
				return false
			}
			day := truncateDay(*date)
			return !day.Before(start) && !day.After(end)
		})
		result.Buckets = append(result.Buckets, bucket)
	}

	return result, nil
}

func advance(t time.Time, interval Interval) time.Time {
	switch interval {
	case IntervalWeekly:
		return t.AddDate(0, 0, 7)
	case IntervalMonthly:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// effectiveDate anchors an order on the timeline for bucketing.
func effectiveDate(p Policy, order *workorderdomain.WorkOrder) *time.Time {
	if order.ActualDeliveryDate != nil {
		return order.ActualDeliveryDate
	}
	return p.Infer(*order).Date
}
