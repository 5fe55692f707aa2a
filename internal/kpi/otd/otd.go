package otd

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/plantpulse/plantpulse/internal/clock"
	obsmetrics "github.com/plantpulse/plantpulse/internal/observability/metrics"
	productiondomain "github.com/plantpulse/plantpulse/internal/production/domain"
	workorderdomain "github.com/plantpulse/plantpulse/internal/workorder/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrInvalidDateRange is returned when date_from is after date_to.
	// Malformed ranges are the one class of input this engine rejects;
	// empty result sets are not errors.
	ErrInvalidDateRange = errors.New("invalid_date_range")
	// ErrInvalidInterval is returned for an unrecognized trend interval.
	ErrInvalidInterval = errors.New("invalid_interval")
)

// InferenceSummary reports how trustworthy an aggregation is: how many
// orders carried an authoritative planned date versus an inferred or
// undeterminable one.
type InferenceSummary struct {
	Authoritative int `json:"authoritative"`
	Inferred      int `json:"inferred"`
	Undetermined  int `json:"undetermined"`
}

// OTDResult is one aggregation outcome. Percentage is 0, never NaN, when
// no orders qualify.
type OTDResult struct {
	TotalOrders int              `json:"total_orders"`
	OnTime      int              `json:"on_time"`
	Late        int              `json:"late"`
	Pending     int              `json:"pending"`
	Percentage  float64          `json:"percentage"`
	Inference   InferenceSummary `json:"inference"`
}

// TrueOTDResult pairs the status-filtered percentage with the naive one.
type TrueOTDResult struct {
	TrueOTD     OTDResult        `json:"true_otd"`
	StandardOTD OTDResult        `json:"standard_otd"`
	Variance    float64          `json:"variance"`
	Inference   InferenceSummary `json:"inference"`
}

// Engine computes every on-time-delivery metric. It only reads; the store
// is owned by the CRUD layer.
type Engine struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	policy     Policy
	orders     workorderdomain.Repository
	production productiondomain.Repository
	metrics    *obsmetrics.Metrics
}

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	Policy     Policy
	Orders     workorderdomain.Repository
	Production productiondomain.Repository
	Metrics    *obsmetrics.Metrics `optional:"true"`
}

func NewEngine(p Params) *Engine {
	return &Engine{
		db:         p.DB,
		log:        p.Log.Named("kpi.otd"),
		clock:      p.Clock,
		policy:     p.Policy,
		orders:     p.Orders,
		production: p.Production,
		metrics:    p.Metrics,
	}
}

// NewEngineForTest builds an engine without the fx plumbing.
func NewEngineForTest(db *gorm.DB, clk clock.Clock, policy Policy, orders workorderdomain.Repository, production productiondomain.Repository) *Engine {
	return &Engine{
		db:         db,
		log:        zap.NewNop(),
		clock:      clk,
		policy:     policy,
		orders:     orders,
		production: production,
	}
}

// Policy exposes the engine's active policy.
func (e *Engine) Policy() Policy { return e.policy }

// CalculateOTD counts on-time versus late deliveries for the client across
// the closed range [from, to], optionally restricted to one product.
func (e *Engine) CalculateOTD(ctx context.Context, clientID snowflake.ID, from, to time.Time, productID *snowflake.ID) (OTDResult, error) {
	if from.After(to) {
		return OTDResult{}, ErrInvalidDateRange
	}

	orders, err := e.orders.DeliveryWindow(ctx, e.db, clientID, from, to, productID)
	if err != nil {
		return OTDResult{}, err
	}

	return e.aggregate(ctx, orders, nil), nil
}

// CalculateTrueOTD computes the standard metric alongside the variant
// restricted to orders that actually finished. The signed variance between
// the two quantifies how much in-flight and cancelled orders distort the
// naive number.
func (e *Engine) CalculateTrueOTD(ctx context.Context, clientID snowflake.ID, from, to time.Time) (TrueOTDResult, error) {
	if from.After(to) {
		return TrueOTDResult{}, ErrInvalidDateRange
	}

	orders, err := e.orders.DeliveryWindow(ctx, e.db, clientID, from, to, nil)
	if err != nil {
		return TrueOTDResult{}, err
	}

	standard := e.aggregate(ctx, orders, nil)
	complete := e.aggregate(ctx, orders, func(order *workorderdomain.WorkOrder) bool {
		return order.Status.TerminalSuccess()
	})

	return TrueOTDResult{
		TrueOTD:     complete,
		StandardOTD: standard,
		Variance:    complete.Percentage - standard.Percentage,
		Inference:   standard.Inference,
	}, nil
}

// aggregate classifies each order and folds the counts. A nil keep func
// admits everything.
func (e *Engine) aggregate(ctx context.Context, orders []*workorderdomain.WorkOrder, keep func(*workorderdomain.WorkOrder) bool) OTDResult {
	var result OTDResult
	for _, order := range orders {
		if order == nil {
			continue
		}
		if keep != nil && !keep(order) {
			continue
		}

		result.TotalOrders++

		inferred := e.policy.Infer(*order)
		e.recordInference(ctx, inferred.Source)
		switch inferred.Source {
		case SourcePlannedShipDate:
			result.Inference.Authoritative++
		case SourceNone:
			result.Inference.Undetermined++
		default:
			result.Inference.Inferred++
		}

		if order.ActualDeliveryDate == nil || inferred.Date == nil {
			result.Pending++
			continue
		}

		if e.policy.onTime(*order.ActualDeliveryDate, *inferred.Date) {
			result.OnTime++
		} else {
			result.Late++
		}
	}

	result.Percentage = percentage(result.OnTime, result.TotalOrders)
	return result
}

// percentage never divides by zero.
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func (e *Engine) recordInference(ctx context.Context, source Source) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordOTDInference(ctx, string(source))
}
