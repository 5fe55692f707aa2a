package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	attendancedomain "github.com/plantpulse/plantpulse/internal/attendance/domain"
	downtimedomain "github.com/plantpulse/plantpulse/internal/downtime/domain"
	"github.com/plantpulse/plantpulse/internal/kpi/cache"
	"github.com/plantpulse/plantpulse/internal/kpi/domain"
	"github.com/plantpulse/plantpulse/internal/kpi/formulas"
	"github.com/plantpulse/plantpulse/internal/kpi/otd"
	obsmetrics "github.com/plantpulse/plantpulse/internal/observability/metrics"
	productiondomain "github.com/plantpulse/plantpulse/internal/production/domain"
	qualitydomain "github.com/plantpulse/plantpulse/internal/quality/domain"
	workorderdomain "github.com/plantpulse/plantpulse/internal/workorder/domain"
	"github.com/plantpulse/plantpulse/pkg/tenantctx"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	Engine         *otd.Engine
	WorkOrderRepo  workorderdomain.Repository
	ProductionRepo productiondomain.Repository
	QualityRepo    qualitydomain.Repository
	AttendanceRepo attendancedomain.Repository
	DowntimeRepo   downtimedomain.Repository
	Trends         *cache.TrendCache   `optional:"true"`
	Metrics        *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	engine         *otd.Engine
	workOrderRepo  workorderdomain.Repository
	productionRepo productiondomain.Repository
	qualityRepo    qualitydomain.Repository
	attendanceRepo attendancedomain.Repository
	downtimeRepo   downtimedomain.Repository
	trends         *cache.TrendCache
	metrics        *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("kpi.service"),
		engine:         p.Engine,
		workOrderRepo:  p.WorkOrderRepo,
		productionRepo: p.ProductionRepo,
		qualityRepo:    p.QualityRepo,
		attendanceRepo: p.AttendanceRepo,
		downtimeRepo:   p.DowntimeRepo,
		trends:         p.Trends,
		metrics:        p.Metrics,
	}
}

func (s *Service) OTD(ctx context.Context, req domain.RangeRequest) (otd.OTDResult, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return otd.OTDResult{}, domain.ErrInvalidClient
	}

	productID, err := s.optionalID(req.ProductID)
	if err != nil {
		return otd.OTDResult{}, err
	}

	s.record(ctx, "otd")
	return s.engine.CalculateOTD(ctx, clientID, req.DateFrom, req.DateTo, productID)
}

func (s *Service) TrueOTD(ctx context.Context, req domain.RangeRequest) (otd.TrueOTDResult, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return otd.TrueOTDResult{}, domain.ErrInvalidClient
	}

	s.record(ctx, "true_otd")
	return s.engine.CalculateTrueOTD(ctx, clientID, req.DateFrom, req.DateTo)
}

func (s *Service) OTDTrend(ctx context.Context, req domain.TrendRequest) (otd.TrendResult, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return otd.TrendResult{}, domain.ErrInvalidClient
	}
	if !req.Interval.Valid() {
		return otd.TrendResult{}, domain.ErrInvalidInterval
	}

	s.record(ctx, "otd_trend")

	key := cache.Key(clientID, req.DateFrom, req.DateTo, string(req.Interval))
	var cached otd.TrendResult
	if s.trends.Get(ctx, key, &cached) {
		return cached, nil
	}

	result, err := s.engine.CalculateOTDTrend(ctx, clientID, req.DateFrom, req.DateTo, req.Interval)
	if err != nil {
		return otd.TrendResult{}, err
	}
	s.trends.Set(ctx, key, result)
	return result, nil
}

func (s *Service) OTDByProduct(ctx context.Context, req domain.RangeRequest) (otd.ByProductResult, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return otd.ByProductResult{}, domain.ErrInvalidClient
	}

	s.record(ctx, "otd_by_product")
	return s.engine.CalculateOTDByProduct(ctx, clientID, req.DateFrom, req.DateTo)
}

func (s *Service) OTDByWorkOrder(ctx context.Context, req domain.RangeRequest) ([]otd.WorkOrderOTD, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return nil, domain.ErrInvalidClient
	}

	s.record(ctx, "otd_by_work_order")
	return s.engine.CalculateOTDByWorkOrder(ctx, clientID, req.DateFrom, req.DateTo)
}

func (s *Service) DeliveryVariance(ctx context.Context, req domain.RangeRequest) (otd.VarianceResult, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return otd.VarianceResult{}, domain.ErrInvalidClient
	}

	productID, err := s.optionalID(req.ProductID)
	if err != nil {
		return otd.VarianceResult{}, err
	}

	s.record(ctx, "delivery_variance")
	return s.engine.CalculateDeliveryVariance(ctx, clientID, req.DateFrom, req.DateTo, productID)
}

func (s *Service) LateOrders(ctx context.Context, req domain.RangeRequest) ([]otd.LateOrder, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return nil, domain.ErrInvalidClient
	}

	s.record(ctx, "late_orders")
	return s.engine.IdentifyLateOrders(ctx, clientID, req.DateFrom, req.DateTo)
}

func (s *Service) InferDeliveryDate(ctx context.Context, workOrderID string) (otd.InferredDate, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return otd.InferredDate{}, domain.ErrInvalidClient
	}

	id, err := s.parseID(workOrderID)
	if err != nil {
		return otd.InferredDate{}, err
	}

	order, err := s.workOrderRepo.FindByID(ctx, s.db, clientID, id)
	if err != nil {
		return otd.InferredDate{}, err
	}
	if order == nil {
		return otd.InferredDate{}, domain.ErrWorkOrderGone
	}

	s.record(ctx, "infer_delivery_date")
	return s.engine.Policy().Infer(*order), nil
}

func (s *Service) LeadTime(ctx context.Context, workOrderID string) (*otd.LeadTime, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return nil, domain.ErrInvalidClient
	}

	id, err := s.parseID(workOrderID)
	if err != nil {
		return nil, err
	}

	s.record(ctx, "lead_time")
	return s.engine.CalculateLeadTime(ctx, clientID, id)
}

func (s *Service) CycleTime(ctx context.Context, workOrderID string) (*otd.CycleTime, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return nil, domain.ErrInvalidClient
	}

	id, err := s.parseID(workOrderID)
	if err != nil {
		return nil, err
	}

	s.record(ctx, "cycle_time")
	return s.engine.CalculateCycleTime(ctx, clientID, id)
}

// Summary folds the window's production, quality, downtime and attendance
// entries through the formula set. Missing categories simply contribute
// zeros.
func (s *Service) Summary(ctx context.Context, req domain.RangeRequest) (domain.Summary, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return domain.Summary{}, domain.ErrInvalidClient
	}
	if req.DateFrom.After(req.DateTo) {
		return domain.Summary{}, domain.ErrInvalidDateRange
	}

	s.record(ctx, "summary")

	from, to := req.DateFrom, req.DateTo
	summary := domain.Summary{FPY: map[string]float64{}}

	production, err := s.productionRepo.List(ctx, s.db, clientID, nil, &from, &to)
	if err != nil {
		return domain.Summary{}, err
	}

	var (
		unitsProduced = decimal.Zero
		unitsGood     = decimal.Zero
		runHours      float64
	)
	for _, entry := range production {
		unitsProduced = unitsProduced.Add(entry.UnitsProduced)
		unitsGood = unitsGood.Add(entry.UnitsGood)
		runHours += entry.RunHours
	}
	summary.Efficiency = formulas.Efficiency(unitsGood, unitsProduced)
	if cycle := s.weightedIdealCycleTime(ctx, clientID, production); cycle > 0 {
		summary.Performance = formulas.Performance(unitsProduced, runHours, cycle)
	}

	quality, err := s.qualityRepo.List(ctx, s.db, clientID, nil, "", &from, &to)
	if err != nil {
		return domain.Summary{}, err
	}

	var (
		unitsInspected = decimal.Zero
		unitsFirstPass = decimal.Zero
		unitsDefective = decimal.Zero
		defects        int64
		opportunities  = decimal.Zero
	)
	stageInspected := map[string]decimal.Decimal{}
	stageFirstPass := map[string]decimal.Decimal{}
	for _, entry := range quality {
		unitsInspected = unitsInspected.Add(entry.UnitsInspected)
		unitsFirstPass = unitsFirstPass.Add(entry.UnitsFirstPass)
		unitsDefective = unitsDefective.Add(entry.UnitsDefective)
		defects += entry.DefectCount
		opportunities = opportunities.Add(entry.UnitsInspected.Mul(decimal.NewFromInt(entry.Opportunities)))

		stageInspected[entry.Stage] = stageInspected[entry.Stage].Add(entry.UnitsInspected)
		stageFirstPass[entry.Stage] = stageFirstPass[entry.Stage].Add(entry.UnitsFirstPass)
	}
	summary.QualityRate = formulas.QualityRate(unitsFirstPass, unitsInspected)
	summary.PPM = formulas.PPM(unitsDefective, unitsInspected)
	summary.DPMO = dpmoFromTotals(defects, opportunities)

	yields := make([]float64, 0, len(stageInspected))
	for stage, inspected := range stageInspected {
		fpy := formulas.FPY(stageFirstPass[stage], inspected)
		summary.FPY[stage] = fpy
		yields = append(yields, fpy)
	}
	summary.RTY = formulas.RTY(yields)

	downtime, err := s.downtimeRepo.List(ctx, s.db, clientID, nil, &from, &to)
	if err != nil {
		return domain.Summary{}, err
	}

	var plannedMinutes, downtimeMinutes float64
	for _, entry := range downtime {
		plannedMinutes += entry.PlannedMinutes
		downtimeMinutes += entry.DowntimeMinutes
	}
	summary.Availability = formulas.Availability(plannedMinutes, downtimeMinutes)

	summary.OEE = formulas.OEE(summary.Availability, summary.Performance, summary.QualityRate)

	attendance, err := s.attendanceRepo.List(ctx, s.db, clientID, "", &from, &to)
	if err != nil {
		return domain.Summary{}, err
	}

	var scheduledHours, absentHours float64
	for _, entry := range attendance {
		scheduledHours += entry.ScheduledHours
		absentHours += entry.AbsentHours
	}
	summary.Absenteeism = formulas.Absenteeism(absentHours, scheduledHours)

	return summary, nil
}

// weightedIdealCycleTime averages the ideal cycle times of the work orders
// behind the window's production entries, weighted by units produced. Zero
// when none of the parents declare a cycle time.
func (s *Service) weightedIdealCycleTime(ctx context.Context, clientID snowflake.ID, entries []*productiondomain.ProductionEntry) float64 {
	cycleByOrder := map[snowflake.ID]float64{}
	var weighted, units float64
	for _, entry := range entries {
		cycle, seen := cycleByOrder[entry.WorkOrderID]
		if !seen {
			order, err := s.workOrderRepo.FindByID(ctx, s.db, clientID, entry.WorkOrderID)
			if err != nil || order == nil {
				cycleByOrder[entry.WorkOrderID] = 0
				continue
			}
			if order.IdealCycleTime != nil && *order.IdealCycleTime > 0 {
				cycle = *order.IdealCycleTime
			}
			cycleByOrder[entry.WorkOrderID] = cycle
		}
		if cycle <= 0 {
			continue
		}
		produced, _ := entry.UnitsProduced.Float64()
		weighted += cycle * produced
		units += produced
	}
	if units <= 0 {
		return 0
	}
	return weighted / units
}

func dpmoFromTotals(defects int64, opportunities decimal.Decimal) float64 {
	opp, _ := opportunities.Float64()
	if opp <= 0 {
		return 0
	}
	return float64(defects) / opp * 1_000_000
}

func (s *Service) record(ctx context.Context, kpi string) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordKPIQuery(ctx, kpi)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func (s *Service) optionalID(value string) (*snowflake.ID, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return nil, nil
	}
	id, err := s.parseID(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
