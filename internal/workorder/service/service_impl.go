package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	obsmetrics "github.com/plantpulse/plantpulse/internal/observability/metrics"
	"github.com/plantpulse/plantpulse/internal/workorder/domain"
	"github.com/plantpulse/plantpulse/pkg/db/pagination"
	"github.com/plantpulse/plantpulse/pkg/rls"
	"github.com/plantpulse/plantpulse/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository

	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository

	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("workorder.service"),
		genID: p.GenID,
		repo:  p.Repo,

		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateWorkOrderRequest) (domain.WorkOrder, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return domain.WorkOrder{}, domain.ErrInvalidClient
	}

	number := strings.TrimSpace(req.Number)
	if number == "" {
		return domain.WorkOrder{}, domain.ErrInvalidNumber
	}
	if req.PlannedQuantity <= 0 {
		return domain.WorkOrder{}, domain.ErrInvalidQuantity
	}

	existing, err := s.repo.FindByNumber(ctx, s.db, clientID, number)
	if err != nil {
		return domain.WorkOrder{}, err
	}
	if existing != nil {
		return domain.WorkOrder{}, domain.ErrNumberTaken
	}

	var productID *snowflake.ID
	if raw := strings.TrimSpace(req.ProductID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil || parsed == 0 {
			return domain.WorkOrder{}, domain.ErrInvalidID
		}
		productID = &parsed
	}

	now := time.Now().UTC()
	order := domain.WorkOrder{
		ID:                  s.genID.Generate(),
		ClientID:            clientID,
		Number:              number,
		ProductID:           productID,
		Status:              domain.StatusPlanned,
		PlannedQuantity:     req.PlannedQuantity,
		IdealCycleTime:      req.IdealCycleTime,
		CalculatedCycleTime: req.CalculatedCycleTime,
		PlannedStartDate:    normalizeDate(req.PlannedStartDate),
		PlannedShipDate:     normalizeDate(req.PlannedShipDate),
		RequiredDate:        normalizeDate(req.RequiredDate),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := rls.WithClient(tx, int64(clientID)); err != nil {
			return err
		}
		return s.repo.Insert(ctx, tx, &order)
	})
	if err != nil {
		return domain.WorkOrder{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordEntityWrite(ctx, "work_order")
	}
	return order, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetWorkOrderRequest) (domain.WorkOrder, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return domain.WorkOrder{}, domain.ErrInvalidClient
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.WorkOrder{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, clientID, id)
	if err != nil {
		return domain.WorkOrder{}, err
	}
	if item == nil {
		return domain.WorkOrder{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListWorkOrderRequest) (domain.ListWorkOrderResponse, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return domain.ListWorkOrderResponse{}, domain.ErrInvalidClient
	}

	if req.DateFrom != nil && req.DateTo != nil && req.DateFrom.After(*req.DateTo) {
		return domain.ListWorkOrderResponse{}, domain.ErrInvalidDateRange
	}

	filter := domain.ListWorkOrderFilter{
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status := domain.Status(raw)
		if !status.Valid() {
			return domain.ListWorkOrderResponse{}, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(req.ProductID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil || parsed == 0 {
			return domain.ListWorkOrderResponse{}, domain.ErrInvalidID
		}
		filter.ProductID = &parsed
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, clientID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListWorkOrderResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(order *domain.WorkOrder) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        order.ID.String(),
			CreatedAt: order.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	orders := make([]domain.WorkOrder, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		orders = append(orders, *item)
	}

	resp := domain.ListWorkOrderResponse{WorkOrders: orders}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateWorkOrderRequest) (domain.WorkOrder, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return domain.WorkOrder{}, domain.ErrInvalidClient
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.WorkOrder{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, clientID, id)
	if err != nil {
		return domain.WorkOrder{}, err
	}
	if item == nil {
		return domain.WorkOrder{}, domain.ErrNotFound
	}

	if req.Status != nil {
		status := domain.Status(strings.TrimSpace(*req.Status))
		if !status.Valid() {
			return domain.WorkOrder{}, domain.ErrInvalidStatus
		}
		item.Status = status
	}
	if req.PlannedQuantity != nil {
		if *req.PlannedQuantity <= 0 {
			return domain.WorkOrder{}, domain.ErrInvalidQuantity
		}
		item.PlannedQuantity = *req.PlannedQuantity
	}
	if req.IdealCycleTime != nil {
		item.IdealCycleTime = req.IdealCycleTime
	}
	if req.CalculatedCycleTime != nil {
		item.CalculatedCycleTime = req.CalculatedCycleTime
	}
	if req.PlannedStartDate != nil {
		item.PlannedStartDate = normalizeDate(req.PlannedStartDate)
	}
	if req.PlannedShipDate != nil {
		item.PlannedShipDate = normalizeDate(req.PlannedShipDate)
	}
	if req.RequiredDate != nil {
		item.RequiredDate = normalizeDate(req.RequiredDate)
	}
	if req.ActualDeliveryDate != nil {
		item.ActualDeliveryDate = normalizeDate(req.ActualDeliveryDate)
	}
	item.UpdatedAt = time.Now().UTC()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := rls.WithClient(tx, int64(clientID)); err != nil {
			return err
		}
		return s.repo.Update(ctx, tx, item)
	})
	if err != nil {
		return domain.WorkOrder{}, err
	}

	return *item, nil
}

func (s *Service) Delete(ctx context.Context, req domain.GetWorkOrderRequest) error {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return domain.ErrInvalidClient
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}

	item, err := s.repo.FindByID(ctx, s.db, clientID, id)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := rls.WithClient(tx, int64(clientID)); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, clientID, id)
	})
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
