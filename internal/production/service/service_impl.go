package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	obslogger "github.com/plantpulse/plantpulse/internal/observability/logger"
	obsmetrics "github.com/plantpulse/plantpulse/internal/observability/metrics"
	"github.com/plantpulse/plantpulse/internal/production/domain"
	workorderdomain "github.com/plantpulse/plantpulse/internal/workorder/domain"
	"github.com/plantpulse/plantpulse/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Repo          domain.Repository
	WorkOrderRepo workorderdomain.Repository
	Metrics       *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	repo          domain.Repository
	workOrderRepo workorderdomain.Repository
	metrics       *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("production.service"),
		genID:         p.GenID,
		repo:          p.Repo,
		workOrderRepo: p.WorkOrderRepo,
		metrics:       p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEntryRequest) (domain.ProductionEntry, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return domain.ProductionEntry{}, domain.ErrInvalidClient
	}

	workOrderID, err := s.parseID(req.WorkOrderID)
	if err != nil {
		return domain.ProductionEntry{}, err
	}

	// The parent lookup is scoped by the caller's client, so an entry can
	// never be attached to another client's work order.
	parent, err := s.workOrderRepo.FindByID(ctx, s.db, clientID, workOrderID)
	if err != nil {
		return domain.ProductionEntry{}, err
	}
	if parent == nil {
		return domain.ProductionEntry{}, domain.ErrWorkOrderGone
	}

	if req.UnitsProduced.IsNegative() || req.UnitsGood.IsNegative() || req.UnitsScrap.IsNegative() {
		return domain.ProductionEntry{}, domain.ErrInvalidQuantity
	}
	if req.UnitsGood.Add(req.UnitsScrap).GreaterThan(req.UnitsProduced) {
		return domain.ProductionEntry{}, domain.ErrInvalidQuantity
	}

	now := time.Now().UTC()
	entry := domain.ProductionEntry{
		ID:            s.genID.Generate(),
		ClientID:      clientID,
		WorkOrderID:   workOrderID,
		ShiftDate:     req.ShiftDate.UTC(),
		Operator:      strings.TrimSpace(req.Operator),
		UnitsProduced: req.UnitsProduced,
		UnitsGood:     req.UnitsGood,
		UnitsScrap:    req.UnitsScrap,
		RunHours:      req.RunHours,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		return domain.ProductionEntry{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordEntityWrite(ctx, "production_entry")
	}
	return entry, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.ProductionEntry, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return domain.ProductionEntry{}, domain.ErrInvalidClient
	}

	parsed, err := s.parseID(id)
	if err != nil {
		return domain.ProductionEntry{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, clientID, parsed)
	if err != nil {
		return domain.ProductionEntry{}, err
	}
	if item == nil {
		return domain.ProductionEntry{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListEntryRequest) ([]domain.ProductionEntry, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return nil, domain.ErrInvalidClient
	}

	var workOrderID *snowflake.ID
	if raw := strings.TrimSpace(req.WorkOrderID); raw != "" {
		parsed, err := s.parseID(raw)
		if err != nil {
			return nil, err
		}
		workOrderID = &parsed
	}

	// Fail closed before handing rows back: a mismatched parent means the
	// store has leaked rows across clients.
	mismatched, err := s.repo.CountMismatched(ctx, s.db, clientID)
	if err != nil {
		return nil, err
	}
	if mismatched > 0 {
		obslogger.FromContext(ctx).Error("cross-client integrity fault",
			zap.String("entity", "production_entry"),
			zap.Int64("mismatched_rows", mismatched),
		)
		if s.metrics != nil {
			s.metrics.RecordTenantFault(ctx, "production_entry")
		}
		return nil, domain.ErrClientMismatch
	}

	items, err := s.repo.List(ctx, s.db, clientID, workOrderID, req.DateFrom, req.DateTo)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.ProductionEntry, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		entries = append(entries, *item)
	}
	return entries, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return domain.ErrInvalidClient
	}

	parsed, err := s.parseID(id)
	if err != nil {
		return err
	}

	item, err := s.repo.FindByID(ctx, s.db, clientID, parsed)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	return s.repo.Delete(ctx, s.db, clientID, parsed)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
