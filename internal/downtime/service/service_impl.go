package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/plantpulse/plantpulse/internal/downtime/domain"
	obslogger "github.com/plantpulse/plantpulse/internal/observability/logger"
	obsmetrics "github.com/plantpulse/plantpulse/internal/observability/metrics"
	"github.com/plantpulse/plantpulse/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("downtime.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEntryRequest) (domain.DowntimeEntry, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return domain.DowntimeEntry{}, domain.ErrInvalidClient
	}

	if req.PlannedMinutes <= 0 || req.DowntimeMinutes < 0 || req.DowntimeMinutes > req.PlannedMinutes {
		return domain.DowntimeEntry{}, domain.ErrInvalidMinutes
	}

	var workOrderID *snowflake.ID
	if raw := strings.TrimSpace(req.WorkOrderID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil || parsed == 0 {
			return domain.DowntimeEntry{}, domain.ErrInvalidID
		}
		workOrderID = &parsed
	}

	now := time.Now().UTC()
	entry := domain.DowntimeEntry{
		ID:              s.genID.Generate(),
		ClientID:        clientID,
		WorkOrderID:     workOrderID,
		Date:            req.Date.UTC(),
		PlannedMinutes:  req.PlannedMinutes,
		DowntimeMinutes: req.DowntimeMinutes,
		Reason:          strings.TrimSpace(req.Reason),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		return domain.DowntimeEntry{}, err
	}

	return entry, nil
}

func (s *Service) List(ctx context.Context, req domain.ListEntryRequest) ([]domain.DowntimeEntry, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return nil, domain.ErrInvalidClient
	}

	var workOrderID *snowflake.ID
	if raw := strings.TrimSpace(req.WorkOrderID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil || parsed == 0 {
			return nil, domain.ErrInvalidID
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
			zap.String("entity", "downtime_entry"),
			zap.Int64("mismatched_rows", mismatched),
		)
		if s.metrics != nil {
			s.metrics.RecordTenantFault(ctx, "downtime_entry")
		}
		return nil, domain.ErrClientMismatch
	}

	items, err := s.repo.List(ctx, s.db, clientID, workOrderID, req.DateFrom, req.DateTo)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.DowntimeEntry, 0, len(items))
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

	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.ErrInvalidID
	}

	return s.repo.Delete(ctx, s.db, clientID, parsed)
}
