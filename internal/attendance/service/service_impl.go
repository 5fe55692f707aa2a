package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/plantpulse/plantpulse/internal/attendance/domain"
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
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("attendance.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEntryRequest) (domain.AttendanceEntry, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return domain.AttendanceEntry{}, domain.ErrInvalidClient
	}

	employeeRef := strings.TrimSpace(req.EmployeeRef)
	if employeeRef == "" {
		return domain.AttendanceEntry{}, domain.ErrInvalidEmployee
	}
	if req.ScheduledHours <= 0 || req.AbsentHours < 0 || req.AbsentHours > req.ScheduledHours {
		return domain.AttendanceEntry{}, domain.ErrInvalidHours
	}

	now := time.Now().UTC()
	entry := domain.AttendanceEntry{
		ID:             s.genID.Generate(),
		ClientID:       clientID,
		EmployeeRef:    employeeRef,
		Date:           req.Date.UTC(),
		ScheduledHours: req.ScheduledHours,
		AbsentHours:    req.AbsentHours,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		return domain.AttendanceEntry{}, err
	}

	return entry, nil
}

func (s *Service) List(ctx context.Context, req domain.ListEntryRequest) ([]domain.AttendanceEntry, error) {
	clientID, ok := tenantctx.ClientID(ctx)
	if !ok {
		return nil, domain.ErrInvalidClient
	}

	items, err := s.repo.List(ctx, s.db, clientID, strings.TrimSpace(req.EmployeeRef), req.DateFrom, req.DateTo)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.AttendanceEntry, 0, len(items))
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
