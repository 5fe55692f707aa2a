package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/plantpulse/plantpulse/internal/auth/token"
	"github.com/plantpulse/plantpulse/internal/client/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
		log:   p.Log.Named("client.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateClientRequest) (domain.CreateClientResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.CreateClientResponse{}, domain.ErrInvalidName
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = name
	}
	code = slug.Make(code)

	existing, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.CreateClientResponse{}, err
	}
	if existing != nil {
		return domain.CreateClientResponse{}, domain.ErrCodeTaken
	}

	apiToken, err := token.Generate()
	if err != nil {
		return domain.CreateClientResponse{}, err
	}
	hash, err := token.Hash(apiToken)
	if err != nil {
		return domain.CreateClientResponse{}, err
	}

	now := time.Now().UTC()
	client := domain.Client{
		ID:           s.genID.Generate(),
		Name:         name,
		Code:         code,
		Active:       true,
		APITokenHash: hash,
		Metadata:     datatypes.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &client); err != nil {
		return domain.CreateClientResponse{}, err
	}

	return domain.CreateClientResponse{Client: client, APIToken: apiToken}, nil
}

func (s *Service) RotateToken(ctx context.Context, id string) (domain.CreateClientResponse, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.CreateClientResponse{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.CreateClientResponse{}, err
	}
	if item == nil {
		return domain.CreateClientResponse{}, domain.ErrNotFound
	}

	apiToken, err := token.Generate()
	if err != nil {
		return domain.CreateClientResponse{}, err
	}
	hash, err := token.Hash(apiToken)
	if err != nil {
		return domain.CreateClientResponse{}, err
	}

	item.APITokenHash = hash
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.CreateClientResponse{}, err
	}

	return domain.CreateClientResponse{Client: *item, APIToken: apiToken}, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetClientRequest) (domain.Client, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Client{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Client{}, err
	}
	if item == nil {
		return domain.Client{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Client, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	clients := make([]domain.Client, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		clients = append(clients, *item)
	}
	return clients, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateClientRequest) (domain.Client, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Client{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Client{}, err
	}
	if item == nil {
		return domain.Client{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Client{}, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Active != nil {
		item.Active = *req.Active
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Client{}, err
	}

	return *item, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
