package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/plantpulse/plantpulse/internal/audit/domain"
	"github.com/plantpulse/plantpulse/internal/audit/repository"
	"github.com/plantpulse/plantpulse/pkg/db/pagination"
	"github.com/plantpulse/plantpulse/pkg/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.Exec("PRAGMA busy_timeout = 5000").Error)
	require.NoError(t, db.AutoMigrate(&domain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func clientCtx(clientID snowflake.ID) context.Context {
	return tenantctx.WithClientID(context.Background(), clientID)
}

func TestRecordRequiresActionAndClient(t *testing.T) {
	svc := setupService(t)

	err := svc.Record(clientCtx(100), "  ", "work_order", nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidAction)

	err = svc.Record(context.Background(), "work_order.create", "work_order", nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidClient)
}

func TestRecordAndListNewestFirst(t *testing.T) {
	svc := setupService(t)
	ctx := clientCtx(100)

	entityID := "42"
	require.NoError(t, svc.Record(ctx, "work_order.create", "work_order", &entityID, map[string]any{"number": "WO-001"}))
	require.NoError(t, svc.Record(ctx, "work_order.update", "work_order", &entityID, nil))

	resp, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 2)

	// ULID ordering keys sort by creation time, newest first.
	assert.Equal(t, "work_order.update", resp.AuditLogs[0].Action)
	assert.Equal(t, "work_order.create", resp.AuditLogs[1].Action)
	assert.Equal(t, string(tenantctx.RoleClient), resp.AuditLogs[0].Actor)
	require.NotNil(t, resp.AuditLogs[1].EntityID)
	assert.Equal(t, "42", *resp.AuditLogs[1].EntityID)
	assert.Equal(t, "WO-001", resp.AuditLogs[1].Metadata["number"])
}

func TestListFiltersByActionAndClient(t *testing.T) {
	svc := setupService(t)

	require.NoError(t, svc.Record(clientCtx(100), "work_order.create", "work_order", nil, nil))
	require.NoError(t, svc.Record(clientCtx(100), "product.create", "product", nil, nil))
	require.NoError(t, svc.Record(clientCtx(200), "work_order.create", "work_order", nil, nil))

	resp, err := svc.List(clientCtx(100), domain.ListRequest{Action: "work_order.create"})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)
	assert.Equal(t, snowflake.ID(100), resp.AuditLogs[0].ClientID)

	all, err := svc.List(clientCtx(100), domain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, all.AuditLogs, 2)
}

func TestListPaginatesByOrderingKey(t *testing.T) {
	svc := setupService(t)
	ctx := clientCtx(100)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Record(ctx, fmt.Sprintf("action.%d", i), "work_order", nil, nil))
	}

	first, err := svc.List(ctx, domain.ListRequest{Pagination: pagination.Pagination{PageSize: 3}})
	require.NoError(t, err)
	require.Len(t, first.AuditLogs, 3)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextPageToken)

	second, err := svc.List(ctx, domain.ListRequest{Pagination: pagination.Pagination{PageSize: 3, PageToken: first.NextPageToken}})
	require.NoError(t, err)
	assert.Len(t, second.AuditLogs, 2)
	assert.False(t, second.HasMore)

	_, err = svc.List(ctx, domain.ListRequest{Pagination: pagination.Pagination{PageToken: "%%%"}})
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)
}
