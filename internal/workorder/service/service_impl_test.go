package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/plantpulse/plantpulse/internal/workorder/domain"
	"github.com/plantpulse/plantpulse/internal/workorder/repository"
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
	require.NoError(t, db.AutoMigrate(&domain.WorkOrder{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func clientCtx(clientID snowflake.ID) context.Context {
	return tenantctx.WithClientID(context.Background(), clientID)
}

func TestCreateRequiresClientContext(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Create(context.Background(), domain.CreateWorkOrderRequest{
		Number:          "WO-001",
		PlannedQuantity: 10,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidClient)
}

func TestCreateValidatesInput(t *testing.T) {
	svc := setupService(t)
	ctx := clientCtx(100)

	_, err := svc.Create(ctx, domain.CreateWorkOrderRequest{Number: "  ", PlannedQuantity: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidNumber)

	_, err = svc.Create(ctx, domain.CreateWorkOrderRequest{Number: "WO-001", PlannedQuantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.Create(ctx, domain.CreateWorkOrderRequest{Number: "WO-001", PlannedQuantity: 10, ProductID: "not-a-number"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestCreateRejectsDuplicateNumberPerClient(t *testing.T) {
	svc := setupService(t)
	ctx := clientCtx(100)

	_, err := svc.Create(ctx, domain.CreateWorkOrderRequest{Number: "WO-001", PlannedQuantity: 10})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateWorkOrderRequest{Number: "WO-001", PlannedQuantity: 5})
	assert.ErrorIs(t, err, domain.ErrNumberTaken)

	// The same number is free for another client.
	_, err = svc.Create(clientCtx(200), domain.CreateWorkOrderRequest{Number: "WO-001", PlannedQuantity: 5})
	assert.NoError(t, err)
}

func TestGetByIDScopesToClient(t *testing.T) {
	svc := setupService(t)

	created, err := svc.Create(clientCtx(100), domain.CreateWorkOrderRequest{Number: "WO-001", PlannedQuantity: 10})
	require.NoError(t, err)

	got, err := svc.GetByID(clientCtx(100), domain.GetWorkOrderRequest{ID: created.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	// Another client sees nothing, not a permission error.
	_, err = svc.GetByID(clientCtx(200), domain.GetWorkOrderRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateValidatesStatus(t *testing.T) {
	svc := setupService(t)
	ctx := clientCtx(100)

	created, err := svc.Create(ctx, domain.CreateWorkOrderRequest{Number: "WO-001", PlannedQuantity: 10})
	require.NoError(t, err)

	bogus := "shipped"
	_, err = svc.Update(ctx, domain.UpdateWorkOrderRequest{ID: created.ID.String(), Status: &bogus})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	complete := string(domain.StatusComplete)
	actual := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	updated, err := svc.Update(ctx, domain.UpdateWorkOrderRequest{
		ID:                 created.ID.String(),
		Status:             &complete,
		ActualDeliveryDate: &actual,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, updated.Status)
	require.NotNil(t, updated.ActualDeliveryDate)
	assert.True(t, updated.ActualDeliveryDate.Equal(actual))
}

func TestUpdateNeverMovesOrderBetweenClients(t *testing.T) {
	svc := setupService(t)

	created, err := svc.Create(clientCtx(100), domain.CreateWorkOrderRequest{Number: "WO-001", PlannedQuantity: 10})
	require.NoError(t, err)

	qty := int64(20)
	_, err = svc.Update(clientCtx(200), domain.UpdateWorkOrderRequest{ID: created.ID.String(), PlannedQuantity: &qty})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := svc.GetByID(clientCtx(100), domain.GetWorkOrderRequest{ID: created.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.PlannedQuantity)
}

func TestDelete(t *testing.T) {
	svc := setupService(t)
	ctx := clientCtx(100)

	created, err := svc.Create(ctx, domain.CreateWorkOrderRequest{Number: "WO-001", PlannedQuantity: 10})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, domain.GetWorkOrderRequest{ID: created.ID.String()}))

	_, err = svc.GetByID(ctx, domain.GetWorkOrderRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListFiltersAndPaginates(t *testing.T) {
	svc := setupService(t)
	ctx := clientCtx(100)

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, domain.CreateWorkOrderRequest{
			Number:          fmt.Sprintf("WO-%03d", i),
			PlannedQuantity: 10,
		})
		require.NoError(t, err)
	}

	resp, err := svc.List(ctx, domain.ListWorkOrderRequest{PageSize: 3})
	require.NoError(t, err)
	assert.Len(t, resp.WorkOrders, 3)
	assert.True(t, resp.HasMore)
	require.NotEmpty(t, resp.NextPageToken)

	all, err := svc.List(ctx, domain.ListWorkOrderRequest{PageSize: 50})
	require.NoError(t, err)
	assert.Len(t, all.WorkOrders, 5)
	assert.False(t, all.HasMore)

	// Another client's list stays empty.
	other, err := svc.List(clientCtx(200), domain.ListWorkOrderRequest{})
	require.NoError(t, err)
	assert.Empty(t, other.WorkOrders)

	_, err = svc.List(ctx, domain.ListWorkOrderRequest{Status: "shipped"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
