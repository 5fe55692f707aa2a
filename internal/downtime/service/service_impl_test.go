package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/plantpulse/plantpulse/internal/downtime/domain"
	"github.com/plantpulse/plantpulse/internal/downtime/repository"
	workorderdomain "github.com/plantpulse/plantpulse/internal/workorder/domain"
	"github.com/plantpulse/plantpulse/pkg/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.Exec("PRAGMA busy_timeout = 5000").Error)
	require.NoError(t, db.AutoMigrate(&workorderdomain.WorkOrder{}, &domain.DowntimeEntry{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, db, node
}

func clientCtx(id snowflake.ID) context.Context {
	return tenantctx.WithClientID(context.Background(), id)
}

func TestCreateRejectsDowntimeBeyondPlanned(t *testing.T) {
	svc, _, node := setupService(t)

	_, err := svc.Create(clientCtx(node.Generate()), domain.CreateEntryRequest{
		Date:            time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC),
		PlannedMinutes:  480,
		DowntimeMinutes: 500,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMinutes)
}

func TestListFailsClosedOnCrossClientParent(t *testing.T) {
	svc, db, node := setupService(t)
	clientA := node.Generate()
	clientB := node.Generate()

	order := workorderdomain.WorkOrder{
		ID:              node.Generate(),
		ClientID:        clientB,
		Number:          "WO-001",
		Status:          workorderdomain.StatusInProgress,
		PlannedQuantity: 10,
	}
	require.NoError(t, db.Create(&order).Error)

	entry := domain.DowntimeEntry{
		ID:              node.Generate(),
		ClientID:        clientA,
		WorkOrderID:     &order.ID,
		Date:            time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC),
		PlannedMinutes:  480,
		DowntimeMinutes: 60,
		Reason:          "changeover",
	}
	require.NoError(t, db.Create(&entry).Error)

	_, err := svc.List(clientCtx(clientA), domain.ListEntryRequest{})
	assert.ErrorIs(t, err, domain.ErrClientMismatch)

	// Client B's view is untainted and keeps working.
	rows, err := svc.List(clientCtx(clientB), domain.ListEntryRequest{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}
