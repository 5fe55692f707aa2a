package otd

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/plantpulse/plantpulse/internal/clock"
	productiondomain "github.com/plantpulse/plantpulse/internal/production/domain"
	productionrepo "github.com/plantpulse/plantpulse/internal/production/repository"
	workorderdomain "github.com/plantpulse/plantpulse/internal/workorder/domain"
	workorderrepo "github.com/plantpulse/plantpulse/internal/workorder/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func setupEngine(t *testing.T, clk clock.Clock) (*Engine, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.Exec("PRAGMA busy_timeout = 5000").Error)
	require.NoError(t, db.AutoMigrate(&workorderdomain.WorkOrder{}, &productiondomain.ProductionEntry{}))

	if clk == nil {
		clk = clock.NewSystemClock()
	}
	engine := NewEngineForTest(db, clk, DefaultPolicy(), workorderrepo.Provide(), productionrepo.Provide())
	return engine, db
}

type orderSeed struct {
	number    string
	status    workorderdomain.Status
	productID *snowflake.ID
	planned   *time.Time
	required  *time.Time
	actual    *time.Time
}

func seedOrders(t *testing.T, db *gorm.DB, node *snowflake.Node, clientID snowflake.ID, seeds []orderSeed) {
	t.Helper()
	for _, s := range seeds {
		order := workorderdomain.WorkOrder{
			ID:                 node.Generate(),
			ClientID:           clientID,
			Number:             s.number,
			Status:             s.status,
			PlannedQuantity:    10,
			ProductID:          s.productID,
			PlannedShipDate:    s.planned,
			RequiredDate:       s.required,
			ActualDeliveryDate: s.actual,
		}
		require.NoError(t, db.Create(&order).Error)
	}
}

func TestCalculateOTDEmptyWindow(t *testing.T) {
	engine, _ := setupEngine(t, nil)
	node := mustNode(t)

	result, err := engine.CalculateOTD(context.Background(), node.Generate(), date(2025, time.June, 1), date(2025, time.June, 30), nil)
	require.NoError(t, err)

	assert.Equal(t, 0, result.TotalOrders)
	assert.Equal(t, 0, result.OnTime)
	assert.Equal(t, 0, result.Late)
	assert.Equal(t, 0.0, result.Percentage)
}

func TestCalculateOTDRejectsInvertedRange(t *testing.T) {
	engine, _ := setupEngine(t, nil)
	node := mustNode(t)

	_, err := engine.CalculateOTD(context.Background(), node.Generate(), date(2025, time.June, 30), date(2025, time.June, 1), nil)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestCalculateTrueOTDFiltersUnfinishedOrders(t *testing.T) {
	engine, db := setupEngine(t, nil)
	node := mustNode(t)
	clientID := node.Generate()

	seeds := []orderSeed{
		{number: "WO-001", status: workorderdomain.StatusComplete, planned: datePtr(2025, time.June, 10), actual: datePtr(2025, time.June, 9)},
		{number: "WO-002", status: workorderdomain.StatusComplete, planned: datePtr(2025, time.June, 11), actual: datePtr(2025, time.June, 11)},
		{number: "WO-003", status: workorderdomain.StatusComplete, planned: datePtr(2025, time.June, 12), actual: datePtr(2025, time.June, 10)},
		{number: "WO-004", status: workorderdomain.StatusComplete, planned: datePtr(2025, time.June, 13), actual: datePtr(2025, time.June, 20)},
		{number: "WO-005", status: workorderdomain.StatusComplete, planned: datePtr(2025, time.June, 14), actual: datePtr(2025, time.June, 16)},
	}
	for i := 0; i < 5; i++ {
		seeds = append(seeds, orderSeed{
			number:  fmt.Sprintf("WO-1%02d", i),
			status:  workorderdomain.StatusInProgress,
			planned: datePtr(2025, time.June, 15),
		})
	}
	seedOrders(t, db, node, clientID, seeds)

	result, err := engine.CalculateTrueOTD(context.Background(), clientID, date(2025, time.June, 1), date(2025, time.June, 30))
	require.NoError(t, err)

	assert.Equal(t, 5, result.TrueOTD.TotalOrders)
	assert.Equal(t, 3, result.TrueOTD.OnTime)
	assert.Equal(t, 2, result.TrueOTD.Late)
	assert.InDelta(t, 60.0, result.TrueOTD.Percentage, 0.001)

	assert.Equal(t, 10, result.StandardOTD.TotalOrders)
	assert.Equal(t, 5, result.StandardOTD.Pending)
	assert.InDelta(t, 30.0, result.StandardOTD.Percentage, 0.001)
	assert.InDelta(t, 30.0, result.Variance, 0.001)
}

func TestCalculateOTDNeverCrossesClients(t *testing.T) {
	engine, db := setupEngine(t, nil)
	node := mustNode(t)
	clientA := node.Generate()
	clientB := node.Generate()
	productID := node.Generate()

	seedOrders(t, db, node, clientB, []orderSeed{
		{number: "WO-001", status: workorderdomain.StatusComplete, productID: &productID, planned: datePtr(2025, time.June, 10), actual: datePtr(2025, time.June, 9)},
		{number: "WO-002", status: workorderdomain.StatusComplete, productID: &productID, planned: datePtr(2025, time.June, 12), actual: datePtr(2025, time.June, 20)},
	})

	result, err := engine.CalculateOTD(context.Background(), clientA, date(2025, time.June, 1), date(2025, time.June, 30), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalOrders)

	byProduct, err := engine.CalculateOTDByProduct(context.Background(), clientA, date(2025, time.June, 1), date(2025, time.June, 30))
	require.NoError(t, err)
	assert.Equal(t, 0, byProduct.TotalProducts)
	assert.Empty(t, byProduct.Products)
}

func TestCalculateOTDByProductSortsWorstFirst(t *testing.T) {
	engine, db := setupEngine(t, nil)
	node := mustNode(t)
	clientID := node.Generate()
	good := node.Generate()
	bad := node.Generate()

	seedOrders(t, db, node, clientID, []orderSeed{
		{number: "WO-001", status: workorderdomain.StatusComplete, productID: &good, planned: datePtr(2025, time.June, 10), actual: datePtr(2025, time.June, 9)},
		{number: "WO-002", status: workorderdomain.StatusComplete, productID: &good, planned: datePtr(2025, time.June, 11), actual: datePtr(2025, time.June, 10)},
		{number: "WO-003", status: workorderdomain.StatusComplete, productID: &bad, planned: datePtr(2025, time.June, 12), actual: datePtr(2025, time.June, 20)},
		{number: "WO-004", status: workorderdomain.StatusComplete, required: datePtr(2025, time.June, 13), actual: datePtr(2025, time.June, 13)},
	})

	result, err := engine.CalculateOTDByProduct(context.Background(), clientID, date(2025, time.June, 1), date(2025, time.June, 30))
	require.NoError(t, err)

	// The unassigned bucket exists but never counts as a product.
	assert.Equal(t, 2, result.TotalProducts)
	require.Len(t, result.Products, 3)
	assert.Equal(t, bad.String(), result.Products[0].ProductID)
	assert.Equal(t, 0.0, result.Products[0].Percentage)
	assert.Equal(t, 100.0, result.Products[len(result.Products)-1].Percentage)

	// The top-level summary folds every bucket, unassigned included.
	assert.Equal(t, 3, result.Inference.Authoritative)
	assert.Equal(t, 1, result.Inference.Inferred)
	assert.Equal(t, 0, result.Inference.Undetermined)
}

func TestCalculateOTDFiltersByProduct(t *testing.T) {
	engine, db := setupEngine(t, nil)
	node := mustNode(t)
	clientA := node.Generate()
	clientB := node.Generate()
	widget := node.Generate()
	gadget := node.Generate()

	seedOrders(t, db, node, clientA, []orderSeed{
		{number: "WO-001", status: workorderdomain.StatusComplete, productID: &widget, planned: datePtr(2025, time.June, 10), actual: datePtr(2025, time.June, 9)},
		{number: "WO-002", status: workorderdomain.StatusComplete, productID: &widget, planned: datePtr(2025, time.June, 11), actual: datePtr(2025, time.June, 15)},
		{number: "WO-003", status: workorderdomain.StatusComplete, productID: &gadget, planned: datePtr(2025, time.June, 12), actual: datePtr(2025, time.June, 12)},
		{number: "WO-004", status: workorderdomain.StatusComplete, planned: datePtr(2025, time.June, 13), actual: datePtr(2025, time.June, 13)},
	})
	seedOrders(t, db, node, clientB, []orderSeed{
		{number: "WO-001", status: workorderdomain.StatusComplete, productID: &widget, planned: datePtr(2025, time.June, 10), actual: datePtr(2025, time.June, 20)},
	})

	filtered, err := engine.CalculateOTD(context.Background(), clientA, date(2025, time.June, 1), date(2025, time.June, 30), &widget)
	require.NoError(t, err)
	assert.Equal(t, 2, filtered.TotalOrders)
	assert.Equal(t, 1, filtered.OnTime)
	assert.Equal(t, 1, filtered.Late)
	assert.InDelta(t, 50.0, filtered.Percentage, 0.001)

	// The filter never widens the window past the client boundary.
	other, err := engine.CalculateOTD(context.Background(), clientA, date(2025, time.June, 1), date(2025, time.June, 30), &gadget)
	require.NoError(t, err)
	assert.Equal(t, 1, other.TotalOrders)
	assert.Equal(t, 1, other.OnTime)

	unfiltered, err := engine.CalculateOTD(context.Background(), clientA, date(2025, time.June, 1), date(2025, time.June, 30), nil)
	require.NoError(t, err)
	assert.Equal(t, 4, unfiltered.TotalOrders)
}

func TestCalculateOTDTrendBucketsAreInclusive(t *testing.T) {
	engine, db := setupEngine(t, nil)
	node := mustNode(t)
	clientID := node.Generate()

	seedOrders(t, db, node, clientID, []orderSeed{
		{number: "WO-001", status: workorderdomain.StatusComplete, planned: datePtr(2025, time.June, 2), actual: datePtr(2025, time.June, 2)},
		{number: "WO-002", status: workorderdomain.StatusComplete, planned: datePtr(2025, time.June, 3), actual: datePtr(2025, time.June, 5)},
	})

	result, err := engine.CalculateOTDTrend(context.Background(), clientID, date(2025, time.June, 1), date(2025, time.June, 8), IntervalDaily)
	require.NoError(t, err)

	// Seven day span, both endpoints included.
	require.Len(t, result.Buckets, 8)
	assert.Equal(t, date(2025, time.June, 1), result.Buckets[0].Start)
	assert.Equal(t, date(2025, time.June, 8), result.Buckets[7].Start)

	// WO-001 lands on its actual date, WO-002 on its late actual date.
	assert.Equal(t, 1, result.Buckets[1].TotalOrders)
	assert.Equal(t, 1, result.Buckets[1].OnTime)
	assert.Equal(t, 0, result.Buckets[2].TotalOrders)
	assert.Equal(t, 1, result.Buckets[4].TotalOrders)
	assert.Equal(t, 1, result.Buckets[4].Late)
}

func TestCalculateOTDTrendRejectsUnknownInterval(t *testing.T) {
	engine, _ := setupEngine(t, nil)
	node := mustNode(t)

	_, err := engine.CalculateOTDTrend(context.Background(), node.Generate(), date(2025, time.June, 1), date(2025, time.June, 8), Interval("hourly"))
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestCalculateDeliveryVariance(t *testing.T) {
	engine, db := setupEngine(t, nil)
	node := mustNode(t)
	clientID := node.Generate()

	seedOrders(t, db, node, clientID, []orderSeed{
		{number: "WO-001", status: workorderdomain.StatusComplete, planned: datePtr(2025, time.June, 10), actual: datePtr(2025, time.June, 8)},
		{number: "WO-002", status: workorderdomain.StatusComplete, planned: datePtr(2025, time.June, 10), actual: datePtr(2025, time.June, 10)},
		{number: "WO-003", status: workorderdomain.StatusComplete, planned: datePtr(2025, time.June, 10), actual: datePtr(2025, time.June, 13)},
		{number: "WO-004", status: workorderdomain.StatusInProgress, planned: datePtr(2025, time.June, 10)},
	})

	result, err := engine.CalculateDeliveryVariance(context.Background(), clientID, date(2025, time.June, 1), date(2025, time.June, 30), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalOrders)
	assert.Equal(t, 1, result.EarlyDeliveries)
	assert.Equal(t, 1, result.OnTimeDeliveries)
	assert.Equal(t, 1, result.LateDeliveries)
	assert.InDelta(t, 1.0/3.0, result.AverageVarianceDays, 0.001)
}

func TestIdentifyLateOrdersIncludesOverdueUndelivered(t *testing.T) {
	clk := clock.NewFakeClock(date(2025, time.June, 20))
	engine, db := setupEngine(t, clk)
	node := mustNode(t)
	clientID := node.Generate()

	seedOrders(t, db, node, clientID, []orderSeed{
		{number: "WO-001", status: workorderdomain.StatusComplete, planned: datePtr(2025, time.June, 10), actual: datePtr(2025, time.June, 12)},
		{number: "WO-002", status: workorderdomain.StatusInProgress, planned: datePtr(2025, time.June, 15)},
		{number: "WO-003", status: workorderdomain.StatusCancelled, planned: datePtr(2025, time.June, 1)},
		{number: "WO-004", status: workorderdomain.StatusComplete, planned: datePtr(2025, time.June, 10), actual: datePtr(2025, time.June, 10)},
	})

	late, err := engine.IdentifyLateOrders(context.Background(), clientID, date(2025, time.June, 1), date(2025, time.June, 30))
	require.NoError(t, err)

	require.Len(t, late, 2)
	assert.Equal(t, "WO-002", late[0].Number)
	assert.True(t, late[0].Undelivered)
	assert.Equal(t, 5, late[0].DaysLate)
	assert.Equal(t, "WO-001", late[1].Number)
	assert.False(t, late[1].Undelivered)
	assert.Equal(t, 2, late[1].DaysLate)
}

func TestCalculateOTDByWorkOrderLeavesPendingUnjudged(t *testing.T) {
	engine, db := setupEngine(t, nil)
	node := mustNode(t)
	clientID := node.Generate()

	seedOrders(t, db, node, clientID, []orderSeed{
		{number: "WO-001", status: workorderdomain.StatusComplete, planned: datePtr(2025, time.June, 10), actual: datePtr(2025, time.June, 12)},
		{number: "WO-002", status: workorderdomain.StatusInProgress, planned: datePtr(2025, time.June, 15)},
	})

	rows, err := engine.CalculateOTDByWorkOrder(context.Background(), clientID, date(2025, time.June, 1), date(2025, time.June, 30))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	var judged, pending *WorkOrderOTD
	for i := range rows {
		if rows[i].Number == "WO-001" {
			judged = &rows[i]
		} else {
			pending = &rows[i]
		}
	}
	require.NotNil(t, judged)
	require.NotNil(t, pending)

	require.NotNil(t, judged.OnTime)
	assert.False(t, *judged.OnTime)
	require.NotNil(t, judged.VarianceDays)
	assert.Equal(t, 2, *judged.VarianceDays)

	assert.Nil(t, pending.OnTime)
	assert.Nil(t, pending.VarianceDays)
}

func TestCalculateCycleTimeFromProductionEntries(t *testing.T) {
	engine, db := setupEngine(t, nil)
	node := mustNode(t)
	clientID := node.Generate()
	orderID := node.Generate()

	order := workorderdomain.WorkOrder{
		ID:              orderID,
		ClientID:        clientID,
		Number:          "WO-001",
		Status:          workorderdomain.StatusInProgress,
		PlannedQuantity: 100,
	}
	require.NoError(t, db.Create(&order).Error)

	entries := []productiondomain.ProductionEntry{
		{ID: node.Generate(), ClientID: clientID, WorkOrderID: orderID, ShiftDate: date(2025, time.June, 2), UnitsProduced: decimal.NewFromInt(40), UnitsGood: decimal.NewFromInt(38), RunHours: 20},
		{ID: node.Generate(), ClientID: clientID, WorkOrderID: orderID, ShiftDate: date(2025, time.June, 3), UnitsProduced: decimal.NewFromInt(10), UnitsGood: decimal.NewFromInt(10), RunHours: 5},
	}
	for i := range entries {
		require.NoError(t, db.Create(&entries[i]).Error)
	}

	cycle, err := engine.CalculateCycleTime(context.Background(), clientID, orderID)
	require.NoError(t, err)
	require.NotNil(t, cycle)
	assert.InDelta(t, 0.5, cycle.HoursPerUnit, 0.001)
	assert.InDelta(t, 50.0, cycle.UnitsProduced, 0.001)
	assert.InDelta(t, 25.0, cycle.RunHours, 0.001)
}

func TestCalculateLeadTime(t *testing.T) {
	engine, db := setupEngine(t, nil)
	node := mustNode(t)
	clientID := node.Generate()
	orderID := node.Generate()

	order := workorderdomain.WorkOrder{
		ID:                 orderID,
		ClientID:           clientID,
		Number:             "WO-001",
		Status:             workorderdomain.StatusComplete,
		PlannedQuantity:    10,
		ActualDeliveryDate: datePtr(2025, time.June, 11),
		CreatedAt:          date(2025, time.June, 1),
	}
	require.NoError(t, db.Create(&order).Error)

	lead, err := engine.CalculateLeadTime(context.Background(), clientID, orderID)
	require.NoError(t, err)
	require.NotNil(t, lead)
	assert.InDelta(t, 10.0, lead.Days, 0.001)

	missing, err := engine.CalculateLeadTime(context.Background(), clientID, node.Generate())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
