package otd

import (
	"testing"
	"time"

	workorderdomain "github.com/plantpulse/plantpulse/internal/workorder/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func floatPtr(v float64) *float64 { return &v }

func TestInferPlannedShipDateIsAuthoritative(t *testing.T) {
	policy := DefaultPolicy()

	inferred := policy.Infer(workorderdomain.WorkOrder{
		PlannedShipDate: datePtr(2025, time.June, 10),
		RequiredDate:    datePtr(2025, time.July, 1),
	})

	require.NotNil(t, inferred.Date)
	assert.Equal(t, date(2025, time.June, 10), *inferred.Date)
	assert.False(t, inferred.IsInferred)
	assert.Equal(t, SourcePlannedShipDate, inferred.Source)
	assert.Equal(t, ConfidenceExact, inferred.Confidence)
}

func TestInferFallsBackToRequiredDate(t *testing.T) {
	policy := DefaultPolicy()

	inferred := policy.Infer(workorderdomain.WorkOrder{
		RequiredDate: datePtr(2025, time.July, 1),
	})

	require.NotNil(t, inferred.Date)
	assert.Equal(t, date(2025, time.July, 1), *inferred.Date)
	assert.True(t, inferred.IsInferred)
	assert.Equal(t, SourceRequiredDate, inferred.Source)
	assert.Equal(t, ConfidenceRequiredDate, inferred.Confidence)
}

func TestInferDerivesFromCycleTime(t *testing.T) {
	policy := DefaultPolicy()

	inferred := policy.Infer(workorderdomain.WorkOrder{
		PlannedStartDate: datePtr(2025, time.January, 1),
		IdealCycleTime:   floatPtr(2.0),
		PlannedQuantity:  100,
	})

	require.NotNil(t, inferred.Date)
	// 200 hours past the start.
	assert.Equal(t, date(2025, time.January, 1).Add(200*time.Hour), *inferred.Date)
	assert.True(t, inferred.IsInferred)
	assert.Equal(t, SourceCalculated, inferred.Source)
	assert.Equal(t, ConfidenceCycleDerived, inferred.Confidence)
}

func TestInferPrefersIdealOverCalculatedCycleTime(t *testing.T) {
	policy := DefaultPolicy()

	inferred := policy.Infer(workorderdomain.WorkOrder{
		PlannedStartDate:    datePtr(2025, time.January, 1),
		IdealCycleTime:      floatPtr(1.0),
		CalculatedCycleTime: floatPtr(4.0),
		PlannedQuantity:     10,
	})

	require.NotNil(t, inferred.Date)
	assert.Equal(t, date(2025, time.January, 1).Add(10*time.Hour), *inferred.Date)
}

func TestInferUsesMeasuredCycleTimeWhenIdealMissing(t *testing.T) {
	policy := DefaultPolicy()

	inferred := policy.Infer(workorderdomain.WorkOrder{
		PlannedStartDate:    datePtr(2025, time.January, 1),
		CalculatedCycleTime: floatPtr(4.0),
		PlannedQuantity:     10,
	})

	require.NotNil(t, inferred.Date)
	assert.Equal(t, date(2025, time.January, 1).Add(40*time.Hour), *inferred.Date)
	assert.Equal(t, ConfidenceCycleDerived, inferred.Confidence)
}

func TestInferAppliesDefaultLeadTimeWithoutCycleTime(t *testing.T) {
	policy := DefaultPolicy()

	inferred := policy.Infer(workorderdomain.WorkOrder{
		PlannedStartDate: datePtr(2025, time.January, 1),
		PlannedQuantity:  100,
	})

	require.NotNil(t, inferred.Date)
	assert.Equal(t, date(2025, time.January, 8), *inferred.Date)
	assert.True(t, inferred.IsInferred)
	assert.Equal(t, SourceCalculated, inferred.Source)
	assert.Equal(t, ConfidenceLeadTimeGuess, inferred.Confidence)
}

func TestInferZeroCycleTimeFallsBackToLeadTime(t *testing.T) {
	policy := DefaultPolicy()

	inferred := policy.Infer(workorderdomain.WorkOrder{
		PlannedStartDate: datePtr(2025, time.January, 1),
		IdealCycleTime:   floatPtr(0),
		PlannedQuantity:  100,
	})

	require.NotNil(t, inferred.Date)
	assert.Equal(t, ConfidenceLeadTimeGuess, inferred.Confidence)
}

func TestInferNoDatesAtAll(t *testing.T) {
	policy := DefaultPolicy()

	inferred := policy.Infer(workorderdomain.WorkOrder{PlannedQuantity: 5})

	assert.Nil(t, inferred.Date)
	assert.False(t, inferred.IsInferred)
	assert.Equal(t, SourceNone, inferred.Source)
	assert.Equal(t, ConfidenceNone, inferred.Confidence)
}

func TestOnTimeComparison(t *testing.T) {
	policy := DefaultPolicy()
	planned := date(2025, time.June, 10)

	assert.True(t, policy.onTime(date(2025, time.June, 9), planned))
	assert.True(t, policy.onTime(planned, planned))
	assert.False(t, policy.onTime(date(2025, time.June, 11), planned))
}

func TestOnTimeWithGrace(t *testing.T) {
	policy := DefaultPolicy()
	policy.Grace = 48 * time.Hour
	planned := date(2025, time.June, 10)

	assert.True(t, policy.onTime(date(2025, time.June, 12), planned))
	assert.False(t, policy.onTime(date(2025, time.June, 13), planned))
}
