package formulas

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestEfficiency(t *testing.T) {
	assert.InDelta(t, 95.0, Efficiency(d(95), d(100)), 0.001)
	assert.Equal(t, 0.0, Efficiency(d(95), d(0)))
	// More good than produced is bad data, not a bonus.
	assert.Equal(t, 100.0, Efficiency(d(120), d(100)))
}

func TestPerformance(t *testing.T) {
	// 8 run hours at 0.1 h/unit allows 80 units; 60 produced is 75%.
	assert.InDelta(t, 75.0, Performance(d(60), 8, 0.1), 0.001)
	assert.Equal(t, 0.0, Performance(d(60), 0, 0.1))
	assert.Equal(t, 0.0, Performance(d(60), 8, 0))
	assert.Equal(t, 100.0, Performance(d(100), 8, 0.1))
}

func TestAvailability(t *testing.T) {
	assert.InDelta(t, 87.5, Availability(480, 60), 0.001)
	assert.Equal(t, 0.0, Availability(0, 60))
	// Downtime exceeding the plan floors at zero.
	assert.Equal(t, 0.0, Availability(480, 600))
}

func TestOEE(t *testing.T) {
	assert.InDelta(t, 72.0, OEE(90, 80, 100), 0.001)
	assert.Equal(t, 0.0, OEE(0, 80, 100))
}

func TestPPM(t *testing.T) {
	assert.InDelta(t, 5000.0, PPM(d(5), d(1000)), 0.001)
	assert.Equal(t, 0.0, PPM(d(5), d(0)))
}

func TestDPMO(t *testing.T) {
	// 12 defects across 1000 units with 4 opportunities each.
	assert.InDelta(t, 3000.0, DPMO(12, d(1000), 4), 0.001)
	assert.Equal(t, 0.0, DPMO(12, d(0), 4))
	assert.Equal(t, 0.0, DPMO(12, d(1000), 0))
}

func TestFPYAndRTY(t *testing.T) {
	assert.InDelta(t, 0.95, FPY(d(95), d(100)), 0.001)
	assert.Equal(t, 0.0, FPY(d(95), d(0)))

	assert.InDelta(t, 0.9*0.95*0.98, RTY([]float64{0.9, 0.95, 0.98}), 0.0001)
	assert.Equal(t, 0.0, RTY(nil))
}

func TestAbsenteeism(t *testing.T) {
	assert.InDelta(t, 5.0, Absenteeism(40, 800), 0.001)
	assert.Equal(t, 0.0, Absenteeism(40, 0))
}
