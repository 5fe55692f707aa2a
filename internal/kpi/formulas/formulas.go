// Package formulas holds the arithmetic manufacturing KPI definitions.
// Every function is pure, returns a percentage or rate as float64, and
// yields 0 instead of dividing by zero so a quiet shift never faults a
// report.
package formulas

import "github.com/shopspring/decimal"

// Efficiency is good units over total units produced, as a percentage.
func Efficiency(unitsGood, unitsProduced decimal.Decimal) float64 {
	return ratioPercent(unitsGood, unitsProduced)
}

// Performance compares actual output against the theoretical output for
// the hours actually run. idealCycleTime is hours per unit.
func Performance(unitsProduced decimal.Decimal, runHours, idealCycleTime float64) float64 {
	if runHours <= 0 || idealCycleTime <= 0 {
		return 0
	}
	produced, _ := unitsProduced.Float64()
	theoretical := runHours / idealCycleTime
	return clampPercent(produced / theoretical * 100)
}

// Availability is run time over planned time, as a percentage.
func Availability(plannedMinutes, downtimeMinutes float64) float64 {
	if plannedMinutes <= 0 {
		return 0
	}
	run := plannedMinutes - downtimeMinutes
	if run < 0 {
		run = 0
	}
	return run / plannedMinutes * 100
}

// QualityRate is first-pass units over inspected units, as a percentage.
func QualityRate(unitsFirstPass, unitsInspected decimal.Decimal) float64 {
	return ratioPercent(unitsFirstPass, unitsInspected)
}

// OEE composes availability, performance and quality. Inputs are
// percentages; the result is a percentage.
func OEE(availability, performance, quality float64) float64 {
	return availability / 100 * performance / 100 * quality / 100 * 100
}

// PPM is defective parts per million inspected.
func PPM(unitsDefective, unitsInspected decimal.Decimal) float64 {
	if !unitsInspected.IsPositive() {
		return 0
	}
	defective, _ := unitsDefective.Float64()
	inspected, _ := unitsInspected.Float64()
	return defective / inspected * 1_000_000
}

// DPMO is defects per million opportunities. opportunities is the number
// of defect opportunities per unit.
func DPMO(defectCount int64, unitsInspected decimal.Decimal, opportunities int64) float64 {
	inspected, _ := unitsInspected.Float64()
	if inspected <= 0 || opportunities <= 0 {
		return 0
	}
	return float64(defectCount) / (inspected * float64(opportunities)) * 1_000_000
}

// FPY is the first pass yield of a single stage, as a fraction in [0,1].
func FPY(unitsFirstPass, unitsInspected decimal.Decimal) float64 {
	return ratioPercent(unitsFirstPass, unitsInspected) / 100
}

// RTY is the rolled throughput yield: the product of per-stage first pass
// yields, as a fraction in [0,1]. An empty stage list yields 0.
func RTY(stageYields []float64) float64 {
	if len(stageYields) == 0 {
		return 0
	}
	rty := 1.0
	for _, y := range stageYields {
		rty *= y
	}
	return rty
}

// Absenteeism is absent hours over scheduled hours, as a percentage.
func Absenteeism(absentHours, scheduledHours float64) float64 {
	if scheduledHours <= 0 {
		return 0
	}
	return absentHours / scheduledHours * 100
}

func ratioPercent(part, total decimal.Decimal) float64 {
	if !total.IsPositive() {
		return 0
	}
	ratio, _ := part.Div(total).Float64()
	return clampPercent(ratio * 100)
}

// clampPercent caps at 100 so bad data never reports better-than-perfect.
func clampPercent(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}
