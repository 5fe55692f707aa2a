package otd

import (
	"time"

	workorderdomain "github.com/plantpulse/plantpulse/internal/workorder/domain"
)

// Source tags where an inferred planned-delivery date came from.
type Source string

const (
	SourcePlannedShipDate Source = "planned_ship_date"
	SourceRequiredDate    Source = "required_date"
	SourceCalculated      Source = "calculated"
	SourceNone            Source = "none"
)

// Confidence scores are fixed per source; each source maps to exactly one
// score so the two fields can never disagree.
const (
	ConfidenceExact         = 1.0
	ConfidenceRequiredDate  = 0.8
	ConfidenceCycleDerived  = 0.5
	ConfidenceLeadTimeGuess = 0.3
	ConfidenceNone          = 0.0
)

// InferredDate is the resolved planned-delivery date for a work order plus
// its provenance. Date is nil exactly when Source is SourceNone.
type InferredDate struct {
	Date       *time.Time `json:"date,omitempty"`
	IsInferred bool       `json:"is_inferred"`
	Source     Source     `json:"inference_source"`
	Confidence float64    `json:"confidence_score"`
}

// DefaultLeadTime projects a delivery date from the planned start when the
// order carries no cycle time at all. Seven days is a deliberate, documented
// choice; override it through Policy.
const DefaultLeadTime = 7 * 24 * time.Hour

// Policy is the immutable tuning for the OTD engine. Pass it by value;
// there is no package-level mutable state.
type Policy struct {
	// DefaultLeadTime is added to the planned start when no cycle time is
	// available. Zero means use the package default.
	DefaultLeadTime time.Duration
	// Grace widens the on-time comparison: on time iff actual <= planned+Grace.
	// Zero keeps the strict comparison.
	Grace time.Duration
}

// DefaultPolicy returns the strict policy: seven-day lead-time fallback and
// no grace period.
func DefaultPolicy() Policy {
	return Policy{DefaultLeadTime: DefaultLeadTime}
}

func (p Policy) leadTime() time.Duration {
	if p.DefaultLeadTime > 0 {
		return p.DefaultLeadTime
	}
	return DefaultLeadTime
}

// Infer resolves the planned-delivery date for a work order through an
// ordered fallback chain. Missing data is never an error: a single ragged
// work order among thousands must not halt a batch aggregation, so absence
// is encoded in the return value.
func (p Policy) Infer(order workorderdomain.WorkOrder) InferredDate {
	if order.PlannedShipDate != nil {
		return InferredDate{
			Date:       order.PlannedShipDate,
			IsInferred: false,
			Source:     SourcePlannedShipDate,
			Confidence: ConfidenceExact,
		}
	}

	if order.RequiredDate != nil {
		return InferredDate{
			Date:       order.RequiredDate,
			IsInferred: true,
			Source:     SourceRequiredDate,
			Confidence: ConfidenceRequiredDate,
		}
	}

	if order.PlannedStartDate != nil {
		if cycle, ok := cycleTimeHours(order); ok {
			hours := cycle * float64(order.PlannedQuantity)
			date := order.PlannedStartDate.Add(time.Duration(hours * float64(time.Hour)))
			return InferredDate{
				Date:       &date,
				IsInferred: true,
				Source:     SourceCalculated,
				Confidence: ConfidenceCycleDerived,
			}
		}

		date := order.PlannedStartDate.Add(p.leadTime())
		return InferredDate{
			Date:       &date,
			IsInferred: true,
			Source:     SourceCalculated,
			Confidence: ConfidenceLeadTimeGuess,
		}
	}

	return InferredDate{
		IsInferred: false,
		Source:     SourceNone,
		Confidence: ConfidenceNone,
	}
}

// cycleTimeHours prefers the engineering cycle time and falls back to the
// measured one.
func cycleTimeHours(order workorderdomain.WorkOrder) (float64, bool) {
	if order.IdealCycleTime != nil && *order.IdealCycleTime > 0 {
		return *order.IdealCycleTime, true
	}
	if order.CalculatedCycleTime != nil && *order.CalculatedCycleTime > 0 {
		return *order.CalculatedCycleTime, true
	}
	return 0, false
}

// onTime reports whether an actual delivery meets the planned date under
// this policy's grace period.
func (p Policy) onTime(actual, planned time.Time) bool {
	return !actual.After(planned.Add(p.Grace))
}
