package otd

import (
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	workorderdomain "github.com/plantpulse/plantpulse/internal/workorder/domain"
)

// UnassignedProductKey groups work orders that carry no product reference.
// Those orders still count toward their own bucket but not toward
// TotalProducts.
const UnassignedProductKey = "unassigned"

// ProductOTD is one product's slice of the metric.
type ProductOTD struct {
	ProductID string `json:"product_id"`
	OTDResult
}

// ByProductResult breaks the metric down per product. TotalProducts counts
// real products only, never the unassigned bucket. Inference sums the
// per-product summaries so callers can judge the whole window at a glance.
type ByProductResult struct {
	TotalProducts int              `json:"total_products"`
	Products      []ProductOTD     `json:"products"`
	Inference     InferenceSummary `json:"inference"`
}

// CalculateOTDByProduct partitions the window's orders by product and
// aggregates each partition independently. Results come back sorted worst
// percentage first so the problem products lead.
func (e *Engine) CalculateOTDByProduct(ctx context.Context, clientID snowflake.ID, from, to time.Time) (ByProductResult, error) {
	if from.After(to) {
		return ByProductResult{}, ErrInvalidDateRange
	}

	orders, err := e.orders.DeliveryWindow(ctx, e.db, clientID, from, to, nil)
	if err != nil {
		return ByProductResult{}, err
	}

	groups := make(map[string][]*workorderdomain.WorkOrder)
	for _, order := range orders {
		key := UnassignedProductKey
		if order.ProductID != nil {
			key = order.ProductID.String()
		}
		groups[key] = append(groups[key], order)
	}

	result := ByProductResult{Products: []ProductOTD{}}
	for key, group := range groups {
		entry := ProductOTD{ProductID: key}
		entry.OTDResult = e.aggregate(ctx, group, nil)
		result.Products = append(result.Products, entry)
		result.Inference.Authoritative += entry.Inference.Authoritative
		result.Inference.Inferred += entry.Inference.Inferred
		result.Inference.Undetermined += entry.Inference.Undetermined
		if key != UnassignedProductKey {
			result.TotalProducts++
		}
	}

	sort.Slice(result.Products, func(i, j int) bool {
		a, b := result.Products[i], result.Products[j]
		if a.Percentage != b.Percentage {
			return a.Percentage < b.Percentage
		}
		return a.ProductID < b.ProductID
	})

	return result, nil
}
