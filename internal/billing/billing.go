// Package billing holds the money arithmetic shared by the order service and
// the receipt formatter. Tax and service charge are exact fractions of the
// unrounded subtotal; rounding to two decimals happens only at presentation.
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/mesa-labs/mesa/internal/entity"
)

var (
	// TaxRate is the fixed 10% tax applied at close.
	TaxRate = decimal.NewFromFloat(0.10)
	// ServiceChargeRate is the fixed 5% service charge applied at close.
	ServiceChargeRate = decimal.NewFromFloat(0.05)
)

// LineSubtotal computes quantity × unit price for a single line.
func LineSubtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Subtotal sums item subtotals.
func Subtotal(items []*entity.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// Totals is the settlement breakdown of an order.
type Totals struct {
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	ServiceCharge decimal.Decimal
	GrandTotal    decimal.Decimal
}

// Settle derives tax, service charge and the grand total from a subtotal.
func Settle(subtotal decimal.Decimal) Totals {
	tax := subtotal.Mul(TaxRate)
	service := subtotal.Mul(ServiceChargeRate)
	return Totals{
		Subtotal:      subtotal,
		Tax:           tax,
		ServiceCharge: service,
		GrandTotal:    subtotal.Add(tax).Add(service),
	}
}

// MergeResult describes the outcome of de-duplicating order lines.
type MergeResult struct {
	// Kept are the surviving lines in their original order, with quantities
	// and subtotals updated for merged groups.
	Kept []*entity.OrderItem
	// RemovedIDs are ids of duplicate rows absorbed into a survivor.
	RemovedIDs []int64
}

// MergeDuplicates folds lines sharing a food id into the first line of each
// group: quantity is summed, the first line's unit price and special
// instructions win, and the subtotal is recomputed. Later duplicates are
// reported for deletion. Items are never merged at add-time; settlement is
// the only point where batches collapse.
func MergeDuplicates(items []*entity.OrderItem) MergeResult {
	result := MergeResult{Kept: make([]*entity.OrderItem, 0, len(items))}

	firstByFood := make(map[int64]*entity.OrderItem, len(items))
	for _, item := range items {
		first, seen := firstByFood[item.FoodID]
		if !seen {
			firstByFood[item.FoodID] = item
			result.Kept = append(result.Kept, item)
			continue
		}
		first.Quantity += item.Quantity
		first.Subtotal = LineSubtotal(first.UnitPrice, first.Quantity)
		result.RemovedIDs = append(result.RemovedIDs, item.ID)
	}

	return result
}
