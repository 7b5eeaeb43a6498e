package reports

import (
	"context"
	"fmt"

	"github.com/comandahq/comanda/internal/sales"
	"github.com/comandahq/comanda/pkg/enums"
	"github.com/shopspring/decimal"
)

// LedgerReader is the read-only slice of the ledger the reports need.
type LedgerReader interface {
	AllOrders() []sales.Order
}

// Summary is the one-pass aggregation over the whole order history.
type Summary struct {
	TotalOrders     int
	PaidOrders      int
	ActiveOrders    int
	CancelledOrders int
	Revenue         decimal.Decimal
	DiscountGiven   decimal.Decimal
	PaidLines       int
	ActiveLines     int
}

// CategoryRevenue pairs a snapshot category with its accumulated
// post-discount revenue from paid orders.
type CategoryRevenue struct {
	Category string
	Revenue  decimal.Decimal
}

// Service derives reports from the order ledger. It never mutates state.
type Service interface {
	Summarize(ctx context.Context) (Summary, error)
	RevenueByCategory(ctx context.Context) ([]CategoryRevenue, error)
}

type service struct {
	ledger LedgerReader
}

// NewService builds a reporting service over the given ledger.
func NewService(ledger LedgerReader) (Service, error) {
	if ledger == nil {
		return nil, fmt.Errorf("ledger reader required")
	}
	return &service{ledger: ledger}, nil
}

func (s *service) Summarize(ctx context.Context) (Summary, error) {
	summary := Summary{
		Revenue:       decimal.Zero,
		DiscountGiven: decimal.Zero,
	}
	for _, order := range s.ledger.AllOrders() {
		summary.TotalOrders++
		switch order.Status {
		case enums.OrderStatusCancelled:
			summary.CancelledOrders++
		case enums.OrderStatusPaid:
			summary.PaidOrders++
			summary.Revenue = summary.Revenue.Add(order.Total())
			summary.DiscountGiven = summary.DiscountGiven.Add(order.DiscountGiven())
			summary.PaidLines += len(order.Lines)
		default:
			summary.ActiveOrders++
			summary.ActiveLines += len(order.Lines)
		}
	}
	return summary, nil
}

// RevenueByCategory groups the post-discount subtotals of paid orders by the
// category captured in each line's snapshot. Categories are compared exactly
// and listed in first-seen order.
func (s *service) RevenueByCategory(ctx context.Context) ([]CategoryRevenue, error) {
	totals := map[string]decimal.Decimal{}
	var order []string

	for _, o := range s.ledger.AllOrders() {
		if o.Status != enums.OrderStatusPaid {
			continue
		}
		for _, line := range o.Lines {
			if _, seen := totals[line.Category]; !seen {
				order = append(order, line.Category)
			}
			totals[line.Category] = totals[line.Category].Add(line.Subtotal())
		}
	}

	result := make([]CategoryRevenue, 0, len(order))
	for _, category := range order {
		result = append(result, CategoryRevenue{Category: category, Revenue: totals[category]})
	}
	return result, nil
}
