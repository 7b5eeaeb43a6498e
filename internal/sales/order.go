package sales

import (
	"time"

	"github.com/comandahq/comanda/pkg/enums"
	"github.com/shopspring/decimal"
)

// OrderLine is one menu item snapshot plus quantity and discount inside an
// order. The name, category and unit price are copied from the catalog at
// order time, so later menu edits never alter order history.
type OrderLine struct {
	Name            string
	Category        string
	UnitPrice       decimal.Decimal
	Quantity        int
	DiscountPercent float64
}

// OriginalSubtotal is the pre-discount line value.
func (l OrderLine) OriginalSubtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Subtotal applies the line discount to the original subtotal.
func (l OrderLine) Subtotal() decimal.Decimal {
	factor := decimal.NewFromInt(100).
		Sub(decimal.NewFromFloat(l.DiscountPercent)).
		Div(decimal.NewFromInt(100))
	return l.OriginalSubtotal().Mul(factor)
}

// SetDiscount stores the percentage. Values outside [0,100] leave the line
// unchanged; the caller gets no error either way.
func (l *OrderLine) SetDiscount(percent float64) {
	if percent < 0 || percent > 100 {
		return
	}
	l.DiscountPercent = percent
}

// Order is one customer transaction. The ID is allocated by the ledger and
// never reused.
type Order struct {
	ID        int
	Lines     []OrderLine
	Status    enums.OrderStatus
	CreatedAt time.Time
	PaidAt    *time.Time
}

// Total sums the post-discount line subtotals.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// OriginalTotal sums the pre-discount line subtotals.
func (o Order) OriginalTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.OriginalSubtotal())
	}
	return total
}

// DiscountGiven is the amount the order's discounts removed from the bill.
func (o Order) DiscountGiven() decimal.Decimal {
	return o.OriginalTotal().Sub(o.Total())
}

func (o *Order) markPaid(now time.Time) {
	o.Status = enums.OrderStatusPaid
	if o.PaidAt == nil {
		paidAt := now
		o.PaidAt = &paidAt
	}
}

// cancel clears the lines permanently; the ID and timestamps remain.
func (o *Order) cancel() {
	o.Status = enums.OrderStatusCancelled
	o.Lines = nil
}

// clone returns an independent copy so callers cannot mutate ledger state.
func (o Order) clone() Order {
	lines := make([]OrderLine, len(o.Lines))
	copy(lines, o.Lines)
	o.Lines = lines
	if o.PaidAt != nil {
		paidAt := *o.PaidAt
		o.PaidAt = &paidAt
	}
	return o
}
