package sales

import (
	"testing"
	"time"

	"github.com/comandahq/comanda/pkg/enums"
	"github.com/shopspring/decimal"
)

func TestOrderLineSubtotals(t *testing.T) {
	line := OrderLine{
		Name:      "Pasta",
		Category:  "Mains",
		UnitPrice: decimal.RequireFromString("12.50"),
		Quantity:  2,
	}

	if !line.OriginalSubtotal().Equal(decimal.RequireFromString("25")) {
		t.Fatalf("expected original subtotal 25, got %s", line.OriginalSubtotal())
	}
	if !line.Subtotal().Equal(line.OriginalSubtotal()) {
		t.Fatalf("no discount means subtotal equals original")
	}

	line.SetDiscount(50)
	if !line.Subtotal().Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("expected discounted subtotal 12.5, got %s", line.Subtotal())
	}
}

func TestSetDiscountIgnoresOutOfRange(t *testing.T) {
	line := OrderLine{UnitPrice: decimal.NewFromInt(10), Quantity: 1, DiscountPercent: 25}

	for _, percent := range []float64{-1, 100.5, 200} {
		line.SetDiscount(percent)
		if line.DiscountPercent != 25 {
			t.Fatalf("discount %v must leave the line unchanged, got %v", percent, line.DiscountPercent)
		}
	}

	for _, percent := range []float64{0, 100, 12.5} {
		line.SetDiscount(percent)
		if line.DiscountPercent != percent {
			t.Fatalf("discount %v should be accepted, got %v", percent, line.DiscountPercent)
		}
	}
}

func TestOrderTotals(t *testing.T) {
	order := Order{
		ID:     1,
		Status: enums.OrderStatusActive,
		Lines: []OrderLine{
			{UnitPrice: decimal.NewFromInt(10), Quantity: 2, DiscountPercent: 50},
			{UnitPrice: decimal.NewFromInt(5), Quantity: 1},
		},
	}

	if !order.OriginalTotal().Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected original total 25, got %s", order.OriginalTotal())
	}
	if !order.Total().Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected total 15, got %s", order.Total())
	}
	if !order.DiscountGiven().Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected discount given 10, got %s", order.DiscountGiven())
	}
}

func TestCancelClearsLinesPermanently(t *testing.T) {
	order := Order{
		ID:     3,
		Status: enums.OrderStatusActive,
		Lines: []OrderLine{
			{UnitPrice: decimal.NewFromInt(10), Quantity: 1},
			{UnitPrice: decimal.NewFromInt(4), Quantity: 2},
			{UnitPrice: decimal.NewFromInt(2), Quantity: 3},
		},
	}

	order.cancel()

	if order.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", order.Status)
	}
	if len(order.Lines) != 0 {
		t.Fatalf("cancellation must clear the lines")
	}
	if !order.Total().IsZero() {
		t.Fatalf("cancelled order total must be zero")
	}
	if order.ID != 3 {
		t.Fatalf("cancellation must keep the ID")
	}
}

func TestMarkPaidStampsOnce(t *testing.T) {
	order := Order{ID: 1, Status: enums.OrderStatusActive}

	first := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	order.markPaid(first)
	order.markPaid(first.Add(time.Hour))

	if order.PaidAt == nil || !order.PaidAt.Equal(first) {
		t.Fatalf("payment timestamp must be set once, got %v", order.PaidAt)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	paidAt := time.Now()
	order := Order{
		ID:     2,
		Status: enums.OrderStatusPaid,
		PaidAt: &paidAt,
		Lines:  []OrderLine{{UnitPrice: decimal.NewFromInt(10), Quantity: 1}},
	}

	copied := order.clone()
	copied.Lines[0].Quantity = 99
	*copied.PaidAt = paidAt.Add(time.Hour)

	if order.Lines[0].Quantity != 1 {
		t.Fatalf("clone must not share line storage")
	}
	if !order.PaidAt.Equal(paidAt) {
		t.Fatalf("clone must not share the payment timestamp")
	}
}
