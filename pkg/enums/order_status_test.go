package enums

import "testing"

func TestOrderStatusIsValid(t *testing.T) {
	for _, status := range []OrderStatus{OrderStatusActive, OrderStatusPaid, OrderStatusCancelled} {
		if !status.IsValid() {
			t.Fatalf("expected %s to be valid", status)
		}
	}
	if OrderStatus("refunded").IsValid() {
		t.Fatalf("unknown status must be invalid")
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	if OrderStatusActive.IsTerminal() {
		t.Fatalf("active is not terminal")
	}
	if !OrderStatusPaid.IsTerminal() || !OrderStatusCancelled.IsTerminal() {
		t.Fatalf("paid and cancelled are terminal")
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("paid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != OrderStatusPaid {
		t.Fatalf("expected paid, got %s", status)
	}
	if _, err := ParseOrderStatus("PAID"); err == nil {
		t.Fatalf("parse accepts lowercase values only")
	}
}
