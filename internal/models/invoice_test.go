package models

import (
	"testing"
)

func TestFormatInvoiceNo(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{1, "INV-001"},
		{2, "INV-002"},
		{42, "INV-042"},
		{999, "INV-999"},
		{1000, "INV-1000"}, // width widens, never wraps
		{12345, "INV-12345"},
	}

	for _, tt := range tests {
		if got := FormatInvoiceNo(tt.n); got != tt.want {
			t.Errorf("FormatInvoiceNo(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestInvoice_ItemsSubtotal(t *testing.T) {
	invoice := &Invoice{
		Items: []InvoiceItem{
			{Quantity: 2, UnitPrice: 100, Subtotal: 200},
			{Quantity: 1, UnitPrice: 250, Subtotal: 250},
		},
	}
	if got := invoice.ItemsSubtotal(); got != 450 {
		t.Errorf("ItemsSubtotal() = %f, want 450", got)
	}

	empty := &Invoice{}
	if got := empty.ItemsSubtotal(); got != 0 {
		t.Errorf("ItemsSubtotal() on empty invoice = %f, want 0", got)
	}
}
