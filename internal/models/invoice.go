package models

import (
	"fmt"
	"time"
)

// Invoice is a billed document composed of line items. Invoices are created
// and deleted as a whole; there is no editing after creation.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	InvoiceNo string    `gorm:"size:50;uniqueIndex;not null" json:"invoice_no"`
	IssueDate time.Time `gorm:"not null" json:"issue_date"`
	DueDate   time.Time `gorm:"not null" json:"due_date"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	// Address is copied from the client at creation time so that later
	// catalog changes never alter a historical invoice.
	Address string `gorm:"size:500;not null" json:"address"`

	Tax   float64 `gorm:"not null" json:"tax"`
	Total float64 `gorm:"not null" json:"total"`

	CreatedAt time.Time `json:"created_at"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

// ItemsSubtotal sums the line subtotals, excluding tax.
func (i *Invoice) ItemsSubtotal() float64 {
	var sum float64
	for _, item := range i.Items {
		sum += item.Subtotal
	}
	return sum
}

// InvoiceItem is a line on an invoice. UnitPrice is a snapshot of the
// product price at creation time; Subtotal is Quantity * UnitPrice.
type InvoiceItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	InvoiceID uint `gorm:"index;not null" json:"invoice_id"`

	ProductID uint     `gorm:"not null" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
	Subtotal  float64 `gorm:"not null" json:"subtotal"`
}

// InvoiceSequence is the single-row counter backing invoice numbering.
// The row is incremented inside the invoice creation transaction, so a
// rollback also rolls the counter back. Numbers of deleted invoices stay
// retired.
type InvoiceSequence struct {
	ID        uint  `gorm:"primaryKey"`
	LastValue int64 `gorm:"not null"`
}

// FormatInvoiceNo renders a sequence value as a human-readable invoice
// number, e.g. "INV-001". The width grows past 999 ("INV-1000") instead of
// wrapping or truncating.
func FormatInvoiceNo(n int64) string {
	return fmt.Sprintf("INV-%03d", n)
}
