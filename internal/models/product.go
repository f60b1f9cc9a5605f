package models

// Product is a seeded catalog entry. The running system never mutates or
// deletes products; invoices snapshot the price at creation time instead of
// following later changes.
type Product struct {
	ID    uint    `gorm:"primaryKey" json:"id"`
	Name  string  `gorm:"size:255;not null" json:"name"`
	Price float64 `gorm:"not null" json:"price"`
}
