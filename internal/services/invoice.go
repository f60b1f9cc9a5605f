package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tmoreau/go-billing/internal/models"
)

// sequenceRowID is the id of the single invoice_sequences row.
const sequenceRowID = 1

// InvoiceService owns the invoice lifecycle: creation (numbering and total
// computation), retrieval, listing, and deletion. It resolves prices and
// client snapshots through the catalog at creation time.
type InvoiceService struct {
	db      *gorm.DB
	catalog *CatalogService
}

func NewInvoiceService(db *gorm.DB, catalog *CatalogService) *InvoiceService {
	return &InvoiceService{db: db, catalog: catalog}
}

type CreateInvoiceItemInput struct {
	ProductID uint
	Quantity  int
}

type CreateInvoiceInput struct {
	ClientID  uint
	IssueDate time.Time
	DueDate   time.Time
	Tax       float64
	Items     []CreateInvoiceItemInput
}

// Create validates, computes, and persists a new invoice as one transaction.
// All validation runs before any write, so a rejected request never consumes
// an invoice number. Returns the invoice as GetByID would.
func (s *InvoiceService) Create(ctx context.Context, in CreateInvoiceInput) (*models.Invoice, error) {
	client, err := s.catalog.GetClient(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if in.DueDate.Before(in.IssueDate) {
		return nil, ErrInvalidDateRange
	}
	if len(in.Items) == 0 {
		return nil, ErrEmptyItemList
	}
	for i, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %d", ErrInvalidQuantity, i+1)
		}
	}

	items := make([]models.InvoiceItem, 0, len(in.Items))
	var subtotal float64
	for _, item := range in.Items {
		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		lineSubtotal := float64(item.Quantity) * product.Price
		items = append(items, models.InvoiceItem{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			Subtotal:  lineSubtotal,
		})
		subtotal += lineSubtotal
	}
	if in.Tax < 0 {
		return nil, ErrInvalidTax
	}

	invoice := models.Invoice{
		IssueDate: in.IssueDate,
		DueDate:   in.DueDate,
		ClientID:  client.ID,
		Address:   client.Address,
		Tax:       in.Tax,
		Total:     in.Tax + subtotal,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := nextInvoiceNumber(tx)
		if err != nil {
			return err
		}
		invoice.InvoiceNo = number
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].InvoiceID = invoice.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		// Reload inside the transaction: once it commits, a concurrent
		// delete may remove the invoice at any moment.
		return tx.Preload("Client").Preload("Items.Product").First(&invoice, invoice.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// nextInvoiceNumber advances the sequence row and formats the new value.
// The increment is a single UPDATE so concurrent creations cannot read the
// same value; running it inside the creation transaction means a rollback
// returns the number to the pool, while deletion of a committed invoice
// never does.
func nextInvoiceNumber(tx *gorm.DB) (string, error) {
	res := tx.Model(&models.InvoiceSequence{}).
		Where("id = ?", sequenceRowID).
		UpdateColumn("last_value", gorm.Expr("last_value + 1"))
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", fmt.Errorf("invoice sequence row %d missing", sequenceRowID)
	}
	var seq models.InvoiceSequence
	if err := tx.First(&seq, sequenceRowID).Error; err != nil {
		return "", err
	}
	return models.FormatInvoiceNo(seq.LastValue), nil
}

// List returns all invoices without their items, oldest first. Because
// numbers are allocated in creation order, id ascending and invoice number
// ascending coincide.
func (s *InvoiceService) List(ctx context.Context) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Client").
		Order("id ASC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// GetByID returns the full invoice with its items, client, and per-item
// product loaded.
func (s *InvoiceService) GetByID(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Items.Product").
		First(&invoice, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrInvoiceNotFound, id)
		}
		return nil, err
	}
	return &invoice, nil
}

// Delete removes an invoice and its items in one transaction. The explicit
// item delete keeps the cascade portable between sqlite and postgres.
// Deleting an already-deleted id returns ErrInvoiceNotFound, and the number
// sequence is left untouched.
func (s *InvoiceService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.First(&invoice, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: id %d", ErrInvoiceNotFound, id)
			}
			return err
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&invoice).Error
	})
}
