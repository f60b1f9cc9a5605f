package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tmoreau/go-billing/internal/models"
)

func setupLedger(t *testing.T) (*gorm.DB, *InvoiceService) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Product{},
		&models.Client{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.InvoiceSequence{},
	))

	require.NoError(t, conn.Create(&models.Product{ID: 1, Name: "Widget", Price: 100}).Error)
	require.NoError(t, conn.Create(&models.Product{ID: 3, Name: "Gadget", Price: 250}).Error)
	require.NoError(t, conn.Create(&models.Client{
		ID:                    1,
		Name:                  "Acme Corporation",
		Address:               "123 Business Ave, New York, NY 10001",
		CompanyRegistrationNo: "ACM-2024-001",
	}).Error)
	require.NoError(t, conn.Create(&models.InvoiceSequence{ID: 1, LastValue: 0}).Error)

	return conn, NewInvoiceService(conn, NewCatalogService(conn))
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func validInput(t *testing.T) CreateInvoiceInput {
	return CreateInvoiceInput{
		ClientID:  1,
		IssueDate: date(t, "2024-02-08"),
		DueDate:   date(t, "2024-03-08"),
		Tax:       500,
		Items: []CreateInvoiceItemInput{
			{ProductID: 1, Quantity: 2},
			{ProductID: 3, Quantity: 1},
		},
	}
}

func TestCreateComputesTotals(t *testing.T) {
	_, svc := setupLedger(t)
	ctx := context.Background()

	inv, err := svc.Create(ctx, validInput(t))
	require.NoError(t, err)

	assert.Equal(t, "INV-001", inv.InvoiceNo)
	require.Len(t, inv.Items, 2)
	assert.Equal(t, 200.0, inv.Items[0].Subtotal)
	assert.Equal(t, 100.0, inv.Items[0].UnitPrice)
	assert.Equal(t, 250.0, inv.Items[1].Subtotal)
	assert.Equal(t, 950.0, inv.Total)
	assert.Equal(t, inv.Tax+inv.ItemsSubtotal(), inv.Total)
	assert.Equal(t, "123 Business Ave, New York, NY 10001", inv.Address)
	require.NotNil(t, inv.Items[0].Product)
	assert.Equal(t, "Widget", inv.Items[0].Product.Name)
}

func TestCreateSequentialNumbers(t *testing.T) {
	_, svc := setupLedger(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validInput(t))
	require.NoError(t, err)
	second, err := svc.Create(ctx, validInput(t))
	require.NoError(t, err)

	assert.Equal(t, "INV-001", first.InvoiceNo)
	assert.Equal(t, "INV-002", second.InvoiceNo)
	assert.Equal(t, 950.0, second.Total)

	// First invoice unaffected and still retrievable.
	again, err := svc.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-001", again.InvoiceNo)
	assert.Equal(t, 950.0, again.Total)
}

func TestNumbersStrictlyIncreasing(t *testing.T) {
	_, svc := setupLedger(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	prev := ""
	for i := 0; i < 12; i++ {
		inv, err := svc.Create(ctx, validInput(t))
		require.NoError(t, err)
		assert.False(t, seen[inv.InvoiceNo], "duplicate number %s", inv.InvoiceNo)
		seen[inv.InvoiceNo] = true
		assert.Greater(t, inv.InvoiceNo, prev)
		prev = inv.InvoiceNo
	}
}

func TestConcurrentCreatesReceiveDistinctNumbers(t *testing.T) {
	_, svc := setupLedger(t)
	ctx := context.Background()

	const workers = 8
	in := validInput(t)
	numbers := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inv, err := svc.Create(ctx, in)
			if err != nil {
				t.Errorf("concurrent create: %v", err)
				return
			}
			numbers <- inv.InvoiceNo
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for n := range numbers {
		if seen[n] {
			t.Errorf("number %s issued twice", n)
		}
		seen[n] = true
	}
	require.Len(t, seen, workers)
}

func TestCreateResultSurvivesConcurrentDelete(t *testing.T) {
	_, svc := setupLedger(t)
	ctx := context.Background()

	// A deleter racing against creations must never make a successful
	// Create report its own invoice as missing: the returned invoice is
	// loaded before the creation transaction commits.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			invoices, err := svc.List(ctx)
			if err != nil {
				continue
			}
			for _, inv := range invoices {
				_ = svc.Delete(ctx, inv.ID)
			}
		}
	}()

	for i := 0; i < 10; i++ {
		inv, err := svc.Create(ctx, validInput(t))
		require.NoError(t, err)
		require.NotEmpty(t, inv.InvoiceNo)
		require.Len(t, inv.Items, 2)
		require.NotNil(t, inv.Client)
		require.NotNil(t, inv.Items[0].Product)
	}
	<-done
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateInvoiceInput)
		wantErr error
	}{
		{
			name:    "unknown client",
			mutate:  func(in *CreateInvoiceInput) { in.ClientID = 999 },
			wantErr: ErrClientNotFound,
		},
		{
			name: "due date before issue date",
			mutate: func(in *CreateInvoiceInput) {
				in.IssueDate = in.DueDate.AddDate(0, 1, 0)
			},
			wantErr: ErrInvalidDateRange,
		},
		{
			name:    "no items",
			mutate:  func(in *CreateInvoiceInput) { in.Items = nil },
			wantErr: ErrEmptyItemList,
		},
		{
			name:    "zero quantity",
			mutate:  func(in *CreateInvoiceInput) { in.Items[0].Quantity = 0 },
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "negative quantity",
			mutate:  func(in *CreateInvoiceInput) { in.Items[1].Quantity = -3 },
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "unknown product",
			mutate:  func(in *CreateInvoiceInput) { in.Items[1].ProductID = 42 },
			wantErr: ErrProductNotFound,
		},
		{
			name:    "negative tax",
			mutate:  func(in *CreateInvoiceInput) { in.Tax = -1 },
			wantErr: ErrInvalidTax,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, svc := setupLedger(t)
			ctx := context.Background()

			in := validInput(t)
			tt.mutate(&in)
			_, err := svc.Create(ctx, in)
			require.ErrorIs(t, err, tt.wantErr)

			// Nothing persisted.
			var invoices, items int64
			conn.Model(&models.Invoice{}).Count(&invoices)
			conn.Model(&models.InvoiceItem{}).Count(&items)
			assert.Zero(t, invoices)
			assert.Zero(t, items)

			// The number was not consumed: the next valid creation still
			// gets the first number.
			inv, err := svc.Create(ctx, validInput(t))
			require.NoError(t, err)
			assert.Equal(t, "INV-001", inv.InvoiceNo)
		})
	}
}

func TestValidationOrderQuantityBeforeProduct(t *testing.T) {
	_, svc := setupLedger(t)

	in := validInput(t)
	in.Items[0].Quantity = 0
	in.Items[1].ProductID = 42
	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestSnapshotsImmuneToCatalogChanges(t *testing.T) {
	conn, svc := setupLedger(t)
	ctx := context.Background()

	inv, err := svc.Create(ctx, validInput(t))
	require.NoError(t, err)

	require.NoError(t, conn.Model(&models.Product{ID: 1}).Update("price", 9999).Error)
	require.NoError(t, conn.Model(&models.Client{ID: 1}).Update("address", "New HQ").Error)

	reloaded, err := svc.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, reloaded.Items[0].UnitPrice)
	assert.Equal(t, 200.0, reloaded.Items[0].Subtotal)
	assert.Equal(t, "123 Business Ave, New York, NY 10001", reloaded.Address)
	assert.Equal(t, 950.0, reloaded.Total)
}

func TestListOrder(t *testing.T) {
	_, svc := setupLedger(t)
	ctx := context.Background()

	empty, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = svc.Create(ctx, validInput(t))
	require.NoError(t, err)
	_, err = svc.Create(ctx, validInput(t))
	require.NoError(t, err)

	invoices, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, invoices, 2)

	// Oldest first; ids and numbers ascend together.
	assert.Less(t, invoices[0].ID, invoices[1].ID)
	assert.Equal(t, "INV-001", invoices[0].InvoiceNo)
	assert.Equal(t, "INV-002", invoices[1].InvoiceNo)
	assert.Empty(t, invoices[0].Items)
	require.NotNil(t, invoices[0].Client)
	assert.Equal(t, "Acme Corporation", invoices[0].Client.Name)
}

func TestGetByIDNotFound(t *testing.T) {
	_, svc := setupLedger(t)
	_, err := svc.GetByID(context.Background(), 123)
	require.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestDeleteCascadesAndRetiresNumber(t *testing.T) {
	conn, svc := setupLedger(t)
	ctx := context.Background()

	inv, err := svc.Create(ctx, validInput(t))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, inv.ID))

	// Invoice and all its items are gone.
	_, err = svc.GetByID(ctx, inv.ID)
	require.ErrorIs(t, err, ErrInvoiceNotFound)
	var items int64
	conn.Model(&models.InvoiceItem{}).Where("invoice_id = ?", inv.ID).Count(&items)
	assert.Zero(t, items)

	// Second delete is not-found, not success.
	require.ErrorIs(t, svc.Delete(ctx, inv.ID), ErrInvoiceNotFound)

	// The retired number is never reissued.
	next, err := svc.Create(ctx, validInput(t))
	require.NoError(t, err)
	assert.Equal(t, "INV-002", next.InvoiceNo)
}
