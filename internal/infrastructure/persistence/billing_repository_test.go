package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/smbledger/backend/internal/domain/billing"
)

var billingTestDate = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

func setupBillingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&billing.Invoice{},
		&billing.Bill{},
		&billing.PurchaseOrder{},
		&billing.Quotation{},
		&billing.LineItem{},
	))
	return db
}

func newTestInvoice(t *testing.T, number string) *billing.Invoice {
	t.Helper()
	due := billingTestDate.AddDate(0, 1, 0)
	invoice, err := billing.NewInvoice(number, "Acme Ltd", billingTestDate, &due)
	require.NoError(t, err)
	require.NoError(t, invoice.SetLines([]billing.LineItemInput{
		{Description: "Consulting", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.RequireFromString("150.00")},
		{Description: "Travel", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("80.00")},
	}))
	return invoice
}

func TestGormInvoiceRepository_SaveAndFind(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	invoice := newTestInvoice(t, "INV-000001")
	require.NoError(t, repo.Save(ctx, invoice))

	t.Run("FindByID loads lines in order", func(t *testing.T) {
		found, err := repo.FindByID(ctx, invoice.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		require.Len(t, found.Lines, 2)
		assert.Equal(t, 1, found.Lines[0].LineNumber)
		assert.Equal(t, "Consulting", found.Lines[0].Description)
		assert.True(t, found.TotalAmount.Equal(decimal.RequireFromString("530.00")))
	})

	t.Run("FindByNumber finds the invoice", func(t *testing.T) {
		found, err := repo.FindByNumber(ctx, "INV-000001")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, invoice.ID, found.ID)
	})

	t.Run("missing invoice comes back nil", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestGormInvoiceRepository_SaveReplacesLines(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	invoice := newTestInvoice(t, "INV-000001")
	require.NoError(t, repo.Save(ctx, invoice))

	require.NoError(t, invoice.SetLines([]billing.LineItemInput{
		{Description: "Retainer", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("900.00")},
	}))
	require.NoError(t, repo.Save(ctx, invoice))

	found, err := repo.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	require.Len(t, found.Lines, 1)
	assert.Equal(t, "Retainer", found.Lines[0].Description)

	var count int64
	require.NoError(t, db.Model(&billing.LineItem{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "stale lines must not survive a save")
}

func TestGormInvoiceRepository_Delete(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	invoice := newTestInvoice(t, "INV-000001")
	require.NoError(t, repo.Save(ctx, invoice))
	require.NoError(t, repo.Delete(ctx, invoice.ID))

	found, err := repo.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	var count int64
	require.NoError(t, db.Model(&billing.LineItem{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGormInvoiceRepository_NextNumber(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	t.Run("empty table starts the sequence", func(t *testing.T) {
		next, err := repo.NextNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, "INV-000001", next)
	})

	t.Run("continues from the highest stored number", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, newTestInvoice(t, "INV-000007")))
		require.NoError(t, repo.Save(ctx, newTestInvoice(t, "INV-000003")))

		next, err := repo.NextNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, "INV-000008", next)
	})
}

func TestGormBillRepository_RoundTrip(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormBillRepository(db)
	ctx := context.Background()

	due := billingTestDate.AddDate(0, 0, 30)
	bill, err := billing.NewBill("BILL-000001", "Paper Supply Co", billingTestDate, &due)
	require.NoError(t, err)
	require.NoError(t, bill.SetLines([]billing.LineItemInput{
		{Description: "Paper", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("4.50")},
	}))
	require.NoError(t, repo.Save(ctx, bill))

	found, err := repo.FindByNumber(ctx, "BILL-000001")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Paper Supply Co", found.SupplierName)
	require.Len(t, found.Lines, 1)
	assert.True(t, found.TotalAmount.Equal(decimal.RequireFromString("45.00")))

	next, err := repo.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "BILL-000002", next)
}

func TestGormQuotationRepository_FindByStatus(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormQuotationRepository(db)
	ctx := context.Background()

	quote, err := billing.NewQuotation("QT-000001", "Acme Ltd", billingTestDate, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, quote))

	drafts, err := repo.FindByStatus(ctx, billing.QuotationStatusDraft)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "QT-000001", drafts[0].Number)

	sent, err := repo.FindByStatus(ctx, billing.QuotationStatusSent)
	require.NoError(t, err)
	assert.Empty(t, sent)
}

func TestGormPurchaseOrderRepository_RoundTrip(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()

	po, err := billing.NewPurchaseOrder("PO-000001", "Paper Supply Co", billingTestDate)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, po))

	found, err := repo.FindByNumber(ctx, "PO-000001")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, billing.PurchaseOrderStatusOpen, found.Status)

	next, err := repo.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "PO-000002", next)
}
