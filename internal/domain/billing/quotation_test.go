package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/smbledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotationLifecycle(t *testing.T) {
	expiry := docDate.AddDate(0, 0, 30)
	q, err := NewQuotation("QT-000001", "Acme Ltd", docDate, &expiry)
	require.NoError(t, err)
	assert.Equal(t, QuotationStatusDraft, q.Status)

	invoiceID := uuid.New()
	err = q.Accept(invoiceID, docDate)
	assert.True(t, shared.IsDomainError(err, shared.ErrCodeInvalidState), "draft cannot be accepted directly")

	require.NoError(t, q.MarkSent(docDate))
	require.NoError(t, q.Accept(invoiceID, docDate.AddDate(0, 0, 5)))
	assert.Equal(t, QuotationStatusAccepted, q.Status)
	require.NotNil(t, q.InvoiceID)
	assert.Equal(t, invoiceID, *q.InvoiceID)
}

func TestQuotationExpiry(t *testing.T) {
	expiry := docDate.AddDate(0, 0, 30)
	q, err := NewQuotation("QT-000002", "Acme Ltd", docDate, &expiry)
	require.NoError(t, err)
	require.NoError(t, q.MarkSent(docDate))

	assert.False(t, q.IsExpired(docDate.AddDate(0, 0, 29)))
	assert.True(t, q.IsExpired(docDate.AddDate(0, 0, 31)))

	err = q.Accept(uuid.New(), docDate.AddDate(0, 0, 31))
	assert.True(t, shared.IsDomainError(err, shared.ErrCodeInvalidState), "expired quotes cannot be accepted")
}

func TestPurchaseOrderLifecycle(t *testing.T) {
	po, err := NewPurchaseOrder("PO-000001", "Supplies Inc", docDate)
	require.NoError(t, err)
	assert.Equal(t, PurchaseOrderStatusOpen, po.Status)

	err = po.Close(docDate)
	assert.True(t, shared.IsDomainError(err, shared.ErrCodeInvalidState), "cannot close before receiving")

	billID := uuid.New()
	require.NoError(t, po.MarkReceived(billID, docDate.AddDate(0, 0, 7)))
	assert.Equal(t, PurchaseOrderStatusReceived, po.Status)

	err = po.Cancel(docDate.AddDate(0, 0, 8))
	assert.True(t, shared.IsDomainError(err, shared.ErrCodeInvalidState), "received orders cannot be cancelled")

	require.NoError(t, po.Close(docDate.AddDate(0, 0, 8)))
	assert.Equal(t, PurchaseOrderStatusClosed, po.Status)
}
