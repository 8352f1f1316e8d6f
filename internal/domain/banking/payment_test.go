package banking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smbledger/backend/internal/domain/shared"
)

func TestNewPayment(t *testing.T) {
	bankID := uuid.New()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("creates payment with valid inputs", func(t *testing.T) {
		p, err := NewPayment("PAY-000042", decimal.NewFromFloat(150.25), date,
			PaymentMethodCheck, PaymentDirectionPaid, bankID)
		require.NoError(t, err)
		assert.Equal(t, "PAY-000042", p.Number)
		assert.Equal(t, PaymentStatusPending, p.Status)
		assert.Equal(t, ApprovalStatusPending, p.ApprovalStatus)
		assert.False(t, p.Reconciled)
		assert.NotEmpty(t, p.GetDomainEvents())
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewPayment("PAY-000043", decimal.Zero, date,
			PaymentMethodCash, PaymentDirectionPaid, bankID)
		require.Error(t, err)
	})

	t.Run("rejects invalid method", func(t *testing.T) {
		_, err := NewPayment("PAY-000044", decimal.NewFromInt(10), date,
			PaymentMethod("WIRE?"), PaymentDirectionPaid, bankID)
		require.Error(t, err)
	})
}

func TestPaymentLifecycle(t *testing.T) {
	bankID := uuid.New()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	newPayment := func(t *testing.T) *Payment {
		p, err := NewPayment("PAY-000050", decimal.NewFromInt(100),
			now.AddDate(0, 0, -3), PaymentMethodBankTransfer, PaymentDirectionPaid, bankID)
		require.NoError(t, err)
		return p
	}

	t.Run("approve then clear then reconcile", func(t *testing.T) {
		p := newPayment(t)
		require.NoError(t, p.Approve())
		require.NoError(t, p.Complete())
		require.NoError(t, p.Clear(now.AddDate(0, 0, -1)))
		require.NoError(t, p.MarkReconciled(now, nil))
		assert.True(t, p.Reconciled)
		require.NotNil(t, p.ReconciledAt)
		assert.Equal(t, now, *p.ReconciledAt)
	})

	t.Run("void before reconciliation is allowed", func(t *testing.T) {
		p := newPayment(t)
		require.NoError(t, p.Void(now, "duplicate entry"))
		assert.Equal(t, PaymentStatusVoided, p.Status)
		assert.Equal(t, "duplicate entry", p.VoidReason)
	})

	t.Run("void after reconciliation is rejected", func(t *testing.T) {
		p := newPayment(t)
		require.NoError(t, p.MarkReconciled(now, nil))
		err := p.Void(now, "too late")
		require.Error(t, err)
		assert.True(t, shared.IsDomainError(err, shared.ErrCodeAlreadyReconciled))
		assert.NotEqual(t, PaymentStatusVoided, p.Status)
	})

	t.Run("voided payment accepts no further transitions", func(t *testing.T) {
		p := newPayment(t)
		require.NoError(t, p.Void(now, ""))
		require.Error(t, p.Approve())
		require.Error(t, p.Complete())
		require.Error(t, p.Void(now, "again"))
	})

	t.Run("reconcile sets cleared date if missing", func(t *testing.T) {
		p := newPayment(t)
		require.NoError(t, p.MarkReconciled(now, nil))
		require.NotNil(t, p.ClearedDate)
	})
}

func TestAttachDocument(t *testing.T) {
	bankID := uuid.New()
	p, err := NewPayment("PAY-000060", decimal.NewFromInt(50),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), PaymentMethodCash, PaymentDirectionReceived, bankID)
	require.NoError(t, err)

	invoiceID := uuid.New()
	require.NoError(t, p.AttachDocument(DocumentKindInvoice, invoiceID))
	require.NotNil(t, p.DocumentKind)
	assert.Equal(t, DocumentKindInvoice, *p.DocumentKind)

	t.Run("a payment settles at most one document", func(t *testing.T) {
		err := p.AttachDocument(DocumentKindBill, uuid.New())
		require.Error(t, err)
		assert.Equal(t, invoiceID, *p.DocumentID)
	})
}
