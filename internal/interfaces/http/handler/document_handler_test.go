package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	appbilling "github.com/smbledger/backend/internal/application/billing"
	"github.com/smbledger/backend/internal/domain/banking"
	"github.com/smbledger/backend/internal/domain/billing"
	"github.com/smbledger/backend/internal/infrastructure/persistence"
)

func setupDocumentRouter(t *testing.T, now time.Time) *gin.Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&billing.Invoice{},
		&billing.Bill{},
		&billing.PurchaseOrder{},
		&billing.Quotation{},
		&billing.LineItem{},
		&banking.Payment{},
	))

	documentService := appbilling.NewDocumentService(
		persistence.NewGormInvoiceRepository(db),
		persistence.NewGormBillRepository(db),
		persistence.NewGormPurchaseOrderRepository(db),
		persistence.NewGormQuotationRepository(db),
		persistence.NewGormPaymentRepository(db),
	)

	handler := NewDocumentHandler(documentService)
	handler.clock = func() time.Time { return now }

	engine := gin.New()
	handler.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

var documentTestNow = time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC)

func TestDocumentHandler_Invoices(t *testing.T) {
	engine := setupDocumentRouter(t, documentTestNow)

	t.Run("creates a numbered invoice with computed totals", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/invoices", gin.H{
			"customer_name": "Acme Ltd",
			"date":          "2026-04-01T00:00:00Z",
			"due_date":      "2026-05-01T00:00:00Z",
			"lines": []gin.H{
				{"description": "Consulting", "quantity": "3", "unit_price": "150.00"},
				{"description": "Travel", "quantity": "1", "unit_price": "80.00"},
			},
		})
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "INV-000001", data["number"])
		assert.Equal(t, "530", data["total_amount"])
		assert.Equal(t, "530", data["balance_due"])
		assert.Equal(t, "UNPAID", data["status"])
	})

	t.Run("rejects an invoice without lines", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/invoices", gin.H{
			"customer_name": "Acme Ltd",
			"date":          "2026-04-01T00:00:00Z",
			"lines":         []gin.H{},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("replaces invoice lines", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/invoices", gin.H{
			"customer_name": "Beta GmbH",
			"date":          "2026-04-02T00:00:00Z",
			"lines": []gin.H{
				{"description": "Setup", "quantity": "1", "unit_price": "200.00"},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		id := decodeResponse(t, w).Data.(map[string]any)["id"].(string)

		w = doJSON(t, engine, http.MethodPut, "/api/v1/invoices/"+id+"/lines", gin.H{
			"lines": []gin.H{
				{"description": "Setup and training", "quantity": "1", "unit_price": "350.00"},
			},
		})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "350", data["total_amount"])
	})

	t.Run("lists overdue invoices", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/invoices", gin.H{
			"customer_name": "Late Payer Co",
			"date":          "2026-02-01T00:00:00Z",
			"due_date":      "2026-03-01T00:00:00Z",
			"lines": []gin.H{
				{"description": "Widgets", "quantity": "10", "unit_price": "5.00"},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, engine, http.MethodGet, "/api/v1/invoices/overdue", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, 1, resp.Meta.Total)
		items := resp.Data.([]any)
		require.Len(t, items, 1)
		assert.Equal(t, "Late Payer Co", items[0].(map[string]any)["customer_name"])
	})

	t.Run("deletes an invoice", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/invoices", gin.H{
			"customer_name": "Throwaway",
			"date":          "2026-04-03T00:00:00Z",
			"lines": []gin.H{
				{"description": "Nothing much", "quantity": "1", "unit_price": "1.00"},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		id := decodeResponse(t, w).Data.(map[string]any)["id"].(string)

		w = doJSON(t, engine, http.MethodDelete, "/api/v1/invoices/"+id, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = doJSON(t, engine, http.MethodGet, "/api/v1/invoices/"+id, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDocumentHandler_QuotationToInvoice(t *testing.T) {
	engine := setupDocumentRouter(t, documentTestNow)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/quotations", gin.H{
		"customer_name": "Acme Ltd",
		"date":          "2026-04-01T00:00:00Z",
		"lines": []gin.H{
			{"description": "Annual retainer", "quantity": "1", "unit_price": "1200.00"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	quoteData := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "QT-000001", quoteData["number"])
	assert.Equal(t, "DRAFT", quoteData["status"])
	quoteID := quoteData["id"].(string)

	t.Run("a draft quotation cannot be accepted", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/quotations/"+quoteID+"/accept", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("sending marks the quotation as delivered", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/quotations/"+quoteID+"/send", nil)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "SENT", data["status"])
	})

	t.Run("accepting converts the quotation into an invoice", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/quotations/"+quoteID+"/accept", gin.H{
			"due_date": "2026-05-15T00:00:00Z",
		})
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "INV-000001", data["number"])
		assert.Equal(t, "1200", data["total_amount"])
	})

	t.Run("a quotation cannot be accepted twice", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/quotations/"+quoteID+"/accept", nil)
		assert.Equal(t, http.StatusConflict, w.Code)

		resp := decodeResponse(t, w)
		assert.Equal(t, "INVALID_STATE", resp.Error.Code)
	})
}

func TestDocumentHandler_PurchaseOrderToBill(t *testing.T) {
	engine := setupDocumentRouter(t, documentTestNow)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/purchase-orders", gin.H{
		"supplier_name": "Paper Supply Co",
		"date":          "2026-04-01T00:00:00Z",
		"lines": []gin.H{
			{"description": "Paper", "quantity": "10", "unit_price": "4.50"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	poData := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "PO-000001", poData["number"])
	poID := poData["id"].(string)

	t.Run("receiving converts the order into a bill", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/purchase-orders/"+poID+"/receive", nil)
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "BILL-000001", data["number"])
		assert.Equal(t, "Paper Supply Co", data["supplier_name"])
		assert.Equal(t, "45", data["total_amount"])
	})

	t.Run("receiving twice is refused", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/purchase-orders/"+poID+"/receive", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("a received order cannot be cancelled", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/purchase-orders/"+poID+"/cancel", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("an open order can be cancelled", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/purchase-orders", gin.H{
			"supplier_name": "Ink Supply Co",
			"date":          "2026-04-02T00:00:00Z",
			"lines": []gin.H{
				{"description": "Toner", "quantity": "2", "unit_price": "60.00"},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		id := decodeResponse(t, w).Data.(map[string]any)["id"].(string)

		w = doJSON(t, engine, http.MethodPost, "/api/v1/purchase-orders/"+id+"/cancel", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "CANCELLED", data["status"])
	})
}

func TestDocumentHandler_CreateBill(t *testing.T) {
	engine := setupDocumentRouter(t, documentTestNow)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/bills", gin.H{
		"supplier_name":       "Utility Co",
		"supplier_invoice_no": "U-2026-04",
		"date":                "2026-04-05T00:00:00Z",
		"due_date":            "2026-04-20T00:00:00Z",
		"lines": []gin.H{
			{"description": "Electricity", "quantity": "1", "unit_price": "230.00"},
		},
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "BILL-000001", data["number"])
	assert.Equal(t, "UNPAID", data["status"])
}
