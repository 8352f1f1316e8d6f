package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smbledger/backend/internal/domain/billing"
	"github.com/smbledger/backend/internal/interfaces/http/dto"
)

const dateLayout = "2006-01-02"

// reportInvalidator drops cached reports after a ledger write. The report
// service implements it; handlers that post to the ledger call it on success.
type reportInvalidator interface {
	InvalidateCache(ctx context.Context)
}

// parseIDParam parses the :id path parameter as a UUID
func parseIDParam(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

// parseDateRange binds and parses the date_from/date_to/branch_id query
// parameters shared by the report endpoints.
func parseDateRange(c *gin.Context) (from, to time.Time, branchID *uuid.UUID, err error) {
	var req dto.DateRangeRequest
	if err = c.ShouldBindQuery(&req); err != nil {
		return
	}
	if from, err = time.Parse(dateLayout, req.DateFrom); err != nil {
		return
	}
	if to, err = time.Parse(dateLayout, req.DateTo); err != nil {
		return
	}
	if req.BranchID != "" {
		var id uuid.UUID
		if id, err = uuid.Parse(req.BranchID); err != nil {
			return
		}
		branchID = &id
	}
	return
}

// LineItemRequest is one document line in a create/update request
type LineItemRequest struct {
	ItemID       *uuid.UUID      `json:"item_id"`
	Description  string          `json:"description" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
}

func toLineInputs(lines []LineItemRequest) []billing.LineItemInput {
	inputs := make([]billing.LineItemInput, len(lines))
	for i, l := range lines {
		inputs[i] = billing.LineItemInput{
			ItemID:       l.ItemID,
			Description:  l.Description,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			TaxRate:      l.TaxRate,
			DiscountRate: l.DiscountRate,
		}
	}
	return inputs
}
