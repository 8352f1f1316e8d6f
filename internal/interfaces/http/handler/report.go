package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/smbledger/backend/internal/application/report"
)

// ReportHandler exposes the financial reports
type ReportHandler struct {
	BaseHandler
	reportService *report.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *report.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/balance-sheet", h.BalanceSheet)
		reports.GET("/income-statement", h.IncomeStatement)
		reports.GET("/chart-of-accounts", h.ChartOfAccounts)
		reports.GET("/accounts/:id/detail", h.SubAccountDetail)
	}
}

// BalanceSheet renders assets, liabilities and equity as of the period end
func (h *ReportHandler) BalanceSheet(c *gin.Context) {
	from, to, branchID, err := parseDateRange(c)
	if err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.reportService.BalanceSheet(c.Request.Context(), from, to, branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// IncomeStatement renders income and expenses over the period
func (h *ReportHandler) IncomeStatement(c *gin.Context) {
	from, to, branchID, err := parseDateRange(c)
	if err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.reportService.IncomeStatement(c.Request.Context(), from, to, branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ChartOfAccounts renders every account with its period balance
func (h *ReportHandler) ChartOfAccounts(c *gin.Context) {
	from, to, branchID, err := parseDateRange(c)
	if err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.reportService.ChartOfAccounts(c.Request.Context(), from, to, branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SubAccountDetail renders the entry-level activity of one account
func (h *ReportHandler) SubAccountDetail(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	from, to, _, err := parseDateRange(c)
	if err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.reportService.SubAccountDetail(c.Request.Context(), id, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
