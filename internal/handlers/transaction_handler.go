package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "dompet/internal/errors"
	"dompet/internal/models"
	"dompet/internal/services"
	"dompet/internal/uuid"
)

// List views selected by GET /transaction?type=.
const (
	viewManual    = ""
	viewDashboard = "dashboard"
	viewMonthly   = "monthly"
	viewUploaded  = "uploaded"
)

// TransactionHandler handles ledger requests.
type TransactionHandler struct {
	ledgerService services.LedgerServicer
	auditService  services.AuditServicer
	loc           *time.Location
	now           func() time.Time
}

// NewTransactionHandler creates a new TransactionHandler. Zone-less dates
// and month boundaries are interpreted in loc.
func NewTransactionHandler(ledgerService services.LedgerServicer, auditService services.AuditServicer, loc *time.Location) *TransactionHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TransactionHandler{ledgerService: ledgerService, auditService: auditService, loc: loc, now: time.Now}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	Type            string          `json:"type" binding:"required,transaction_type"`
	Amount          decimal.Decimal `json:"amount" binding:"required,gt=0"`
	CategoryID      string          `json:"category_id" binding:"required,uuid"`
	DateTransaction string          `json:"date_transaction" binding:"required"`
	Note            *string         `json:"note" binding:"omitempty,max=500"`
}

// CreateTransactionResponse is the committed transaction and the balance after it.
type CreateTransactionResponse struct {
	Success     bool               `json:"success"`
	Transaction models.Transaction `json:"transaction"`
	NewBalance  decimal.Decimal    `json:"newBalance"`
}

// TransactionListResponse wraps a list of transactions.
type TransactionListResponse struct {
	Transactions []models.Transaction `json:"transactions"`
}

// CreateTransaction records an income or expense
// @Summary     Create a transaction
// @Description Record an income or expense against the cash account. Expenses larger than the balance are rejected.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} CreateTransactionResponse "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transaction [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	txType, ok := models.ParseTransactionType(req.Type)
	if !ok {
		respondWithError(c, apperrors.ErrInvalidTransactionType)
		return
	}

	date, err := parseFlexibleTime(req.DateTransaction, h.loc)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if req.Note != nil {
		note := strings.TrimSpace(*req.Note)
		req.Note = &note
		if note == "" {
			req.Note = nil
		}
	}

	result, err := h.ledgerService.RecordTransaction(c.Request.Context(), userID, services.RecordTransactionInput{
		Type:       txType,
		Amount:     req.Amount,
		CategoryID: &req.CategoryID,
		Date:       date,
		Note:       req.Note,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "create", "transaction", result.Transaction.ID, c.ClientIP(),
		map[string]interface{}{"type": txType, "amount": req.Amount.String(), "new_balance": result.NewBalance.String()})

	c.JSON(http.StatusCreated, CreateTransactionResponse{
		Success:     true,
		Transaction: *result.Transaction,
		NewBalance:  result.NewBalance,
	})
}

// ListTransactions serves the transaction views
// @Summary     List transactions
// @Description Without type: manual entries, newest first, at most 100. type=uploaded lists receipt uploads, type=monthly returns trailing month totals and type=dashboard the current month's category breakdown.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       type             query string false "dashboard, monthly or uploaded"
// @Param       months           query int    false "Months for type=monthly (default 6, max 24)"
// @Param       from_date        query string false "Start date, inclusive (RFC3339 or YYYY-MM-DD)"
// @Param       to_date          query string false "End date, exclusive (RFC3339 or YYYY-MM-DD)"
// @Param       transaction_type query string false "income or expense"
// @Param       category_id      query string false "Category ID"
// @Param       limit            query int    false "Maximum rows (default and max 100)"
// @Success     200 {object} TransactionListResponse "Transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transaction [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	ctx := c.Request.Context()

	switch view := c.Query("type"); view {
	case viewMonthly:
		months := 0
		if v := c.Query("months"); v != "" {
			months, err = strconv.Atoi(v)
			if err != nil || months < 1 {
				respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "months must be a positive integer"))
				return
			}
		}
		aggregate, err := h.ledgerService.MonthlyAggregate(ctx, userID, months)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, aggregate)

	case viewDashboard:
		start, end := h.currentMonth()
		breakdown, err := h.ledgerService.CategoryBreakdown(ctx, userID, start, end)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, breakdown)

	case viewManual, viewUploaded:
		filter, err := h.parseTransactionFilter(c)
		if err != nil {
			respondWithError(c, err)
			return
		}
		filter.OnlyReceipts = view == viewUploaded
		filter.ExcludeReceipts = view == viewManual

		transactions, err := h.ledgerService.ListTransactions(ctx, userID, filter)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, TransactionListResponse{Transactions: transactions})

	default:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be dashboard, monthly or uploaded"))
	}
}

// currentMonth returns [first of this month, first of next month) in h.loc.
func (h *TransactionHandler) currentMonth() (time.Time, time.Time) {
	start := services.MonthStart(h.now(), h.loc)
	return start, start.AddDate(0, 1, 0)
}

func (h *TransactionHandler) parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v, h.loc)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v, h.loc)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	if v := c.Query("transaction_type"); v != "" {
		txType, ok := models.ParseTransactionType(v)
		if !ok {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid transaction_type, must be income or expense")
		}
		filter.Type = &txType
	}

	if v := c.Query("category_id"); v != "" {
		if !uuid.IsValid(v) {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category_id")
		}
		filter.CategoryID = &v
	}

	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid limit")
		}
		filter.Limit = limit
	}

	return filter, nil
}

// GetTransaction handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transaction/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.ledgerService.GetTransaction(c.Request.Context(), userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction soft-deletes a transaction and reverses its balance effect
// @Summary     Delete transaction
// @Description Soft-delete a transaction. An income that has already been spent cannot be removed.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]interface{} "Transaction deleted with the new balance"
// @Failure     400 {object} ErrorResponse "Invalid ID or insufficient balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transaction/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	newBalance, err := h.ledgerService.DeleteTransaction(c.Request.Context(), userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "delete", "transaction", transactionID, c.ClientIP(),
		map[string]interface{}{"new_balance": newBalance.String()})

	c.JSON(http.StatusOK, gin.H{"success": true, "newBalance": newBalance})
}
