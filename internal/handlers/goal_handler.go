package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "dompet/internal/errors"
	"dompet/internal/models"
	"dompet/internal/pagination"
	"dompet/internal/services"
)

// GoalHandler handles savings goal requests.
type GoalHandler struct {
	goalService  services.GoalServicer
	auditService services.AuditServicer
	loc          *time.Location
}

// NewGoalHandler creates a new GoalHandler. Zone-less dates are read in loc.
func NewGoalHandler(goalService services.GoalServicer, auditService services.AuditServicer, loc *time.Location) *GoalHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &GoalHandler{goalService: goalService, auditService: auditService, loc: loc}
}

// GoalItemRequest is one planned cost. CategoryName is matched against the
// goal item categories; unknown names leave the item uncategorized.
type GoalItemRequest struct {
	CategoryName string          `json:"category_name" binding:"max=100"`
	ItemName     string          `json:"item_name" binding:"required,max=200"`
	CostIDR      decimal.Decimal `json:"cost_idr" binding:"gte=0"`
	Notes        string          `json:"notes" binding:"max=500"`
}

// GoalRequest represents the create and replace payload for a goal.
// UserID is optional and must match the caller when present.
type GoalRequest struct {
	UserID      string            `json:"user_id"`
	Destination string            `json:"destination" binding:"required,max=200"`
	StartDate   string            `json:"start_date" binding:"required"`
	EndDate     string            `json:"end_date" binding:"required"`
	TotalBudget decimal.Decimal   `json:"total_budget" binding:"gte=0"`
	GoalItems   []GoalItemRequest `json:"goal_items" binding:"omitempty,max=100,dive"`
}

// DepositRequest represents a savings deposit.
type DepositRequest struct {
	GoalID string          `json:"goal_id" binding:"required,uuid"`
	Amount decimal.Decimal `json:"amount" binding:"required,gt=0"`
}

// GoalResponse wraps a goal, which is null when the user has none.
type GoalResponse struct {
	Goal *models.Goal `json:"goal"`
}

// CreateGoalResponse carries the new goal's id.
type CreateGoalResponse struct {
	Success bool   `json:"success"`
	GoalID  string `json:"goal_id"`
}

// DepositResponse carries the goal total after a deposit.
type DepositResponse struct {
	Success      bool               `json:"success"`
	Deposit      models.GoalDeposit `json:"deposit"`
	TotalSavings decimal.Decimal    `json:"totalSavings"`
}

// bindGoal parses a GoalRequest into service input. It rejects a body
// user_id that names someone other than the caller.
func (h *GoalHandler) bindGoal(c *gin.Context, userID string) (services.GoalInput, error) {
	var req GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return services.GoalInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	if req.UserID != "" && req.UserID != userID {
		return services.GoalInput{}, apperrors.WithMessage(apperrors.ErrForbidden, "user_id does not match the authenticated user")
	}

	start, err := parseFlexibleTime(req.StartDate, h.loc)
	if err != nil {
		return services.GoalInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid start_date: "+err.Error())
	}
	end, err := parseFlexibleTime(req.EndDate, h.loc)
	if err != nil {
		return services.GoalInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid end_date: "+err.Error())
	}

	items := make([]services.GoalItemInput, 0, len(req.GoalItems))
	for _, it := range req.GoalItems {
		items = append(items, services.GoalItemInput{
			Category: it.CategoryName,
			ItemName: it.ItemName,
			CostIDR:  it.CostIDR,
			Notes:    it.Notes,
		})
	}

	return services.GoalInput{
		Destination: req.Destination,
		StartDate:   start,
		EndDate:     end,
		TotalBudget: req.TotalBudget,
		Items:       items,
	}, nil
}

// GetLatestGoal returns the caller's most recent goal
// @Summary     Get latest goal
// @Description The most recently created goal with its items, or null
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} GoalResponse "Latest goal"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /goal [get]
func (h *GoalHandler) GetLatestGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.GetLatestGoal(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, GoalResponse{Goal: goal})
}

// CreateGoal creates a goal with its items
// @Summary     Create a goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body GoalRequest true "Goal details"
// @Success     201 {object} CreateGoalResponse "Goal created"
// @Failure     400 {object} ErrorResponse "Invalid input or dates"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "user_id mismatch"
// @Router      /goal [post]
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	input, err := h.bindGoal(c, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.CreateGoal(c.Request.Context(), userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "create", "goal", goal.ID, c.ClientIP(),
		map[string]interface{}{"destination": goal.Destination, "total_budget": goal.TotalBudget.String(), "items": len(goal.Items)})

	c.JSON(http.StatusCreated, CreateGoalResponse{Success: true, GoalID: goal.ID})
}

// GetGoal returns one goal
// @Summary     Get goal by ID
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} GoalResponse "Goal"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goal/{id} [get]
func (h *GoalHandler) GetGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.GetGoal(c.Request.Context(), userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, GoalResponse{Goal: goal})
}

// ReplaceGoal overwrites a goal and its full item list
// @Summary     Update goal
// @Description Replace the goal's fields and all of its items
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string      true "Goal ID"
// @Param       request body GoalRequest true "Goal details"
// @Success     200 {object} MessageResponse "Goal updated"
// @Failure     400 {object} ErrorResponse "Invalid input or dates"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "user_id mismatch"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goal/{id} [put]
func (h *GoalHandler) ReplaceGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	input, err := h.bindGoal(c, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.ReplaceGoal(c.Request.Context(), userID, goalID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "update", "goal", goal.ID, c.ClientIP(),
		map[string]interface{}{"destination": goal.Destination, "total_budget": goal.TotalBudget.String(), "items": len(goal.Items)})

	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Goal updated successfully"})
}

// DeleteGoalItem removes one item from a goal
// @Summary     Delete goal item
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id     path string true "Goal ID"
// @Param       itemId path string true "Item ID"
// @Success     200 {object} MessageResponse "Item deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal or item not found"
// @Router      /goal/{id}/items/{itemId} [delete]
func (h *GoalHandler) DeleteGoalItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	itemID, err := parsePathID(c, "itemId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.goalService.DeleteGoalItem(c.Request.Context(), userID, goalID, itemID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "delete", "goal_item", itemID, c.ClientIP(),
		map[string]interface{}{"goal_id": goalID})

	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Item deleted successfully"})
}

// GetProgress returns the goal's progress figures
// @Summary     Goal progress
// @Description Percent funded, time remaining and the minimum weekly and monthly contributions
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} services.GoalProgress "Progress"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goal/{id}/progress [get]
func (h *GoalHandler) GetProgress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	progress, err := h.goalService.GetProgress(c.Request.Context(), userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// AddDeposit adds savings to a goal
// @Summary     Add savings
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body DepositRequest true "Deposit"
// @Success     201 {object} DepositResponse "Deposit recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goal/savings [post]
func (h *GoalHandler) AddDeposit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.goalService.AddDeposit(c.Request.Context(), userID, req.GoalID, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "deposit", "goal", req.GoalID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount.String(), "total_savings": result.TotalSavings.String()})

	c.JSON(http.StatusCreated, DepositResponse{
		Success:      true,
		Deposit:      *result.Deposit,
		TotalSavings: result.TotalSavings,
	})
}

// ListDeposits returns a goal's deposits
// @Summary     List savings
// @Description Paginated deposits, newest first
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Goal ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.GoalDeposit] "Deposits"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goal/{id}/savings [get]
func (h *GoalHandler) ListDeposits(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.goalService.ListDeposits(c.Request.Context(), userID, goalID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
