package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dompet/internal/services"
)

// ProfileHandler serves the user's profile and cash account name.
type ProfileHandler struct {
	accountService services.AccountServicer
	auditService   services.AuditServicer
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(accountService services.AccountServicer, auditService services.AuditServicer) *ProfileHandler {
	return &ProfileHandler{accountService: accountService, auditService: auditService}
}

// UpdateProfileRequest represents the profile update payload
type UpdateProfileRequest struct {
	AccountName string `json:"account_name" binding:"required,max=100"`
}

// GetProfile returns the user's profile
// @Summary     Get user profile
// @Description Username, cash account name, initial and current balance
// @Tags        profile
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.Profile "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	profile, err := h.accountService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile renames the cash account
// @Summary     Update user profile
// @Description Rename the cash account
// @Tags        profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "New account name"
// @Success     200 {object} services.Profile "Updated profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	profile, err := h.accountService.RenameAccount(c.Request.Context(), userID, strings.TrimSpace(req.AccountName))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "update", "account", profile.AccountID, c.ClientIP(),
		map[string]interface{}{"name": profile.AccountName})

	c.JSON(http.StatusOK, profile)
}
