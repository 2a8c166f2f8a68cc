package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"dompet/internal/models"
	"dompet/internal/services"
)

const dashboardMonths = 6

// DashboardHandler assembles the home screen in one request.
type DashboardHandler struct {
	accountService services.AccountServicer
	ledgerService  services.LedgerServicer
	goalService    services.GoalServicer
	loc            *time.Location
	now            func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(accountService services.AccountServicer, ledgerService services.LedgerServicer, goalService services.GoalServicer, loc *time.Location) *DashboardHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardHandler{
		accountService: accountService,
		ledgerService:  ledgerService,
		goalService:    goalService,
		loc:            loc,
		now:            time.Now,
	}
}

// DashboardResponse is the combined dashboard payload. Goal and Progress are
// null when the user has no goal.
type DashboardResponse struct {
	Profile   *services.Profile           `json:"profile"`
	Monthly   *services.MonthlyAggregate  `json:"monthly"`
	Breakdown *services.CategoryBreakdown `json:"breakdown"`
	Goal      *models.Goal                `json:"goal"`
	Progress  *services.GoalProgress      `json:"progress"`
}

// GetDashboard loads the dashboard sections concurrently
// @Summary     Dashboard
// @Description Profile, trailing monthly totals, this month's category breakdown and the latest goal's progress
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} DashboardResponse "Dashboard"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	now := h.now()
	monthStart := services.MonthStart(now, h.loc)
	var resp DashboardResponse

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		profile, err := h.accountService.GetProfile(ctx, userID)
		resp.Profile = profile
		return err
	})
	g.Go(func() error {
		monthly, err := h.ledgerService.MonthlyAggregate(ctx, userID, dashboardMonths)
		resp.Monthly = monthly
		return err
	})
	g.Go(func() error {
		breakdown, err := h.ledgerService.CategoryBreakdown(ctx, userID, monthStart, monthStart.AddDate(0, 1, 0))
		resp.Breakdown = breakdown
		return err
	})
	g.Go(func() error {
		goal, err := h.goalService.GetLatestGoal(ctx, userID)
		if err != nil || goal == nil {
			return err
		}
		progress := services.ComputeProgress(goal, now)
		resp.Goal = goal
		resp.Progress = &progress
		return nil
	})

	if err := g.Wait(); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
