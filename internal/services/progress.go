package services

import (
	"time"

	"github.com/shopspring/decimal"

	"dompet/internal/models"
)

var hundred = decimal.NewFromInt(100)

// GoalProgress holds the figures derived from a goal's budget, savings and end date.
type GoalProgress struct {
	GoalID                     string          `json:"goal_id"`
	TotalBudget                decimal.Decimal `json:"total_budget"`
	CurrentAmount              decimal.Decimal `json:"current_amount"`
	RemainingAmount            decimal.Decimal `json:"remaining_amount"`
	ProgressPercent            float64         `json:"progress_percent"`
	DaysRemaining              int             `json:"days_remaining"`
	WeeksRemaining             int             `json:"weeks_remaining"`
	MonthsRemaining            int             `json:"months_remaining"`
	MinimumWeeklyContribution  decimal.Decimal `json:"minimum_weekly_contribution"`
	MinimumMonthlyContribution decimal.Decimal `json:"minimum_monthly_contribution"`
}

// ComputeProgress derives progress figures for goal as of now.
// A non-positive budget reports 0%. Days are clamped at 0 once the end date
// has passed, which makes every contribution figure 0. Contributions are also
// 0 when the goal is already fully funded.
func ComputeProgress(goal *models.Goal, now time.Time) GoalProgress {
	p := GoalProgress{
		GoalID:                     goal.ID,
		TotalBudget:                goal.TotalBudget,
		CurrentAmount:              goal.CurrentAmount,
		RemainingAmount:            goal.TotalBudget.Sub(goal.CurrentAmount),
		MinimumWeeklyContribution:  decimal.Zero,
		MinimumMonthlyContribution: decimal.Zero,
	}

	if goal.TotalBudget.IsPositive() {
		pct := goal.CurrentAmount.Div(goal.TotalBudget).Mul(hundred)
		if pct.IsNegative() {
			pct = decimal.Zero
		}
		if pct.GreaterThan(hundred) {
			pct = hundred
		}
		p.ProgressPercent = pct.Round(2).InexactFloat64()
	}

	days := daysUntil(goal.EndDate, now)
	p.DaysRemaining = days
	p.WeeksRemaining = ceilDiv(days, 7)
	p.MonthsRemaining = ceilDiv(days, 30)

	if p.RemainingAmount.IsPositive() {
		p.MinimumWeeklyContribution = perPeriod(p.RemainingAmount, p.WeeksRemaining)
		p.MinimumMonthlyContribution = perPeriod(p.RemainingAmount, p.MonthsRemaining)
	}
	return p
}

const secondsPerDay = 24 * 60 * 60

// daysUntil returns ceil((end-now)/24h), or 0 once end is not after now.
// It works on Unix seconds because time.Duration saturates near 292 years.
func daysUntil(end, now time.Time) int {
	if !end.After(now) {
		return 0
	}
	secs := end.Unix() - now.Unix()
	nanos := end.Nanosecond() - now.Nanosecond()
	if nanos < 0 {
		secs--
		nanos += int(time.Second)
	}
	days := secs / secondsPerDay
	if secs%secondsPerDay != 0 || nanos > 0 {
		days++
	}
	return int(days)
}

func ceilDiv(n, d int) int {
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}

func perPeriod(remaining decimal.Decimal, periods int) decimal.Decimal {
	if periods <= 0 {
		return decimal.Zero
	}
	return remaining.Div(decimal.NewFromInt(int64(periods))).Ceil()
}
