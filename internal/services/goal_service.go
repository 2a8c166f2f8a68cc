package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "dompet/internal/errors"
	"dompet/internal/models"
	"dompet/internal/pagination"
)

// goalService manages savings goals, their items and deposits.
type goalService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB) GoalServicer {
	return &goalService{db: db, now: time.Now}
}

func validateGoalInput(input GoalInput) error {
	if strings.TrimSpace(input.Destination) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "destination is required")
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "start_date and end_date are required")
	}
	if input.EndDate.Before(input.StartDate) {
		return apperrors.ErrInvalidGoalDates
	}
	if input.TotalBudget.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "total_budget must not be negative")
	}
	for _, item := range input.Items {
		if strings.TrimSpace(item.ItemName) == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "item_name is required")
		}
		if item.CostIDR.IsNegative() {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "cost_idr must not be negative")
		}
	}
	return nil
}

// CreateGoal writes the goal and its items in one database transaction.
func (s *goalService) CreateGoal(ctx context.Context, userID string, input GoalInput) (*models.Goal, error) {
	if err := validateGoalInput(input); err != nil {
		return nil, err
	}

	goal := &models.Goal{
		UserID:      userID,
		Destination: strings.TrimSpace(input.Destination),
		StartDate:   input.StartDate.UTC(),
		EndDate:     input.EndDate.UTC(),
		TotalBudget: input.TotalBudget.Round(2),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(goal).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		items, err := insertGoalItems(tx, goal.ID, input.Items)
		if err != nil {
			return err
		}
		goal.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return goal, nil
}

// insertGoalItems resolves category names and bulk-inserts the items.
// Unknown category names leave the item uncategorized.
func insertGoalItems(tx *gorm.DB, goalID string, inputs []GoalItemInput) ([]models.GoalItem, error) {
	items := make([]models.GoalItem, 0, len(inputs))
	if len(inputs) == 0 {
		return items, nil
	}

	var categories []models.GoalItemCategory
	if err := tx.Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	byName := make(map[string]string, len(categories))
	for _, c := range categories {
		byName[strings.ToLower(c.Name)] = c.ID
	}

	for _, in := range inputs {
		item := models.GoalItem{
			GoalID:   goalID,
			ItemName: strings.TrimSpace(in.ItemName),
			CostIDR:  in.CostIDR.Round(2),
			Notes:    in.Notes,
		}
		if id, ok := byName[strings.ToLower(strings.TrimSpace(in.Category))]; ok {
			item.CategoryID = &id
		}
		items = append(items, item)
	}

	if err := tx.Create(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return items, nil
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Preload("Items.Category")
}

// GetLatestGoal returns the user's most recently created goal, or nil.
func (s *goalService) GetLatestGoal(ctx context.Context, userID string) (*models.Goal, error) {
	var goals []models.Goal
	if err := s.db.WithContext(ctx).
		Scopes(withItems).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(1).
		Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(goals) == 0 {
		return nil, nil
	}
	return &goals[0], nil
}

// GetGoal retrieves a goal with its items for a specific user.
func (s *goalService) GetGoal(ctx context.Context, userID, goalID string) (*models.Goal, error) {
	return findGoal(s.db.WithContext(ctx).Scopes(withItems), userID, goalID)
}

func findGoal(db *gorm.DB, userID, goalID string) (*models.Goal, error) {
	var goal models.Goal
	if err := db.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}

// ReplaceGoal updates the scalar fields and swaps the whole item set.
func (s *goalService) ReplaceGoal(ctx context.Context, userID, goalID string, input GoalInput) (*models.Goal, error) {
	if err := validateGoalInput(input); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		goal, err := findGoal(tx, userID, goalID)
		if err != nil {
			return err
		}

		if err := tx.Model(goal).Updates(map[string]interface{}{
			"destination":  strings.TrimSpace(input.Destination),
			"start_date":   input.StartDate.UTC(),
			"end_date":     input.EndDate.UTC(),
			"total_budget": input.TotalBudget.Round(2),
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Where("goal_id = ?", goal.ID).Delete(&models.GoalItem{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		_, err = insertGoalItems(tx, goal.ID, input.Items)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.GetGoal(ctx, userID, goalID)
}

// DeleteGoalItem removes one item from the user's goal.
func (s *goalService) DeleteGoalItem(ctx context.Context, userID, goalID, itemID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findGoal(tx, userID, goalID); err != nil {
			return err
		}
		res := tx.Where("id = ? AND goal_id = ?", itemID, goalID).Delete(&models.GoalItem{})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrGoalItemNotFound
		}
		return nil
	})
}

// AddDeposit records a deposit and increments the goal's current amount in
// the same database transaction, returning the new total.
func (s *goalService) AddDeposit(ctx context.Context, userID, goalID string, amount decimal.Decimal) (*DepositResult, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	deposit := &models.GoalDeposit{GoalID: goalID, Amount: amount}
	var total decimal.Decimal

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findGoal(tx, userID, goalID); err != nil {
			return err
		}
		if err := tx.Create(deposit).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		res := tx.Model(&models.Goal{}).
			Where("id = ?", goalID).
			Update("current_amount", gorm.Expr("current_amount + ?", amount))
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}

		var goal models.Goal
		if err := tx.Select("current_amount").Where("id = ?", goalID).First(&goal).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		total = goal.CurrentAmount
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &DepositResult{Deposit: deposit, TotalSavings: total}, nil
}

// ListDeposits returns a page of the goal's deposits, newest first.
func (s *goalService) ListDeposits(ctx context.Context, userID, goalID string, page pagination.PageRequest) (*pagination.PageResponse[models.GoalDeposit], error) {
	db := s.db.WithContext(ctx)
	if _, err := findGoal(db, userID, goalID); err != nil {
		return nil, err
	}

	page.Defaults()
	base := db.Model(&models.GoalDeposit{}).Where("goal_id = ?", goalID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var deposits []models.GoalDeposit
	if err := base.Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&deposits).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(deposits, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetProgress loads the goal and computes its progress as of now.
func (s *goalService) GetProgress(ctx context.Context, userID, goalID string) (*GoalProgress, error) {
	goal, err := findGoal(s.db.WithContext(ctx), userID, goalID)
	if err != nil {
		return nil, err
	}
	p := ComputeProgress(goal, s.now())
	return &p, nil
}
