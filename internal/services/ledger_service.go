package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "dompet/internal/errors"
	"dompet/internal/models"
)

const (
	// maxTransactionList caps every transaction listing.
	maxTransactionList = 100

	defaultMonthsBack = 6
	maxMonthsBack     = 24
)

// ledgerService records income and expense against the user's cash account.
type ledgerService struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

// NewLedgerService creates a new LedgerServicer. Month windows are computed in loc.
func NewLedgerService(db *gorm.DB, loc *time.Location) LedgerServicer {
	if loc == nil {
		loc = time.UTC
	}
	return &ledgerService{db: db, loc: loc, now: time.Now}
}

// RecordTransaction validates the entry, rejects overdrafts before writing, then
// inserts the row and applies the balance delta in one database transaction.
// A failed balance update rolls back the insert.
func (s *ledgerService) RecordTransaction(ctx context.Context, userID string, input RecordTransactionInput) (*TransactionResult, error) {
	input.Amount = input.Amount.Round(2)
	if !input.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if input.Type != models.TransactionTypeIncome && input.Type != models.TransactionTypeExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if input.Date.IsZero() {
		input.Date = s.now()
	}

	db := s.db.WithContext(ctx)

	account, err := findAccount(db, userID)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if _, err := findVisibleCategory(db, userID, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	if input.Type == models.TransactionTypeExpense && input.Amount.GreaterThan(account.Balance) {
		return nil, apperrors.ErrInsufficientBalance
	}

	txn := &models.Transaction{
		UserID:     userID,
		AccountID:  account.ID,
		CategoryID: input.CategoryID,
		Type:       input.Type,
		Amount:     input.Amount,
		Note:       input.Note,
		Date:       input.Date.UTC(),
	}

	var newBalance decimal.Decimal
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrTransactionInsert, err)
		}
		if err := applyBalanceDelta(tx, account.ID, txn.Type.Sign(), txn.Amount); err != nil {
			return err
		}
		var readErr error
		newBalance, readErr = readBalance(tx, account.ID)
		return readErr
	})
	if err != nil {
		return nil, err
	}

	return &TransactionResult{Transaction: txn, NewBalance: newBalance}, nil
}

// applyBalanceDelta moves the balance by sign*amount in a single UPDATE. A
// decrease is guarded so the balance can never go below zero.
func applyBalanceDelta(tx *gorm.DB, accountID string, sign int, amount decimal.Decimal) error {
	q := tx.Model(&models.Account{}).Where("id = ?", accountID)

	var res *gorm.DB
	if sign < 0 {
		res = q.Where("balance >= ?", amount).Update("balance", gorm.Expr("balance - ?", amount))
	} else {
		res = q.Update("balance", gorm.Expr("balance + ?", amount))
	}

	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrBalanceUpdate, res.Error)
	}
	if res.RowsAffected == 0 {
		if sign < 0 {
			return apperrors.ErrInsufficientBalance
		}
		return apperrors.Wrap(apperrors.ErrBalanceUpdate, fmt.Errorf("account %s not updated", accountID))
	}
	return nil
}

func readBalance(tx *gorm.DB, accountID string) (decimal.Decimal, error) {
	var account models.Account
	if err := tx.Select("balance").Where("id = ?", accountID).First(&account).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrBalanceUpdate, err)
	}
	return account.Balance, nil
}

// ListTransactions returns the user's non-deleted transactions, newest first.
func (s *ledgerService) ListTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, error) {
	limit := filter.Limit
	if limit <= 0 || limit > maxTransactionList {
		limit = maxTransactionList
	}

	q := s.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ?", userID)
	q = applyTransactionFilters(q, filter)

	var transactions []models.Transaction
	if err := q.Order("date_transaction DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return transactions, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date_transaction >= ?", f.FromDate.UTC())
	}
	if f.ToDate != nil {
		q = q.Where("date_transaction < ?", f.ToDate.UTC())
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.ExcludeReceipts {
		q = q.Where("file IS NULL OR file = ''")
	}
	if f.OnlyReceipts {
		q = q.Where("file IS NOT NULL AND file <> ''")
	}
	return q
}

// GetTransaction retrieves a non-deleted transaction owned by the user.
func (s *ledgerService) GetTransaction(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	return findTransaction(s.db.WithContext(ctx).Preload("Category"), userID, transactionID)
}

func findTransaction(db *gorm.DB, userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// DeleteTransaction soft-deletes the entry and reverses its balance effect.
// Returns the balance after the reversal.
func (s *ledgerService) DeleteTransaction(ctx context.Context, userID, transactionID string) (decimal.Decimal, error) {
	var newBalance decimal.Decimal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		transaction, err := findTransaction(tx, userID, transactionID)
		if err != nil {
			return err
		}

		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if transaction.Amount.IsPositive() {
			if err := applyBalanceDelta(tx, transaction.AccountID, -transaction.Type.Sign(), transaction.Amount); err != nil {
				return err
			}
		}

		newBalance, err = readBalance(tx, transaction.AccountID)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

type monthRow struct {
	Type   models.TransactionType
	Amount decimal.Decimal
	Date   time.Time `gorm:"column:date_transaction"`
}

// MonthlyAggregate sums income and expense for each of the trailing months,
// including the current one, over half-open month intervals.
func (s *ledgerService) MonthlyAggregate(ctx context.Context, userID string, monthsBack int) (*MonthlyAggregate, error) {
	if monthsBack <= 0 {
		monthsBack = defaultMonthsBack
	}
	if monthsBack > maxMonthsBack {
		monthsBack = maxMonthsBack
	}

	current := MonthStart(s.now(), s.loc)
	windowStart := current.AddDate(0, -(monthsBack - 1), 0)
	windowEnd := current.AddDate(0, 1, 0)

	var rows []monthRow
	if err := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("type, amount, date_transaction").
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Where("date_transaction >= ? AND date_transaction < ?", windowStart.UTC(), windowEnd.UTC()).
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	months := make([]MonthTotals, monthsBack)
	index := make(map[string]int, monthsBack)
	for i := range months {
		label := windowStart.AddDate(0, i, 0).Format("2006-01")
		months[i] = MonthTotals{Month: label, Income: decimal.Zero, Expense: decimal.Zero}
		index[label] = i
	}

	for _, r := range rows {
		i, ok := index[r.Date.In(s.loc).Format("2006-01")]
		if !ok {
			continue
		}
		switch r.Type {
		case models.TransactionTypeIncome:
			months[i].Income = months[i].Income.Add(r.Amount)
		case models.TransactionTypeExpense:
			months[i].Expense = months[i].Expense.Add(r.Amount)
		}
	}
	for i := range months {
		months[i].Income = months[i].Income.Round(2)
		months[i].Expense = months[i].Expense.Round(2)
		months[i].Net = months[i].Income.Sub(months[i].Expense)
	}

	result := &MonthlyAggregate{Months: months, Current: months[len(months)-1]}
	if len(months) > 1 {
		result.Previous = months[len(months)-2]
	} else {
		result.Previous = MonthTotals{
			Month:   current.AddDate(0, -1, 0).Format("2006-01"),
			Income:  decimal.Zero,
			Expense: decimal.Zero,
			Net:     decimal.Zero,
		}
	}
	return result, nil
}

type breakdownRow struct {
	Name  string
	Type  models.TransactionType
	Total decimal.Decimal
	Count int64
}

// CategoryBreakdown groups the period's transactions by category name and
// direction. Transactions without a category are reported under "Other".
func (s *ledgerService) CategoryBreakdown(ctx context.Context, userID string, monthStart, monthEnd time.Time) (*CategoryBreakdown, error) {
	if !monthEnd.After(monthStart) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "period end must be after period start")
	}

	var rows []breakdownRow
	if err := s.db.WithContext(ctx).
		Table("transactions AS t").
		Select("COALESCE(c.name, ?) AS name, t.type AS type, SUM(t.amount) AS total, COUNT(*) AS count", models.FallbackCategoryName).
		Joins("LEFT JOIN categories AS c ON c.id = t.category_id").
		Where("t.user_id = ? AND t.deleted_at IS NULL", userID).
		Where("t.date_transaction >= ? AND t.date_transaction < ?", monthStart.UTC(), monthEnd.UTC()).
		Group("c.name, t.type").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &CategoryBreakdown{
		Month:             monthStart.In(s.loc).Format("2006-01"),
		IncomeByCategory:  map[string]decimal.Decimal{},
		ExpenseByCategory: map[string]decimal.Decimal{},
		TotalIncome:       decimal.Zero,
		TotalExpense:      decimal.Zero,
	}
	for _, r := range rows {
		r.Total = r.Total.Round(2)
		result.TransactionCount += r.Count
		switch r.Type {
		case models.TransactionTypeIncome:
			result.IncomeByCategory[r.Name] = result.IncomeByCategory[r.Name].Add(r.Total)
			result.TotalIncome = result.TotalIncome.Add(r.Total)
		case models.TransactionTypeExpense:
			result.ExpenseByCategory[r.Name] = result.ExpenseByCategory[r.Name].Add(r.Total)
			result.TotalExpense = result.TotalExpense.Add(r.Total)
		}
	}
	return result, nil
}

// MonthStart returns midnight on the first day of t's month in loc.
func MonthStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}
