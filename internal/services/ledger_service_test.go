package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "dompet/internal/errors"
	"dompet/internal/models"
	"dompet/internal/testutil"
)

var wib = time.FixedZone("WIB", 7*60*60)

func newTestLedger(db *gorm.DB, now time.Time) *ledgerService {
	return &ledgerService{db: db, loc: wib, now: func() time.Time { return now }}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func balanceOf(t *testing.T, db *gorm.DB, accountID string) decimal.Decimal {
	t.Helper()
	var account models.Account
	if err := db.Where("id = ?", accountID).First(&account).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	return account.Balance
}

func countTransactions(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Transaction{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	return n
}

func TestRecordTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("expense_decreases_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLedgerService(db, wib)
		user, account := testutil.CreateTestUserWithAccount(t, db, "800000")

		result, err := svc.RecordTransaction(ctx, user.ID, RecordTransactionInput{
			Type:   models.TransactionTypeExpense,
			Amount: dec("50000"),
			Date:   time.Now(),
		})
		testutil.AssertNoError(t, err)

		if result.Transaction.ID == "" {
			t.Fatal("expected transaction ID")
		}
		testutil.AssertDecimal(t, result.NewBalance, "750000")
		testutil.AssertDecimal(t, balanceOf(t, db, account.ID), "750000")
		if n := countTransactions(t, db, user.ID); n != 1 {
			t.Errorf("expected 1 transaction row, got %d", n)
		}
	})

	t.Run("income_increases_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLedgerService(db, wib)
		user, account := testutil.CreateTestUserWithAccount(t, db, "100000")

		result, err := svc.RecordTransaction(ctx, user.ID, RecordTransactionInput{
			Type:   models.TransactionTypeIncome,
			Amount: dec("2500.50"),
		})
		testutil.AssertNoError(t, err)

		testutil.AssertDecimal(t, result.NewBalance, "102500.50")
		testutil.AssertDecimal(t, balanceOf(t, db, account.ID), "102500.50")
		if result.Transaction.Date.IsZero() {
			t.Error("expected date to default to now")
		}
	})

	t.Run("expense_of_entire_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLedgerService(db, wib)
		user, account := testutil.CreateTestUserWithAccount(t, db, "100000")

		_, err := svc.RecordTransaction(ctx, user.ID, RecordTransactionInput{
			Type:   models.TransactionTypeExpense,
			Amount: dec("100000"),
		})
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, balanceOf(t, db, account.ID), "0")
	})

	t.Run("insufficient_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLedgerService(db, wib)
		user, account := testutil.CreateTestUserWithAccount(t, db, "100000")

		_, err := svc.RecordTransaction(ctx, user.ID, RecordTransactionInput{
			Type:   models.TransactionTypeExpense,
			Amount: dec("150000"),
		})
		testutil.AssertAppError(t, err, "INSUFFICIENT_BALANCE")

		testutil.AssertDecimal(t, balanceOf(t, db, account.ID), "100000")
		if n := countTransactions(t, db, user.ID); n != 0 {
			t.Errorf("expected no transaction rows, got %d", n)
		}
	})

	t.Run("repeated_invalid_requests_do_not_write", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLedgerService(db, wib)
		user, account := testutil.CreateTestUserWithAccount(t, db, "1000")

		inputs := []RecordTransactionInput{
			{Type: models.TransactionTypeExpense, Amount: dec("0")},
			{Type: models.TransactionTypeIncome, Amount: dec("-10")},
			{Type: models.TransactionType("transfer"), Amount: dec("10")},
			{Type: models.TransactionTypeExpense, Amount: dec("5000")},
		}
		for i := 0; i < 3; i++ {
			for _, in := range inputs {
				if _, err := svc.RecordTransaction(ctx, user.ID, in); err == nil {
					t.Fatalf("expected error for %+v", in)
				}
			}
		}

		testutil.AssertDecimal(t, balanceOf(t, db, account.ID), "1000")
		if n := countTransactions(t, db, user.ID); n != 0 {
			t.Errorf("expected no transaction rows, got %d", n)
		}
	})

	t.Run("invalid_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLedgerService(db, wib)
		user, _ := testutil.CreateTestUserWithAccount(t, db, "1000")

		_, err := svc.RecordTransaction(ctx, user.ID, RecordTransactionInput{
			Type:   models.TransactionType("transfer"),
			Amount: dec("10"),
		})
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
	})

	t.Run("sub_cent_amount_rounds_to_zero", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLedgerService(db, wib)
		user, _ := testutil.CreateTestUserWithAccount(t, db, "1000")

		_, err := svc.RecordTransaction(ctx, user.ID, RecordTransactionInput{
			Type:   models.TransactionTypeIncome,
			Amount: dec("0.001"),
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("no_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLedgerService(db, wib)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.RecordTransaction(ctx, user.ID, RecordTransactionInput{
			Type:   models.TransactionTypeIncome,
			Amount: dec("10"),
		})
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("with_own_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLedgerService(db, wib)
		user, _ := testutil.CreateTestUserWithAccount(t, db, "1000")
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)

		result, err := svc.RecordTransaction(ctx, user.ID, RecordTransactionInput{
			Type:       models.TransactionTypeIncome,
			Amount:     dec("10"),
			CategoryID: &category.ID,
		})
		testutil.AssertNoError(t, err)
		if result.Transaction.CategoryID == nil || *result.Transaction.CategoryID != category.ID {
			t.Errorf("expected category %s, got %v", category.ID, result.Transaction.CategoryID)
		}
	})

	t.Run("with_default_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLedgerService(db, wib)
		user, _ := testutil.CreateTestUserWithAccount(t, db, "1000")

		var salary models.Category
		if err := db.Where("user_id IS NULL AND name = ?", "Salary").First(&salary).Error; err != nil {
			t.Fatalf("load default category: %v", err)
		}

		_, err := svc.RecordTransaction(ctx, user.ID, RecordTransactionInput{
			Type:       models.TransactionTypeIncome,
			Amount:     dec("10"),
			CategoryID: &salary.ID,
		})
		testutil.AssertNoError(t, err)
	})

	t.Run("other_users_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLedgerService(db, wib)
		user, account := testutil.CreateTestUserWithAccount(t, db, "1000")
		other := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, other.ID, models.CategoryTypeExpense)

		_, err := svc.RecordTransaction(ctx, user.ID, RecordTransactionInput{
			Type:       models.TransactionTypeExpense,
			Amount:     dec("10"),
			CategoryID: &category.ID,
		})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
		testutil.AssertDecimal(t, balanceOf(t, db, account.ID), "1000")
	})

	t.Run("balance_update_failure_removes_row", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLedgerService(db, wib)
		user, account := testutil.CreateTestUserWithAccount(t, db, "800000")

		err := db.Callback().Update().Before("gorm:update").Register("test:fail_balance", func(d *gorm.DB) {
			if d.Statement.Table == "accounts" {
				_ = d.AddError(errors.New("simulated write failure"))
			}
		})
		testutil.AssertNoError(t, err)

		_, err = svc.RecordTransaction(ctx, user.ID, RecordTransactionInput{
			Type:   models.TransactionTypeExpense,
			Amount: dec("50000"),
		})
		testutil.AssertAppError(t, err, "BALANCE_UPDATE_FAILED")

		if n := countTransactions(t, db, user.ID); n != 0 {
			t.Errorf("expected inserted row to be removed, found %d", n)
		}
		testutil.AssertDecimal(t, balanceOf(t, db, account.ID), "800000")
	})

	t.Run("insert_failure_leaves_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLedgerService(db, wib)
		user, account := testutil.CreateTestUserWithAccount(t, db, "800000")

		err := db.Callback().Create().Before("gorm:create").Register("test:fail_insert", func(d *gorm.DB) {
			if d.Statement.Table == "transactions" {
				_ = d.AddError(errors.New("simulated insert failure"))
			}
		})
		testutil.AssertNoError(t, err)

		_, err = svc.RecordTransaction(ctx, user.ID, RecordTransactionInput{
			Type:   models.TransactionTypeIncome,
			Amount: dec("50000"),
		})
		testutil.AssertAppError(t, err, "TRANSACTION_INSERT_FAILED")
		testutil.AssertDecimal(t, balanceOf(t, db, account.ID), "800000")
	})

	t.Run("concurrent_expenses_never_overdraw", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLedgerService(db, wib)
		user, account := testutil.CreateTestUserWithAccount(t, db, "100000")

		const workers = 5
		errs := make([]error, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.RecordTransaction(ctx, user.ID, RecordTransactionInput{
					Type:   models.TransactionTypeExpense,
					Amount: dec("30000"),
				})
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperrors.ErrInsufficientBalance):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
		if succeeded != 3 {
			t.Errorf("expected 3 successful expenses, got %d", succeeded)
		}
		testutil.AssertDecimal(t, balanceOf(t, db, account.ID), "10000")
		if n := countTransactions(t, db, user.ID); n != 3 {
			t.Errorf("expected 3 rows, got %d", n)
		}
	})
}

func TestListTransactions(t *testing.T) {
	ctx := context.Background()

	t.Run("orders_and_filters", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLedgerService(db, wib)
		user, account := testutil.CreateTestUserWithAccount(t, db, "0")

		day := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
		older := testutil.CreateTestTransaction(t, db, account, models.TransactionTypeIncome, "10", day.AddDate(0, 0, -1))
		newer := testutil.CreateTestTransaction(t, db, account, models.TransactionTypeExpense, "5", day)

		path := "u/receipt.png"
		receipt := testutil.CreateTestTransaction(t, db, account, models.TransactionTypeExpense, "0", day.AddDate(0, 0, 1))
		db.Model(receipt).Update("file", path)

		deleted := testutil.CreateTestTransaction(t, db, account, models.TransactionTypeIncome, "1", day)
		db.Delete(deleted)

		manual, err := svc.ListTransactions(ctx, user.ID, TransactionFilter{ExcludeReceipts: true})
		testutil.AssertNoError(t, err)
		if len(manual) != 2 {
			t.Fatalf("expected 2 manual transactions, got %d", len(manual))
		}
		if manual[0].ID != newer.ID || manual[1].ID != older.ID {
			t.Errorf("expected newest first, got %s then %s", manual[0].ID, manual[1].ID)
		}

		uploaded, err := svc.ListTransactions(ctx, user.ID, TransactionFilter{OnlyReceipts: true})
		testutil.AssertNoError(t, err)
		if len(uploaded) != 1 || uploaded[0].ID != receipt.ID {
			t.Errorf("expected only the receipt, got %d rows", len(uploaded))
		}

		all, err := svc.ListTransactions(ctx, user.ID, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if len(all) != 3 {
			t.Errorf("expected 3 non-deleted transactions, got %d", len(all))
		}

		expense := models.TransactionTypeExpense
		expenses, err := svc.ListTransactions(ctx, user.ID, TransactionFilter{Type: &expense, ExcludeReceipts: true})
		testutil.AssertNoError(t, err)
		if len(expenses) != 1 || expenses[0].ID != newer.ID {
			t.Errorf("expected one expense, got %d", len(expenses))
		}
	})

	t.Run("caps_at_100", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLedgerService(db, wib)
		user, account := testutil.CreateTestUserWithAccount(t, db, "0")

		base := time.Now().AddDate(0, 0, -1)
		for i := 0; i < 105; i++ {
			testutil.CreateTestTransaction(t, db, account, models.TransactionTypeIncome, "1", base.Add(time.Duration(i)*time.Minute))
		}

		list, err := svc.ListTransactions(ctx, user.ID, TransactionFilter{Limit: 500})
		testutil.AssertNoError(t, err)
		if len(list) != 100 {
			t.Errorf("expected 100 rows, got %d", len(list))
		}
	})

	t.Run("other_users_rows_hidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLedgerService(db, wib)
		user, _ := testutil.CreateTestUserWithAccount(t, db, "0")
		_, otherAccount := testutil.CreateTestUserWithAccount(t, db, "0")
		testutil.CreateTestTransaction(t, db, otherAccount, models.TransactionTypeIncome, "1", time.Now())

		list, err := svc.ListTransactions(ctx, user.ID, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if len(list) != 0 {
			t.Errorf("expected empty list, got %d", len(list))
		}
	})
}

func TestGetTransaction(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewLedgerService(db, wib)
	user, account := testutil.CreateTestUserWithAccount(t, db, "0")
	other := testutil.CreateTestUser(t, db)
	txn := testutil.CreateTestTransaction(t, db, account, models.TransactionTypeIncome, "10", time.Now())

	got, err := svc.GetTransaction(ctx, user.ID, txn.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertDecimal(t, got.Amount, "10")

	_, err = svc.GetTransaction(ctx, other.ID, txn.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("reverses_expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLedgerService(db, wib)
		user, account := testutil.CreateTestUserWithAccount(t, db, "800000")

		result, err := svc.RecordTransaction(ctx, user.ID, RecordTransactionInput{Type: models.TransactionTypeExpense, Amount: dec("50000")})
		testutil.AssertNoError(t, err)

		balance, err := svc.DeleteTransaction(ctx, user.ID, result.Transaction.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, balance, "800000")
		testutil.AssertDecimal(t, balanceOf(t, db, account.ID), "800000")

		_, err = svc.GetTransaction(ctx, user.ID, result.Transaction.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

		var raw int64
		db.Unscoped().Model(&models.Transaction{}).Where("id = ?", result.Transaction.ID).Count(&raw)
		if raw != 1 {
			t.Errorf("expected the row to be soft-deleted, found %d rows", raw)
		}
	})

	t.Run("spent_income_cannot_be_removed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLedgerService(db, wib)
		user, account := testutil.CreateTestUserWithAccount(t, db, "0")

		income, err := svc.RecordTransaction(ctx, user.ID, RecordTransactionInput{Type: models.TransactionTypeIncome, Amount: dec("1000")})
		testutil.AssertNoError(t, err)
		_, err = svc.RecordTransaction(ctx, user.ID, RecordTransactionInput{Type: models.TransactionTypeExpense, Amount: dec("600")})
		testutil.AssertNoError(t, err)

		_, err = svc.DeleteTransaction(ctx, user.ID, income.Transaction.ID)
		testutil.AssertAppError(t, err, "INSUFFICIENT_BALANCE")

		testutil.AssertDecimal(t, balanceOf(t, db, account.ID), "400")
		_, err = svc.GetTransaction(ctx, user.ID, income.Transaction.ID)
		testutil.AssertNoError(t, err)
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLedgerService(db, wib)
		user, _ := testutil.CreateTestUserWithAccount(t, db, "0")

		_, err := svc.DeleteTransaction(ctx, user.ID, "0192f1a0-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestMonthlyAggregate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 15, 10, 0, 0, 0, wib)

	t.Run("only_month_three_has_activity", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLedger(db, now)
		user, account := testutil.CreateTestUserWithAccount(t, db, "0")

		testutil.CreateTestTransaction(t, db, account, models.TransactionTypeIncome, "500000", time.Date(2026, 3, 1, 0, 0, 0, 0, wib))
		testutil.CreateTestTransaction(t, db, account, models.TransactionTypeExpense, "125000", time.Date(2026, 3, 14, 12, 0, 0, 0, wib))
		testutil.CreateTestTransaction(t, db, account, models.TransactionTypeExpense, "25000", time.Date(2026, 3, 31, 23, 30, 0, 0, wib))

		agg, err := svc.MonthlyAggregate(ctx, user.ID, 6)
		testutil.AssertNoError(t, err)

		if len(agg.Months) != 6 {
			t.Fatalf("expected 6 months, got %d", len(agg.Months))
		}
		wantLabels := []string{"2026-01", "2026-02", "2026-03", "2026-04", "2026-05", "2026-06"}
		for i, m := range agg.Months {
			if m.Month != wantLabels[i] {
				t.Errorf("month %d: expected %s, got %s", i, wantLabels[i], m.Month)
			}
			if i == 2 {
				testutil.AssertDecimal(t, m.Income, "500000")
				testutil.AssertDecimal(t, m.Expense, "150000")
				testutil.AssertDecimal(t, m.Net, "350000")
				continue
			}
			testutil.AssertDecimal(t, m.Income, "0")
			testutil.AssertDecimal(t, m.Expense, "0")
		}
		if agg.Current.Month != "2026-06" || agg.Previous.Month != "2026-05" {
			t.Errorf("unexpected current/previous %s/%s", agg.Current.Month, agg.Previous.Month)
		}
	})

	t.Run("month_boundaries_are_half_open", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLedger(db, now)
		user, account := testutil.CreateTestUserWithAccount(t, db, "0")

		testutil.CreateTestTransaction(t, db, account, models.TransactionTypeIncome, "1", time.Date(2026, 5, 31, 23, 59, 59, 0, wib))
		testutil.CreateTestTransaction(t, db, account, models.TransactionTypeIncome, "2", time.Date(2026, 6, 1, 0, 0, 0, 0, wib))
		testutil.CreateTestTransaction(t, db, account, models.TransactionTypeIncome, "4", time.Date(2026, 7, 1, 0, 0, 0, 0, wib))
		testutil.CreateTestTransaction(t, db, account, models.TransactionTypeIncome, "8", time.Date(2025, 12, 31, 23, 0, 0, 0, wib))

		agg, err := svc.MonthlyAggregate(ctx, user.ID, 0)
		testutil.AssertNoError(t, err)

		testutil.AssertDecimal(t, agg.Previous.Income, "1")
		testutil.AssertDecimal(t, agg.Current.Income, "2")
		testutil.AssertDecimal(t, agg.Months[0].Income, "0")
	})

	t.Run("deleted_rows_excluded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLedger(db, now)
		user, account := testutil.CreateTestUserWithAccount(t, db, "0")

		txn := testutil.CreateTestTransaction(t, db, account, models.TransactionTypeExpense, "100", now)
		db.Delete(txn)

		agg, err := svc.MonthlyAggregate(ctx, user.ID, 3)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, agg.Current.Expense, "0")
	})

	t.Run("months_back_is_capped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLedger(db, now)
		user, _ := testutil.CreateTestUserWithAccount(t, db, "0")

		agg, err := svc.MonthlyAggregate(ctx, user.ID, 100)
		testutil.AssertNoError(t, err)
		if len(agg.Months) != maxMonthsBack {
			t.Errorf("expected %d months, got %d", maxMonthsBack, len(agg.Months))
		}
	})
}

func TestCategoryBreakdown(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 15, 10, 0, 0, 0, wib)

	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestLedger(db, now)
	user, account := testutil.CreateTestUserWithAccount(t, db, "0")
	food := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	salary := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)

	in := func(txType models.TransactionType, amount string, categoryID *string, date time.Time) {
		txn := testutil.CreateTestTransaction(t, db, account, txType, amount, date)
		if categoryID != nil {
			db.Model(txn).Update("category_id", *categoryID)
		}
	}
	june := time.Date(2026, 6, 3, 9, 0, 0, 0, wib)
	in(models.TransactionTypeExpense, "20000", &food.ID, june)
	in(models.TransactionTypeExpense, "15000", &food.ID, june)
	in(models.TransactionTypeExpense, "7000", nil, june)
	in(models.TransactionTypeIncome, "900000", &salary.ID, june)
	in(models.TransactionTypeExpense, "99", &food.ID, time.Date(2026, 5, 31, 23, 0, 0, 0, wib))

	start := MonthStart(now, wib)
	result, err := svc.CategoryBreakdown(ctx, user.ID, start, start.AddDate(0, 1, 0))
	testutil.AssertNoError(t, err)

	if result.Month != "2026-06" {
		t.Errorf("expected month 2026-06, got %s", result.Month)
	}
	testutil.AssertDecimal(t, result.ExpenseByCategory[food.Name], "35000")
	testutil.AssertDecimal(t, result.ExpenseByCategory[models.FallbackCategoryName], "7000")
	testutil.AssertDecimal(t, result.IncomeByCategory[salary.Name], "900000")
	testutil.AssertDecimal(t, result.TotalExpense, "42000")
	testutil.AssertDecimal(t, result.TotalIncome, "900000")
	if result.TransactionCount != 4 {
		t.Errorf("expected 4 transactions, got %d", result.TransactionCount)
	}

	_, err = svc.CategoryBreakdown(ctx, user.ID, start, start)
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}
