package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dompet/internal/models"
	"dompet/internal/pagination"
	"dompet/internal/testutil"
)

func goalInput(items ...GoalItemInput) GoalInput {
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	return GoalInput{
		Destination: "Bali",
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 10),
		TotalBudget: dec("20000000"),
		Items:       items,
	}
}

func sumDeposits(t *testing.T, svc GoalServicer, userID, goalID string) decimal.Decimal {
	t.Helper()
	page, err := svc.ListDeposits(context.Background(), userID, goalID, pagination.PageRequest{PageSize: 100})
	testutil.AssertNoError(t, err)
	total := decimal.Zero
	for _, d := range page.Data {
		total = total.Add(d.Amount)
	}
	return total
}

func TestCreateGoal(t *testing.T) {
	ctx := context.Background()

	t.Run("with_items", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db)
		user := testutil.CreateTestUser(t, db)

		goal, err := svc.CreateGoal(ctx, user.ID, goalInput(
			GoalItemInput{Category: "Transportation", ItemName: "Flight", CostIDR: dec("3500000")},
			GoalItemInput{Category: "accommodations", ItemName: "Hotel", CostIDR: dec("4000000"), Notes: "3 nights"},
			GoalItemInput{Category: "Snacks", ItemName: "Chips", CostIDR: dec("50000")},
		))
		testutil.AssertNoError(t, err)

		if goal.ID == "" {
			t.Fatal("expected goal ID")
		}
		testutil.AssertDecimal(t, goal.CurrentAmount, "0")

		got, err := svc.GetGoal(ctx, user.ID, goal.ID)
		testutil.AssertNoError(t, err)
		if len(got.Items) != 3 {
			t.Fatalf("expected 3 items, got %d", len(got.Items))
		}

		byName := map[string]models.GoalItem{}
		for _, item := range got.Items {
			byName[item.ItemName] = item
		}
		if id := byName["Flight"].CategoryID; id == nil || *id != testutil.GoalItemCategoryID(t, db, "Transportation") {
			t.Errorf("expected Flight to resolve to Transportation, got %v", id)
		}
		if id := byName["Hotel"].CategoryID; id == nil || *id != testutil.GoalItemCategoryID(t, db, "Accommodations") {
			t.Errorf("expected case-insensitive category match, got %v", id)
		}
		if byName["Chips"].CategoryID != nil {
			t.Error("expected unknown category to be left empty")
		}
		if byName["Hotel"].Category == nil || byName["Hotel"].Category.Name != "Accommodations" {
			t.Error("expected item category to be preloaded")
		}
	})

	t.Run("missing_destination", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db)
		user := testutil.CreateTestUser(t, db)

		in := goalInput()
		in.Destination = "  "
		_, err := svc.CreateGoal(ctx, user.ID, in)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("missing_dates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db)
		user := testutil.CreateTestUser(t, db)

		in := goalInput()
		in.EndDate = time.Time{}
		_, err := svc.CreateGoal(ctx, user.ID, in)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("end_before_start", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db)
		user := testutil.CreateTestUser(t, db)

		in := goalInput()
		in.EndDate = in.StartDate.AddDate(0, 0, -1)
		_, err := svc.CreateGoal(ctx, user.ID, in)
		testutil.AssertAppError(t, err, "INVALID_GOAL_DATES")

		var count int64
		db.Model(&models.Goal{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no goal rows, got %d", count)
		}
	})

	t.Run("same_day_goal", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db)
		user := testutil.CreateTestUser(t, db)

		in := goalInput()
		in.EndDate = in.StartDate
		_, err := svc.CreateGoal(ctx, user.ID, in)
		testutil.AssertNoError(t, err)
	})

	t.Run("item_without_name_rolls_back", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateGoal(ctx, user.ID, goalInput(GoalItemInput{Category: "Other", CostIDR: dec("1")}))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetLatestGoal(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGoalService(db)
	user := testutil.CreateTestUser(t, db)

	goal, err := svc.GetLatestGoal(ctx, user.ID)
	testutil.AssertNoError(t, err)
	if goal != nil {
		t.Fatalf("expected nil goal, got %+v", goal)
	}

	first, err := svc.CreateGoal(ctx, user.ID, goalInput())
	testutil.AssertNoError(t, err)
	db.Model(first).Update("created_at", time.Now().Add(-time.Hour))

	in := goalInput(GoalItemInput{Category: "Activities", ItemName: "Diving", CostIDR: dec("1500000")})
	in.Destination = "Lombok"
	second, err := svc.CreateGoal(ctx, user.ID, in)
	testutil.AssertNoError(t, err)

	latest, err := svc.GetLatestGoal(ctx, user.ID)
	testutil.AssertNoError(t, err)
	if latest == nil || latest.ID != second.ID {
		t.Fatalf("expected latest goal %s, got %+v", second.ID, latest)
	}
	if len(latest.Items) != 1 {
		t.Errorf("expected items to be loaded, got %d", len(latest.Items))
	}
}

func TestGetGoalOwnership(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGoalService(db)
	owner := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	goal, err := svc.CreateGoal(ctx, owner.ID, goalInput())
	testutil.AssertNoError(t, err)

	_, err = svc.GetGoal(ctx, other.ID, goal.ID)
	testutil.AssertAppError(t, err, "GOAL_NOT_FOUND")

	_, err = svc.AddDeposit(ctx, other.ID, goal.ID, dec("100"))
	testutil.AssertAppError(t, err, "GOAL_NOT_FOUND")

	_, err = svc.ReplaceGoal(ctx, other.ID, goal.ID, goalInput())
	testutil.AssertAppError(t, err, "GOAL_NOT_FOUND")
}

func TestReplaceGoal(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces_fields_and_items", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db)
		user := testutil.CreateTestUser(t, db)

		goal, err := svc.CreateGoal(ctx, user.ID, goalInput(
			GoalItemInput{Category: "Transportation", ItemName: "Flight", CostIDR: dec("3500000")},
			GoalItemInput{Category: "Activities", ItemName: "Snorkel", CostIDR: dec("500000")},
		))
		testutil.AssertNoError(t, err)
		_, err = svc.AddDeposit(ctx, user.ID, goal.ID, dec("1000000"))
		testutil.AssertNoError(t, err)

		in := goalInput(GoalItemInput{Category: "Other", ItemName: "Souvenirs", CostIDR: dec("250000")})
		in.Destination = "Yogyakarta"
		in.TotalBudget = dec("8000000")
		updated, err := svc.ReplaceGoal(ctx, user.ID, goal.ID, in)
		testutil.AssertNoError(t, err)

		if updated.Destination != "Yogyakarta" {
			t.Errorf("expected destination Yogyakarta, got %s", updated.Destination)
		}
		testutil.AssertDecimal(t, updated.TotalBudget, "8000000")
		testutil.AssertDecimal(t, updated.CurrentAmount, "1000000")
		if len(updated.Items) != 1 || updated.Items[0].ItemName != "Souvenirs" {
			t.Errorf("expected the item set to be replaced, got %+v", updated.Items)
		}

		var count int64
		db.Model(&models.GoalItem{}).Where("goal_id = ?", goal.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 item row, got %d", count)
		}
	})

	t.Run("invalid_input_keeps_items", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db)
		user := testutil.CreateTestUser(t, db)

		goal, err := svc.CreateGoal(ctx, user.ID, goalInput(GoalItemInput{Category: "Other", ItemName: "Keep", CostIDR: dec("1")}))
		testutil.AssertNoError(t, err)

		in := goalInput()
		in.EndDate = in.StartDate.AddDate(0, 0, -5)
		_, err = svc.ReplaceGoal(ctx, user.ID, goal.ID, in)
		testutil.AssertAppError(t, err, "INVALID_GOAL_DATES")

		got, err := svc.GetGoal(ctx, user.ID, goal.ID)
		testutil.AssertNoError(t, err)
		if len(got.Items) != 1 {
			t.Errorf("expected items to be untouched, got %d", len(got.Items))
		}
	})
}

func TestDeleteGoalItem(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGoalService(db)
	user := testutil.CreateTestUser(t, db)

	goal, err := svc.CreateGoal(ctx, user.ID, goalInput(
		GoalItemInput{Category: "Other", ItemName: "A", CostIDR: dec("1")},
		GoalItemInput{Category: "Other", ItemName: "B", CostIDR: dec("2")},
	))
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, svc.DeleteGoalItem(ctx, user.ID, goal.ID, goal.Items[0].ID))

	got, err := svc.GetGoal(ctx, user.ID, goal.ID)
	testutil.AssertNoError(t, err)
	if len(got.Items) != 1 || got.Items[0].ID != goal.Items[1].ID {
		t.Errorf("expected only item B to remain, got %+v", got.Items)
	}

	err = svc.DeleteGoalItem(ctx, user.ID, goal.ID, goal.Items[0].ID)
	testutil.AssertAppError(t, err, "GOAL_ITEM_NOT_FOUND")
}

func TestAddDeposit(t *testing.T) {
	ctx := context.Background()

	t.Run("sequential_deposits", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db)
		user := testutil.CreateTestUser(t, db)
		goal, err := svc.CreateGoal(ctx, user.ID, goalInput())
		testutil.AssertNoError(t, err)

		first, err := svc.AddDeposit(ctx, user.ID, goal.ID, dec("2000000"))
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, first.TotalSavings, "2000000")

		second, err := svc.AddDeposit(ctx, user.ID, goal.ID, dec("4200000"))
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, second.TotalSavings, "6200000")

		reloaded, err := svc.GetGoal(ctx, user.ID, goal.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, reloaded.CurrentAmount, "6200000")
		testutil.AssertDecimal(t, sumDeposits(t, svc, user.ID, goal.ID), "6200000")

		p := ComputeProgress(reloaded, reloaded.StartDate)
		if p.ProgressPercent != 31 {
			t.Errorf("expected 31%% progress, got %v", p.ProgressPercent)
		}
	})

	t.Run("non_positive_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db)
		user := testutil.CreateTestUser(t, db)
		goal, err := svc.CreateGoal(ctx, user.ID, goalInput())
		testutil.AssertNoError(t, err)

		for _, amt := range []string{"0", "-100"} {
			_, err := svc.AddDeposit(ctx, user.ID, goal.ID, dec(amt))
			testutil.AssertAppError(t, err, "INVALID_INPUT")
		}
		testutil.AssertDecimal(t, sumDeposits(t, svc, user.ID, goal.ID), "0")
	})

	t.Run("concurrent_deposits_are_not_lost", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db)
		user := testutil.CreateTestUser(t, db)
		goal, err := svc.CreateGoal(ctx, user.ID, goalInput())
		testutil.AssertNoError(t, err)

		const workers = 20
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := svc.AddDeposit(ctx, user.ID, goal.ID, dec("150000")); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Errorf("deposit failed: %v", err)
		}

		reloaded, err := svc.GetGoal(ctx, user.ID, goal.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, reloaded.CurrentAmount, "3000000")
		testutil.AssertDecimal(t, sumDeposits(t, svc, user.ID, goal.ID), "3000000")
	})
}

func TestListDeposits(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGoalService(db)
	user := testutil.CreateTestUser(t, db)
	goal, err := svc.CreateGoal(ctx, user.ID, goalInput())
	testutil.AssertNoError(t, err)

	for i := 1; i <= 3; i++ {
		res, err := svc.AddDeposit(ctx, user.ID, goal.ID, decimal.NewFromInt(int64(i*1000)))
		testutil.AssertNoError(t, err)
		db.Model(res.Deposit).Update("created_at", time.Now().Add(time.Duration(i)*time.Minute))
	}

	page, err := svc.ListDeposits(ctx, user.ID, goal.ID, pagination.PageRequest{Page: 1, PageSize: 2})
	testutil.AssertNoError(t, err)
	if page.TotalItems != 3 || page.TotalPages != 2 {
		t.Errorf("expected 3 items over 2 pages, got %d/%d", page.TotalItems, page.TotalPages)
	}
	if len(page.Data) != 2 {
		t.Fatalf("expected 2 deposits, got %d", len(page.Data))
	}
	testutil.AssertDecimal(t, page.Data[0].Amount, "3000")
}

func TestGetProgress(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)

	now := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	svc := &goalService{db: db, now: func() time.Time { return now }}
	goal := testutil.CreateTestGoal(t, db, user.ID, "20000000", now.AddDate(0, -1, 0), now.AddDate(0, 0, 10))

	_, err := svc.AddDeposit(ctx, user.ID, goal.ID, dec("6200000"))
	testutil.AssertNoError(t, err)

	p, err := svc.GetProgress(ctx, user.ID, goal.ID)
	testutil.AssertNoError(t, err)
	if p.WeeksRemaining != 2 {
		t.Errorf("expected 2 weeks remaining, got %d", p.WeeksRemaining)
	}
	testutil.AssertDecimal(t, p.RemainingAmount, "13800000")
	testutil.AssertDecimal(t, p.MinimumWeeklyContribution, "6900000")

	_, err = svc.GetProgress(ctx, user.ID, "0192f1a0-0000-7000-8000-000000000000")
	testutil.AssertAppError(t, err, "GOAL_NOT_FOUND")
}
