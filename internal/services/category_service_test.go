package services

import (
	"context"
	"testing"

	"dompet/internal/database"
	"dompet/internal/models"
	"dompet/internal/pagination"
	"dompet/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		category, err := svc.CreateCategory(ctx, user.ID, " Coffee ", models.CategoryTypeExpense)
		testutil.AssertNoError(t, err)
		if category.Name != "Coffee" || category.UserID == nil || *category.UserID != user.ID {
			t.Errorf("unexpected category %+v", category)
		}
	})

	t.Run("duplicate_for_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(ctx, user.ID, "Coffee", models.CategoryTypeExpense)
		testutil.AssertNoError(t, err)
		_, err = svc.CreateCategory(ctx, user.ID, "coffee", models.CategoryTypeExpense)
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("duplicate_of_default", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(ctx, user.ID, "Salary", models.CategoryTypeIncome)
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("same_name_other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(ctx, user1.ID, "Coffee", models.CategoryTypeExpense)
		testutil.AssertNoError(t, err)
		_, err = svc.CreateCategory(ctx, user2.ID, "Coffee", models.CategoryTypeExpense)
		testutil.AssertNoError(t, err)
	})

	t.Run("invalid_input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(ctx, user.ID, "", models.CategoryTypeExpense)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		_, err = svc.CreateCategory(ctx, user.ID, "Moves", models.CategoryType("transfer"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestListCategories(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	testutil.CreateTestCategory(t, db, other.ID, models.CategoryTypeExpense)

	page, err := svc.ListCategories(ctx, user.ID, nil, pagination.PageRequest{PageSize: 100})
	testutil.AssertNoError(t, err)
	want := int64(len(database.DefaultCategories) + 1)
	if page.TotalItems != want {
		t.Errorf("expected %d categories, got %d", want, page.TotalItems)
	}

	income := models.CategoryTypeIncome
	page, err = svc.ListCategories(ctx, user.ID, &income, pagination.PageRequest{PageSize: 100})
	testutil.AssertNoError(t, err)
	for _, c := range page.Data {
		if c.Type != models.CategoryTypeIncome {
			t.Errorf("expected only income categories, got %s", c.Type)
		}
	}
}

func TestGetCategoryByID(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	mine := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)
	theirs := testutil.CreateTestCategory(t, db, other.ID, models.CategoryTypeIncome)

	_, err := svc.GetCategoryByID(ctx, user.ID, mine.ID)
	testutil.AssertNoError(t, err)

	_, err = svc.GetCategoryByID(ctx, user.ID, theirs.ID)
	testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
}

func TestDeleteCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("own_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		testutil.AssertNoError(t, svc.DeleteCategory(ctx, user.ID, category.ID))
		_, err := svc.GetCategoryByID(ctx, user.ID, category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("default_is_read_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		var salary models.Category
		if err := db.Where("user_id IS NULL AND name = ?", "Salary").First(&salary).Error; err != nil {
			t.Fatalf("load default: %v", err)
		}

		err := svc.DeleteCategory(ctx, user.ID, salary.ID)
		testutil.AssertAppError(t, err, "CATEGORY_READ_ONLY")
	})
}

func TestListGoalItemCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)

	categories, err := svc.ListGoalItemCategories(context.Background())
	testutil.AssertNoError(t, err)
	if len(categories) != 4 {
		t.Fatalf("expected 4 goal item categories, got %d", len(categories))
	}
	if categories[0].Name != "Accommodations" {
		t.Errorf("expected alphabetical order, got %s first", categories[0].Name)
	}
}
