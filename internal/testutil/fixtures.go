package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"dompet/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique username.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	n := nextID()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: fmt.Sprintf("user%d", n),
		Email:    fmt.Sprintf("user%d@test.com", n),
		Password: string(hash),
		Role:     models.UserRoleUser,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount creates the user's cash account with the given balance.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string, balance string) *models.Account {
	t.Helper()

	amt := decimal.RequireFromString(balance)
	account := &models.Account{
		UserID:         userID,
		Name:           models.DefaultAccountName,
		Currency:       "IDR",
		OpeningBalance: amt,
		Balance:        amt,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestUserWithAccount creates a user together with a funded account.
func CreateTestUserWithAccount(t *testing.T, db *gorm.DB, balance string) (*models.User, *models.Account) {
	t.Helper()
	user := CreateTestUser(t, db)
	return user, CreateTestAccount(t, db, user.ID, balance)
}

// CreateTestCategory creates a user-owned category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: &userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction inserts a ledger row directly without touching the balance.
func CreateTestTransaction(t *testing.T, db *gorm.DB, account *models.Account, txType models.TransactionType, amount string, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:    account.UserID,
		AccountID: account.ID,
		Type:      txType,
		Amount:    decimal.RequireFromString(amount),
		Date:      date.UTC(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestGoal creates a goal with the given budget spanning start to end.
func CreateTestGoal(t *testing.T, db *gorm.DB, userID string, budget string, start, end time.Time) *models.Goal {
	t.Helper()

	goal := &models.Goal{
		UserID:      userID,
		Destination: fmt.Sprintf("Destination %d", nextID()),
		StartDate:   start.UTC(),
		EndDate:     end.UTC(),
		TotalBudget: decimal.RequireFromString(budget),
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

// GoalItemCategoryID returns the seeded goal item category with the given name.
func GoalItemCategoryID(t *testing.T, db *gorm.DB, name string) string {
	t.Helper()

	var c models.GoalItemCategory
	if err := db.Where("name = ?", name).First(&c).Error; err != nil {
		t.Fatalf("goal item category %q not seeded: %v", name, err)
	}
	return c.ID
}
