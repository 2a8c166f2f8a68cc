package services

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"dompet/internal/models"
	"dompet/internal/pagination"
)

// RegisterInput carries the fields needed to open a new user with its cash account.
type RegisterInput struct {
	Username       string
	Email          string
	Password       string
	AccountName    string
	Currency       string
	InitialBalance decimal.Decimal
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, *models.Account, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(ctx context.Context, identifier, password string) (*models.User, error)
	StoreRefreshTokenHash(ctx context.Context, userID, tokenHash string) error
	GetRefreshTokenHash(ctx context.Context, userID string) (string, error)
	ClearRefreshTokenHash(ctx context.Context, userID string) error
}

// Profile is the user-facing summary of a user and their cash account.
type Profile struct {
	ID             string          `json:"id"`
	Username       string          `json:"username"`
	Email          string          `json:"email"`
	AccountID      string          `json:"account_id"`
	AccountName    string          `json:"account_name"`
	Currency       string          `json:"currency"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CurrentAmount  decimal.Decimal `json:"current_amount"`
}

// AccountServicer defines the contract for the user's cash account.
type AccountServicer interface {
	GetUserAccount(ctx context.Context, userID string) (*models.Account, error)
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	RenameAccount(ctx context.Context, userID, name string) (*Profile, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	ListCategories(ctx context.Context, userID string, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(ctx context.Context, userID, categoryID string) (*models.Category, error)
	CreateCategory(ctx context.Context, userID, name string, categoryType models.CategoryType) (*models.Category, error)
	DeleteCategory(ctx context.Context, userID, categoryID string) error
	ListGoalItemCategories(ctx context.Context) ([]models.GoalItemCategory, error)
}

// RecordTransactionInput holds a manual ledger entry.
type RecordTransactionInput struct {
	Type       models.TransactionType
	Amount     decimal.Decimal
	CategoryID *string
	Date       time.Time
	Note       *string
}

// TransactionResult is a committed ledger entry together with the balance it produced.
type TransactionResult struct {
	Transaction *models.Transaction `json:"transaction"`
	NewBalance  decimal.Decimal     `json:"newBalance"`
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate        *time.Time
	ToDate          *time.Time
	Type            *models.TransactionType
	CategoryID      *string
	ExcludeReceipts bool
	OnlyReceipts    bool
	Limit           int
}

// MonthTotals holds income and expense sums for one calendar month.
type MonthTotals struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// MonthlyAggregate is a trailing window of month totals, oldest first.
type MonthlyAggregate struct {
	Months   []MonthTotals `json:"months"`
	Current  MonthTotals   `json:"current"`
	Previous MonthTotals   `json:"previous"`
}

// CategoryBreakdown sums a period's transactions per category and direction.
type CategoryBreakdown struct {
	Month             string                     `json:"month"`
	IncomeByCategory  map[string]decimal.Decimal `json:"incomeByCategory"`
	ExpenseByCategory map[string]decimal.Decimal `json:"expenseByCategory"`
	TotalIncome       decimal.Decimal            `json:"totalIncome"`
	TotalExpense      decimal.Decimal            `json:"totalExpense"`
	TransactionCount  int64                      `json:"transactionCount"`
}

// LedgerServicer defines the contract for the cash ledger.
type LedgerServicer interface {
	RecordTransaction(ctx context.Context, userID string, input RecordTransactionInput) (*TransactionResult, error)
	ListTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) (decimal.Decimal, error)
	MonthlyAggregate(ctx context.Context, userID string, monthsBack int) (*MonthlyAggregate, error)
	CategoryBreakdown(ctx context.Context, userID string, monthStart, monthEnd time.Time) (*CategoryBreakdown, error)
}

// GoalItemInput is one planned cost line; Category is resolved by name.
type GoalItemInput struct {
	Category string
	ItemName string
	CostIDR  decimal.Decimal
	Notes    string
}

// GoalInput carries the replaceable fields of a goal.
type GoalInput struct {
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	TotalBudget decimal.Decimal
	Items       []GoalItemInput
}

// DepositResult is a recorded deposit and the goal total after it.
type DepositResult struct {
	Deposit      *models.GoalDeposit `json:"deposit"`
	TotalSavings decimal.Decimal     `json:"totalSavings"`
}

// GoalServicer defines the contract for savings goals.
type GoalServicer interface {
	CreateGoal(ctx context.Context, userID string, input GoalInput) (*models.Goal, error)
	GetLatestGoal(ctx context.Context, userID string) (*models.Goal, error)
	GetGoal(ctx context.Context, userID, goalID string) (*models.Goal, error)
	ReplaceGoal(ctx context.Context, userID, goalID string, input GoalInput) (*models.Goal, error)
	DeleteGoalItem(ctx context.Context, userID, goalID, itemID string) error
	AddDeposit(ctx context.Context, userID, goalID string, amount decimal.Decimal) (*DepositResult, error)
	ListDeposits(ctx context.Context, userID, goalID string, page pagination.PageRequest) (*pagination.PageResponse[models.GoalDeposit], error)
	GetProgress(ctx context.Context, userID, goalID string) (*GoalProgress, error)
}

// ReceiptInput is an uploaded receipt file.
type ReceiptInput struct {
	Type        models.TransactionType
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ReceiptResult is the pending transaction created for an upload.
type ReceiptResult struct {
	Transaction *models.Transaction `json:"transaction"`
	FileURL     string              `json:"fileUrl"`
}

// ReceiptServicer defines the contract for receipt uploads.
type ReceiptServicer interface {
	UploadReceipt(ctx context.Context, userID string, input ReceiptInput) (*ReceiptResult, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(ctx context.Context, userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
