package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a ledger entry
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// ParseTransactionType normalizes a client-supplied type. The Indonesian
// labels used by older clients are accepted as aliases.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "pemasukkan", "pemasukan":
		return TransactionTypeIncome, true
	case "expense", "pengeluaran":
		return TransactionTypeExpense, true
	}
	return "", false
}

// Sign returns +1 for income and -1 for expense.
func (t TransactionType) Sign() int {
	if t == TransactionTypeExpense {
		return -1
	}
	return 1
}

// Transaction is a ledger entry. Rows are immutable once committed; removal
// is a soft delete through Base.DeletedAt.
type Transaction struct {
	Base
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountID  string          `gorm:"type:uuid;not null;index" json:"account_id"`
	CategoryID *string         `gorm:"type:uuid" json:"category_id,omitempty"`
	Type       TransactionType `gorm:"not null" json:"type"`
	Amount     decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"amount"`
	Note       *string         `json:"note,omitempty"`
	Date       time.Time       `gorm:"column:date_transaction;not null;index" json:"date_transaction"`
	File       *string         `json:"file,omitempty"`
	FileURL    *string         `json:"file_url,omitempty"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// HasReceipt reports whether the entry was created from an uploaded file.
func (t *Transaction) HasReceipt() bool {
	return t.File != nil && *t.File != ""
}
