package models

import "github.com/shopspring/decimal"

const (
	// DefaultAccountName is used when a user registers without naming the account.
	DefaultAccountName = "Cash"
	// DefaultCurrency is the ISO 4217 code used when none is given at registration.
	DefaultCurrency = "IDR"
)

// Account is a user's single cash account. Balance is the authoritative
// current cash position and is changed only by the ledger.
type Account struct {
	Base
	UserID         string          `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Name           string          `gorm:"not null" json:"name"`
	Currency       string          `gorm:"size:3;not null;default:'IDR'" json:"currency"`
	OpeningBalance decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"opening_balance"`
	Balance        decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"balance"`
}
