package models

import (
	"time"

	"dompet/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Goal is a savings target. CurrentAmount caches the sum of its deposits and
// is only ever changed by an atomic increment alongside a deposit insert.
type Goal struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Destination   string          `gorm:"not null" json:"destination"`
	StartDate     time.Time       `gorm:"not null" json:"start_date"`
	EndDate       time.Time       `gorm:"not null" json:"end_date"`
	TotalBudget   decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"total_budget"`
	CurrentAmount decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"current_amount"`

	Items []GoalItem `gorm:"foreignKey:GoalID" json:"items"`
}

// GoalItemCategory is a fixed label for planned goal costs.
type GoalItemCategory struct {
	ID   string `gorm:"type:uuid;primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (c *GoalItemCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New()
	}
	return nil
}

// DefaultGoalItemCategories are seeded on startup.
var DefaultGoalItemCategories = []string{"Transportation", "Accommodations", "Activities", "Other"}

// GoalItem is one planned cost line of a goal. Items are replaced wholesale
// when the goal is updated, so they are hard-deleted and carry no DeletedAt.
type GoalItem struct {
	ID         string          `gorm:"type:uuid;primaryKey" json:"id"`
	GoalID     string          `gorm:"type:uuid;not null;index" json:"goal_id"`
	CategoryID *string         `gorm:"type:uuid" json:"category_id"`
	ItemName   string          `gorm:"not null" json:"item_name"`
	CostIDR    decimal.Decimal `gorm:"column:cost_idr;type:numeric(20,2);not null;default:0" json:"cost_idr"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`

	Category *GoalItemCategory `gorm:"foreignKey:CategoryID" json:"goal_item_categories,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (i *GoalItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New()
	}
	return nil
}

// GoalDeposit is an append-only contribution toward a goal.
// No Base embed: deposits are never updated or soft-deleted.
type GoalDeposit struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	GoalID    string          `gorm:"type:uuid;not null;index" json:"goal_id"`
	Amount    decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName keeps the table name used by existing clients.
func (GoalDeposit) TableName() string { return "goal_savings" }

// BeforeCreate hook generates a UUIDv7 for new records
func (d *GoalDeposit) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New()
	}
	return nil
}
