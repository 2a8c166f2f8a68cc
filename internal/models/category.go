package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// FallbackCategoryName labels transactions without a resolvable category.
const FallbackCategoryName = "Other"

// Category classifies transactions. A nil UserID marks a global default
// visible to every user.
type Category struct {
	Base
	UserID *string      `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Name   string       `gorm:"not null" json:"name"`
	Type   CategoryType `gorm:"not null" json:"type"`
}

// IsDefault reports whether the category is a global default.
func (c *Category) IsDefault() bool {
	return c.UserID == nil
}
