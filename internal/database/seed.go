package database

import (
	"fmt"

	"gorm.io/gorm"

	"dompet/internal/models"
)

// DefaultCategories are the global categories every user sees.
var DefaultCategories = []struct {
	Name string
	Type models.CategoryType
}{
	{"Salary", models.CategoryTypeIncome},
	{"Bonus", models.CategoryTypeIncome},
	{"Gift", models.CategoryTypeIncome},
	{"Food & Drink", models.CategoryTypeExpense},
	{"Transportation", models.CategoryTypeExpense},
	{"Shopping", models.CategoryTypeExpense},
	{"Bills", models.CategoryTypeExpense},
	{"Entertainment", models.CategoryTypeExpense},
	{"Health", models.CategoryTypeExpense},
	{models.FallbackCategoryName, models.CategoryTypeExpense},
}

// SeedReferenceData inserts default categories and goal item categories.
// Safe to run on every start.
func SeedReferenceData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, c := range DefaultCategories {
			var existing models.Category
			err := tx.Where("user_id IS NULL AND name = ? AND type = ?", c.Name, c.Type).
				Attrs(models.Category{Name: c.Name, Type: c.Type}).
				FirstOrCreate(&existing).Error
			if err != nil {
				return fmt.Errorf("seed category %q: %w", c.Name, err)
			}
		}
		for _, name := range models.DefaultGoalItemCategories {
			var existing models.GoalItemCategory
			err := tx.Where("name = ?", name).
				Attrs(models.GoalItemCategory{Name: name}).
				FirstOrCreate(&existing).Error
			if err != nil {
				return fmt.Errorf("seed goal item category %q: %w", name, err)
			}
		}
		return nil
	})
}
