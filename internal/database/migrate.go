package database

import (
	"gorm.io/gorm"

	"github.com/pageza/foodgram-v2/backend/internal/models"
)

// Migrate applies the schema for every model, including the composite
// unique indexes the toggle and subscription invariants depend on.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.BaseIngredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.RecipeSelection{},
		&models.Subscription{},
	)
}
