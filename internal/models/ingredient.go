package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseIngredient is a catalog entry (name + unit), independent of any recipe.
// Bulk-loaded from data/ingredients.csv, idempotent on the unique name.
type BaseIngredient struct {
	ID              uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
	Name            string    `gorm:"size:64;uniqueIndex;not null" json:"name"`
	MeasurementUnit string    `gorm:"size:32;not null" json:"measurement_unit"`
}

func (i *BaseIngredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// RecipeIngredient links a recipe to a catalog ingredient with a quantity.
// One row per (recipe, ingredient) pair; reconciled on recipe update.
type RecipeIngredient struct {
	ID           uuid.UUID      `gorm:"type:uuid;primarykey" json:"-"`
	CreatedAt    time.Time      `json:"-"`
	UpdatedAt    time.Time      `json:"-"`
	RecipeID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_ingredient" json:"-"`
	IngredientID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_ingredient" json:"id"`
	Ingredient   BaseIngredient `gorm:"foreignKey:IngredientID" json:"-"`
	Amount       int            `gorm:"not null;check:amount >= 1" json:"amount"`
}

func (ri *RecipeIngredient) BeforeCreate(tx *gorm.DB) error {
	if ri.ID == uuid.Nil {
		ri.ID = uuid.New()
	}
	return nil
}
