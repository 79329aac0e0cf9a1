package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SelectionKind distinguishes the two user-to-recipe toggle sets. One table
// parameterized by kind replaces twin favorite/shopping-list tables.
type SelectionKind string

const (
	SelectionFavorite     SelectionKind = "favorite"
	SelectionShoppingCart SelectionKind = "shopping_cart"
)

// RecipeSelection binds a user to a recipe for one selection kind. The
// composite unique index is the source of truth for the at-most-one
// invariant; concurrent duplicate adds lose at the constraint.
type RecipeSelection struct {
	ID        uuid.UUID     `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	UserID    uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_user_recipe_kind" json:"user_id"`
	RecipeID  uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_user_recipe_kind;index" json:"recipe_id"`
	Kind      SelectionKind `gorm:"size:32;not null;uniqueIndex:idx_user_recipe_kind" json:"kind"`
}

func (s *RecipeSelection) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (RecipeSelection) TableName() string {
	return "recipe_selections"
}
