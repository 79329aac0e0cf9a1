package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram-v2/backend/internal/models"
)

// ShoppingListService aggregates ingredient quantities across every recipe
// in a user's shopping cart.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// AggregatedIngredient is one grouped row of the shopping list.
type AggregatedIngredient struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	TotalAmount     int    `json:"total_amount"`
}

// Aggregate sums amounts per catalog ingredient across the user's shopping
// cart. Ordered by ingredient name so the rendered document is deterministic.
// An empty cart yields an empty slice.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]AggregatedIngredient, error) {
	rows := []AggregatedIngredient{}
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("base_ingredients.name AS name, base_ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total_amount").
		Joins("JOIN base_ingredients ON base_ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN recipe_selections ON recipe_selections.recipe_id = recipe_ingredients.recipe_id").
		Where("recipe_selections.user_id = ? AND recipe_selections.kind = ?", userID, models.SelectionShoppingCart).
		Group("base_ingredients.id, base_ingredients.name, base_ingredients.measurement_unit").
		Order("base_ingredients.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
