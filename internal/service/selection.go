package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram-v2/backend/internal/models"
)

// SelectionService manages the user-to-recipe toggle sets (favorites and the
// shopping cart). Both kinds share one add/remove contract; the composite
// unique index on (user, recipe, kind) decides races between concurrent adds.
type SelectionService struct {
	db *gorm.DB
}

func NewSelectionService(db *gorm.DB) *SelectionService {
	return &SelectionService{db: db}
}

// Add binds the user to the recipe for the given kind. Returns the recipe so
// handlers can echo its short form. ErrNotFound if the recipe does not exist,
// ErrAlreadyExists if the binding is already present.
func (s *SelectionService) Add(ctx context.Context, userID, recipeID uuid.UUID, kind models.SelectionKind) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	selection := models.RecipeSelection{
		UserID:   userID,
		RecipeID: recipeID,
		Kind:     kind,
	}
	if err := s.db.WithContext(ctx).Create(&selection).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return &recipe, nil
}

// Remove deletes the binding. ErrNotFound if it does not exist; no row is
// ever created as a side effect.
func (s *SelectionService) Remove(ctx context.Context, userID, recipeID uuid.UUID, kind models.SelectionKind) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ? AND kind = ?", userID, recipeID, kind).
		Delete(&models.RecipeSelection{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Contains reports whether the binding exists.
func (s *SelectionService) Contains(ctx context.Context, userID, recipeID uuid.UUID, kind models.SelectionKind) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.RecipeSelection{}).
		Where("user_id = ? AND recipe_id = ? AND kind = ?", userID, recipeID, kind).
		Count(&count).Error
	return count > 0, err
}

// SelectedIDs returns, out of the given recipe ids, the set the user has
// bound for the kind. Used to annotate recipe lists in one query.
func (s *SelectionService) SelectedIDs(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID, kind models.SelectionKind) (map[uuid.UUID]bool, error) {
	selected := make(map[uuid.UUID]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return selected, nil
	}

	var rows []models.RecipeSelection
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND recipe_id IN ?", userID, kind, recipeIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		selected[row.RecipeID] = true
	}
	return selected, nil
}
