package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram-v2/backend/internal/models"
)

// RecipeService handles recipe CRUD and the ingredient/tag reconciliation on
// create and update. Validation runs entirely before any mutation; the
// mutation itself is a single transaction.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// IngredientAmount is one requested (catalog ingredient, quantity) pair.
type IngredientAmount struct {
	IngredientID uuid.UUID
	Amount       int
}

// RecipeInput is the validated payload for creating or updating a recipe.
type RecipeInput struct {
	Name        string
	Description string
	ImageURL    string
	CookingTime int
	TagIDs      []uuid.UUID
	Ingredients []IngredientAmount
}

// RecipeFilter narrows List results. Favorited and InShoppingCart require a
// viewer; for anonymous callers they yield an empty result set.
type RecipeFilter struct {
	TagSlugs       []string
	AuthorID       *uuid.UUID
	Favorited      bool
	InShoppingCart bool
	ViewerID       *uuid.UUID
	Limit          int
	Offset         int
}

func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (s *RecipeService) List(ctx context.Context, filter RecipeFilter) ([]models.Recipe, int64, error) {
	if (filter.Favorited || filter.InShoppingCart) && filter.ViewerID == nil {
		return []models.Recipe{}, 0, nil
	}

	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if len(filter.TagSlugs) > 0 {
		query = query.Where(
			"EXISTS (SELECT 1 FROM recipe_tags JOIN tags ON tags.id = recipe_tags.tag_id WHERE recipe_tags.recipe_id = recipes.id AND tags.slug IN ?)",
			filter.TagSlugs,
		)
	}
	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if filter.Favorited {
		query = query.Where(
			"EXISTS (SELECT 1 FROM recipe_selections WHERE recipe_selections.recipe_id = recipes.id AND recipe_selections.user_id = ? AND recipe_selections.kind = ?)",
			*filter.ViewerID, models.SelectionFavorite,
		)
	}
	if filter.InShoppingCart {
		query = query.Where(
			"EXISTS (SELECT 1 FROM recipe_selections WHERE recipe_selections.recipe_id = recipes.id AND recipe_selections.user_id = ? AND recipe_selections.kind = ?)",
			*filter.ViewerID, models.SelectionShoppingCart,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("recipes.created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, input RecipeInput) (*models.Recipe, error) {
	tags, err := s.validateInput(ctx, input)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        input.Name,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		CookingTime: input.CookingTime,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}
		return reconcileIngredients(tx, recipe.ID, input.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipe.ID)
}

func (s *RecipeService) Update(ctx context.Context, userID, recipeID uuid.UUID, input RecipeInput) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, ErrForbidden
	}

	tags, err := s.validateInput(ctx, input)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         input.Name,
			"description":  input.Description,
			"cooking_time": input.CookingTime,
		}
		if input.ImageURL != "" {
			updates["image_url"] = input.ImageURL
		}
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}
		return reconcileIngredients(tx, recipe.ID, input.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipeID)
}

// Delete removes the recipe along with its junction and selection rows.
func (s *RecipeService) Delete(ctx context.Context, userID uuid.UUID, recipeID uuid.UUID, isAdmin bool) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if recipe.AuthorID != userID && !isAdmin {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeSelection{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// validateInput checks the requested tag/ingredient sets before any write.
// Returns the resolved tags so the transaction can link them without
// re-querying.
func (s *RecipeService) validateInput(ctx context.Context, input RecipeInput) ([]models.Tag, error) {
	if input.CookingTime < 1 {
		return nil, ErrInvalidQuantity
	}
	if len(input.TagIDs) == 0 || len(input.Ingredients) == 0 {
		return nil, ErrEmptyList
	}

	seenTags := make(map[uuid.UUID]bool, len(input.TagIDs))
	for _, id := range input.TagIDs {
		if seenTags[id] {
			return nil, ErrDuplicateEntry
		}
		seenTags[id] = true
	}

	seenIngredients := make(map[uuid.UUID]bool, len(input.Ingredients))
	for _, item := range input.Ingredients {
		if seenIngredients[item.IngredientID] {
			return nil, ErrDuplicateEntry
		}
		seenIngredients[item.IngredientID] = true
		if item.Amount < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	var tags []models.Tag
	if err := s.db.WithContext(ctx).Where("id IN ?", input.TagIDs).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(input.TagIDs) {
		return nil, ErrReferenceNotFound
	}

	ingredientIDs := make([]uuid.UUID, 0, len(input.Ingredients))
	for _, item := range input.Ingredients {
		ingredientIDs = append(ingredientIDs, item.IngredientID)
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.BaseIngredient{}).
		Where("id IN ?", ingredientIDs).Count(&count).Error; err != nil {
		return nil, err
	}
	if count != int64(len(ingredientIDs)) {
		return nil, ErrReferenceNotFound
	}

	return tags, nil
}

// reconcileIngredients diffs the recipe's current ingredient rows against the
// requested set: updates amounts for kept ingredients, inserts new rows, and
// deletes rows no longer requested.
func reconcileIngredients(tx *gorm.DB, recipeID uuid.UUID, requested []IngredientAmount) error {
	var current []models.RecipeIngredient
	if err := tx.Where("recipe_id = ?", recipeID).Find(&current).Error; err != nil {
		return err
	}
	existing := make(map[uuid.UUID]models.RecipeIngredient, len(current))
	for _, row := range current {
		existing[row.IngredientID] = row
	}

	wanted := make(map[uuid.UUID]bool, len(requested))
	for _, item := range requested {
		wanted[item.IngredientID] = true

		if row, ok := existing[item.IngredientID]; ok {
			if row.Amount != item.Amount {
				if err := tx.Model(&row).Update("amount", item.Amount).Error; err != nil {
					return err
				}
			}
			continue
		}

		row := models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.IngredientID,
			Amount:       item.Amount,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}

	for ingredientID, row := range existing {
		if !wanted[ingredientID] {
			if err := tx.Delete(&row).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
