package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/foodgram-v2/backend/internal/database"
	"github.com/pageza/foodgram-v2/backend/internal/models"
)

// setupTestDB opens a per-test in-memory sqlite database with the same
// TranslateError behavior the postgres connection uses, so unique-constraint
// violations surface as gorm.ErrDuplicatedKey in tests too.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("testpassword123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hashed),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

var tagColorSeq int

func createTestTag(t *testing.T, db *gorm.DB, name string) models.Tag {
	t.Helper()

	tagColorSeq++
	tag := models.Tag{
		Name:  name,
		Slug:  name,
		Color: fmt.Sprintf("#%06x", tagColorSeq),
	}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}

func createTestIngredient(t *testing.T, db *gorm.DB, name, unit string) models.BaseIngredient {
	t.Helper()

	ingredient := models.BaseIngredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to create test ingredient: %v", err)
	}
	return ingredient
}

// createTestRecipe persists a recipe with the given (ingredient, amount)
// pairs through the service so the junction rows are reconciled normally.
func createTestRecipe(t *testing.T, db *gorm.DB, author models.User, name string, tag models.Tag, ingredients map[uuid.UUID]int) models.Recipe {
	t.Helper()

	amounts := make([]IngredientAmount, 0, len(ingredients))
	for id, amount := range ingredients {
		amounts = append(amounts, IngredientAmount{IngredientID: id, Amount: amount})
	}

	recipe, err := NewRecipeService(db).Create(context.Background(), author.ID, RecipeInput{
		Name:        name,
		Description: "test description",
		CookingTime: 10,
		TagIDs:      []uuid.UUID{tag.ID},
		Ingredients: amounts,
	})
	if err != nil {
		t.Fatalf("failed to create test recipe: %v", err)
	}
	return *recipe
}
