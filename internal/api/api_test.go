package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/foodgram-v2/backend/internal/api"
	"github.com/pageza/foodgram-v2/backend/internal/database"
	"github.com/pageza/foodgram-v2/backend/internal/models"
	"github.com/pageza/foodgram-v2/backend/internal/router"
	"github.com/pageza/foodgram-v2/backend/internal/service"
)

type testEnv struct {
	db     *gorm.DB
	engine *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	authService := service.NewAuthService(db, "test-secret")
	subscriptionService := service.NewSubscriptionService(db)
	selectionService := service.NewSelectionService(db)

	engine := router.SetupRouter(
		api.NewAuthHandler(authService, subscriptionService),
		api.NewRecipeHandler(service.NewRecipeService(db), selectionService, subscriptionService, service.NewImageService(nil)),
		api.NewTagHandler(service.NewTagService(db, nil)),
		api.NewIngredientHandler(service.NewIngredientService(db, nil)),
		api.NewSubscriptionHandler(subscriptionService),
		api.NewShoppingCartHandler(service.NewShoppingListService(db), service.NewDocumentService("")),
		authService,
		[]string{"http://localhost:5173"},
	)
	return &testEnv{db: db, engine: engine}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// register creates an account through the API and returns its token and id.
func (e *testEnv) register(t *testing.T, username string) (string, uuid.UUID) {
	t.Helper()

	w := e.request(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": "Test",
		"last_name":  "User",
		"password":   "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	var user models.User
	require.NoError(t, e.db.Where("username = ?", username).First(&user).Error)
	return resp.Token, user.ID
}

func (e *testEnv) seedTag(t *testing.T, name string) models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Slug: name, Color: "#49B64E"}
	require.NoError(t, e.db.Create(&tag).Error)
	return tag
}

func (e *testEnv) seedIngredient(t *testing.T, name, unit string) models.BaseIngredient {
	t.Helper()
	ingredient := models.BaseIngredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, e.db.Create(&ingredient).Error)
	return ingredient
}

func recipePayload(name string, tag models.Tag, items map[uuid.UUID]int) gin.H {
	ingredients := make([]gin.H, 0, len(items))
	for id, amount := range items {
		ingredients = append(ingredients, gin.H{"id": id, "amount": amount})
	}
	return gin.H{
		"name":         name,
		"text":         "instructions",
		"cooking_time": 30,
		"tags":         []uuid.UUID{tag.ID},
		"ingredients":  ingredients,
		"image_url":    "https://example.com/image.png",
	}
}

func (e *testEnv) createRecipe(t *testing.T, token string, name string, tag models.Tag, items map[uuid.UUID]int) uuid.UUID {
	t.Helper()

	w := e.request(t, http.MethodPost, "/api/v1/recipes", token, recipePayload(name, tag, items))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ID
}

func TestAuthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	token, _ := env.register(t, "apicook")

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		w := env.request(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
			"email":      "apicook@example.com",
			"username":   "apicook",
			"first_name": "Test",
			"last_name":  "User",
			"password":   "password123",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("login with bad credentials", func(t *testing.T) {
		w := env.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
			"email":    "apicook@example.com",
			"password": "wrongpassword",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("profile requires a token", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/api/v1/profile", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("profile returns the authenticated user", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/api/v1/profile", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp api.UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "apicook", resp.Username)
	})
}

func TestFavoriteToggleFlow(t *testing.T) {
	env := newTestEnv(t)

	authorToken, _ := env.register(t, "flowauthor")
	fanToken, _ := env.register(t, "flowfan")
	tag := env.seedTag(t, "flow-dinner")
	beef := env.seedIngredient(t, "beef", "g")
	recipeID := env.createRecipe(t, authorToken, "Goulash", tag, map[uuid.UUID]int{beef.ID: 500})

	path := fmt.Sprintf("/api/v1/recipes/%s/favorite", recipeID)

	t.Run("first add returns the short recipe", func(t *testing.T) {
		w := env.request(t, http.MethodPost, path, fanToken, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp api.ShortRecipeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, recipeID, resp.ID)
		assert.Equal(t, "Goulash", resp.Name)
	})

	t.Run("second add conflicts", func(t *testing.T) {
		w := env.request(t, http.MethodPost, path, fanToken, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("remove succeeds once", func(t *testing.T) {
		w := env.request(t, http.MethodDelete, path, fanToken, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("removing again is not found", func(t *testing.T) {
		w := env.request(t, http.MethodDelete, path, fanToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("toggles require authentication", func(t *testing.T) {
		w := env.request(t, http.MethodPost, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRecipeEndpoints(t *testing.T) {
	env := newTestEnv(t)

	authorToken, authorID := env.register(t, "recauthor")
	otherToken, _ := env.register(t, "recother")
	tag := env.seedTag(t, "rec-lunch")
	rice := env.seedIngredient(t, "rice", "g")

	t.Run("create requires authentication", func(t *testing.T) {
		w := env.request(t, http.MethodPost, "/api/v1/recipes", "", recipePayload("Pilaf", tag, map[uuid.UUID]int{rice.ID: 300}))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("duplicate tags are a bad request", func(t *testing.T) {
		payload := recipePayload("Pilaf", tag, map[uuid.UUID]int{rice.ID: 300})
		payload["tags"] = []uuid.UUID{tag.ID, tag.ID}
		w := env.request(t, http.MethodPost, "/api/v1/recipes", authorToken, payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	recipeID := env.createRecipe(t, authorToken, "Pilaf", tag, map[uuid.UUID]int{rice.ID: 300})

	t.Run("anonymous read works with flags off", func(t *testing.T) {
		w := env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/recipes/%s", recipeID), "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp api.RecipeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Pilaf", resp.Name)
		assert.Equal(t, authorID, resp.Author.ID)
		assert.False(t, resp.IsFavorited)
		assert.False(t, resp.IsInShoppingCart)
	})

	t.Run("anonymous list with a favorited filter is empty", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/api/v1/recipes?is_favorited=1", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Count   int64                `json:"count"`
			Results []api.RecipeResponse `json:"results"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(0), resp.Count)
		assert.Empty(t, resp.Results)
	})

	t.Run("update by a non-author is forbidden", func(t *testing.T) {
		w := env.request(t, http.MethodPatch, fmt.Sprintf("/api/v1/recipes/%s", recipeID), otherToken,
			recipePayload("Hijacked", tag, map[uuid.UUID]int{rice.ID: 1}))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("author deletes the recipe", func(t *testing.T) {
		w := env.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/recipes/%s", recipeID), authorToken, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/recipes/%s", recipeID), "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestIngredientSearchEndpoint(t *testing.T) {
	env := newTestEnv(t)

	env.seedIngredient(t, "table salt", "g")
	env.seedIngredient(t, "salt", "g")
	env.seedIngredient(t, "sea salt", "g")

	w := env.request(t, http.MethodGet, "/api/v1/ingredients?name=salt", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp []models.BaseIngredient
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 3)
	assert.Equal(t, "salt", resp[0].Name)
	assert.Equal(t, "sea salt", resp[1].Name)
	assert.Equal(t, "table salt", resp[2].Name)
}

func TestSubscriptionEndpoints(t *testing.T) {
	env := newTestEnv(t)

	followerToken, followerID := env.register(t, "subfollower")
	_, authorID := env.register(t, "subauthor")

	t.Run("self subscription is a bad request", func(t *testing.T) {
		w := env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/users/%s/subscribe", followerID), followerToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("subscribe returns the author entry", func(t *testing.T) {
		w := env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/users/%s/subscribe", authorID), followerToken, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp api.SubscriptionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "subauthor", resp.Username)
		assert.True(t, resp.IsSubscribed)
	})

	t.Run("duplicate subscription conflicts", func(t *testing.T) {
		w := env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/users/%s/subscribe", authorID), followerToken, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("subscriptions list shows the author", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/api/v1/users/subscriptions", followerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Count   int64                      `json:"count"`
			Results []api.SubscriptionResponse `json:"results"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.Count)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "subauthor", resp.Results[0].Username)
	})

	t.Run("unsubscribe then not found", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/users/%s/subscribe", authorID)
		w := env.request(t, http.MethodDelete, path, followerToken, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = env.request(t, http.MethodDelete, path, followerToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDownloadShoppingCart(t *testing.T) {
	env := newTestEnv(t)

	authorToken, _ := env.register(t, "dlauthor")
	shopperToken, _ := env.register(t, "dlshopper")
	tag := env.seedTag(t, "dl-baking")
	flour := env.seedIngredient(t, "flour", "g")
	recipeID := env.createRecipe(t, authorToken, "Bread", tag, map[uuid.UUID]int{flour.ID: 500})

	w := env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/recipes/%s/shopping_cart", recipeID), shopperToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	t.Run("streams a pdf attachment", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/api/v1/recipes/download_shopping_cart", shopperToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename=shopping_list.pdf", w.Header().Get("Content-Disposition"))
		assert.Equal(t, "%PDF", w.Body.String()[:4])
	})

	t.Run("an empty cart still downloads", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/api/v1/recipes/download_shopping_cart", authorToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "%PDF", w.Body.String()[:4])
	})

	t.Run("download requires authentication", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/api/v1/recipes/download_shopping_cart", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestTagEndpoints(t *testing.T) {
	env := newTestEnv(t)

	tag := env.seedTag(t, "endpoint-brunch")

	w := env.request(t, http.MethodGet, "/api/v1/tags", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tags []models.Tag
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tags))
	require.Len(t, tags, 1)
	assert.Equal(t, tag.ID, tags[0].ID)

	w = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/tags/%s", uuid.New()), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
