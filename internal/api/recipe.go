package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram-v2/backend/internal/models"
	"github.com/pageza/foodgram-v2/backend/internal/service"
)

type RecipeHandler struct {
	recipeService       *service.RecipeService
	selectionService    *service.SelectionService
	subscriptionService *service.SubscriptionService
	imageService        *service.ImageService
}

func NewRecipeHandler(
	recipeService *service.RecipeService,
	selectionService *service.SelectionService,
	subscriptionService *service.SubscriptionService,
	imageService *service.ImageService,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:       recipeService,
		selectionService:    selectionService,
		subscriptionService: subscriptionService,
		imageService:        imageService,
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	limit, offset := paginationParams(c)
	filter := service.RecipeFilter{
		TagSlugs:       c.QueryArray("tags"),
		Favorited:      c.Query("is_favorited") == "1",
		InShoppingCart: c.Query("is_in_shopping_cart") == "1",
		Limit:          limit,
		Offset:         offset,
	}

	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.AuthorID = &authorID
	}
	if viewerID, ok := currentUserID(c); ok {
		filter.ViewerID = &viewerID
	}

	recipes, total, err := h.recipeService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	responses, err := h.buildRecipeResponses(c, recipes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": total, "results": responses})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	responses, err := h.buildRecipeResponses(c, []models.Recipe{*recipe})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses[0])
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	input, ok := h.bindRecipeInput(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), userID, *input)
	if err != nil {
		respondError(c, err)
		return
	}

	responses, err := h.buildRecipeResponses(c, []models.Recipe{*recipe})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, responses[0])
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	input, ok := h.bindRecipeInput(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), userID, id, *input)
	if err != nil {
		respondError(c, err)
		return
	}

	responses, err := h.buildRecipeResponses(c, []models.Recipe{*recipe})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses[0])
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), userID, id, false); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// FavoriteRecipe and the shopping-cart pair below are each statically bound
// to one selection kind; the kind is never inferred from the request path.

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	h.addSelection(c, models.SelectionFavorite)
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	h.removeSelection(c, models.SelectionFavorite)
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.addSelection(c, models.SelectionShoppingCart)
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.removeSelection(c, models.SelectionShoppingCart)
}

func (h *RecipeHandler) addSelection(c *gin.Context, kind models.SelectionKind) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.selectionService.Add(c.Request.Context(), userID, recipeID, kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newShortRecipeResponse(*recipe))
}

func (h *RecipeHandler) removeSelection(c *gin.Context, kind models.SelectionKind) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := h.selectionService.Remove(c.Request.Context(), userID, recipeID, kind); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindRecipeInput parses the request body and resolves the image: base64
// payloads go through the S3 pipeline, otherwise the given URL is kept.
func (h *RecipeHandler) bindRecipeInput(c *gin.Context) (*service.RecipeInput, bool) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	imageURL := req.ImageURL
	if req.Image != "" {
		uploaded, err := h.imageService.UploadRecipeImage(c.Request.Context(), req.Image)
		if err != nil {
			respondError(c, err)
			return nil, false
		}
		imageURL = uploaded
	}

	ingredients := make([]service.IngredientAmount, 0, len(req.Ingredients))
	for _, item := range req.Ingredients {
		ingredients = append(ingredients, service.IngredientAmount{
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}

	return &service.RecipeInput{
		Name:        req.Name,
		Description: req.Text,
		ImageURL:    imageURL,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
		Ingredients: ingredients,
	}, true
}

// buildRecipeResponses annotates recipes with viewer-dependent flags. Both
// selection kinds are resolved in one query each; subscription checks are
// memoized per author.
func (h *RecipeHandler) buildRecipeResponses(c *gin.Context, recipes []models.Recipe) ([]RecipeResponse, error) {
	ctx := c.Request.Context()
	viewerID, viewer := currentUserID(c)

	recipeIDs := make([]uuid.UUID, 0, len(recipes))
	for _, recipe := range recipes {
		recipeIDs = append(recipeIDs, recipe.ID)
	}

	favorited := map[uuid.UUID]bool{}
	inCart := map[uuid.UUID]bool{}
	if viewer {
		var err error
		favorited, err = h.selectionService.SelectedIDs(ctx, viewerID, recipeIDs, models.SelectionFavorite)
		if err != nil {
			return nil, err
		}
		inCart, err = h.selectionService.SelectedIDs(ctx, viewerID, recipeIDs, models.SelectionShoppingCart)
		if err != nil {
			return nil, err
		}
	}

	subscribed := map[uuid.UUID]bool{}
	responses := make([]RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		authorSubscribed := false
		if viewer && recipe.AuthorID != viewerID {
			cached, seen := subscribed[recipe.AuthorID]
			if !seen {
				var err error
				cached, err = h.subscriptionService.IsSubscribed(ctx, viewerID, recipe.AuthorID)
				if err != nil {
					return nil, err
				}
				subscribed[recipe.AuthorID] = cached
			}
			authorSubscribed = cached
		}

		ingredients := make([]IngredientResponse, 0, len(recipe.Ingredients))
		for _, row := range recipe.Ingredients {
			ingredients = append(ingredients, IngredientResponse{
				ID:              row.IngredientID,
				Name:            row.Ingredient.Name,
				MeasurementUnit: row.Ingredient.MeasurementUnit,
				Amount:          row.Amount,
			})
		}

		tags := recipe.Tags
		if tags == nil {
			tags = []models.Tag{}
		}

		responses = append(responses, RecipeResponse{
			ID:               recipe.ID,
			Tags:             tags,
			Author:           newUserResponse(recipe.Author, authorSubscribed),
			Ingredients:      ingredients,
			IsFavorited:      favorited[recipe.ID],
			IsInShoppingCart: inCart[recipe.ID],
			Name:             recipe.Name,
			Image:            recipe.ImageURL,
			Text:             recipe.Description,
			CookingTime:      recipe.CookingTime,
		})
	}
	return responses, nil
}
