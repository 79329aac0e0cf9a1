package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram-v2/backend/internal/service"
)

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// ListSubscriptions returns the authors the user follows, each with a recipe
// preview capped by the recipes_limit query parameter.
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	limit, offset := paginationParams(c)
	recipesLimit := 0
	if raw := c.Query("recipes_limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			recipesLimit = parsed
		}
	}

	entries, total, err := h.subscriptionService.List(c.Request.Context(), userID, limit, offset, recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]SubscriptionResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, newSubscriptionResponse(entry))
	}
	c.JSON(http.StatusOK, gin.H{"count": total, "results": responses})
}

func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	entry, err := h.subscriptionService.Follow(c.Request.Context(), userID, authorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSubscriptionResponse(*entry))
}

func (h *SubscriptionHandler) Unsubscribe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.subscriptionService.Unfollow(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func newSubscriptionResponse(entry service.AuthorSubscription) SubscriptionResponse {
	recipes := make([]ShortRecipeResponse, 0, len(entry.Recipes))
	for _, recipe := range entry.Recipes {
		recipes = append(recipes, newShortRecipeResponse(recipe))
	}
	return SubscriptionResponse{
		UserResponse: newUserResponse(entry.Author, entry.IsSubscribed),
		Recipes:      recipes,
		RecipesCount: entry.RecipesCount,
	}
}
