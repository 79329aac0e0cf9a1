package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram-v2/backend/internal/service"
)

type ShoppingCartHandler struct {
	shoppingListService *service.ShoppingListService
	documentService     *service.DocumentService
}

func NewShoppingCartHandler(shoppingListService *service.ShoppingListService, documentService *service.DocumentService) *ShoppingCartHandler {
	return &ShoppingCartHandler{
		shoppingListService: shoppingListService,
		documentService:     documentService,
	}
}

// DownloadShoppingCart aggregates the user's shopping cart and streams the
// rendered PDF from memory as a fixed-name attachment. An empty cart still
// yields a valid document.
func (h *ShoppingCartHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	rows, err := h.shoppingListService.Aggregate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	document, err := h.documentService.RenderShoppingList(rows)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=shopping_list.pdf")
	c.Data(http.StatusOK, "application/pdf", document)
}
