package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram-v2/backend/internal/service"
)

type AuthHandler struct {
	authService         *service.AuthService
	subscriptionService *service.SubscriptionService
}

func NewAuthHandler(authService *service.AuthService, subscriptionService *service.SubscriptionService) *AuthHandler {
	return &AuthHandler{
		authService:         authService,
		subscriptionService: subscriptionService,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authService.Register(c.Request.Context(), req.Email, req.Username, req.FirstName, req.LastName, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetProfile returns the authenticated user.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(*user, false))
}

// ListUsers returns all users with the viewer-dependent is_subscribed flag.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	limit, offset := paginationParams(c)
	users, total, err := h.authService.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	viewerID, viewer := currentUserID(c)
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		subscribed := false
		if viewer && viewerID != user.ID {
			subscribed, err = h.subscriptionService.IsSubscribed(c.Request.Context(), viewerID, user.ID)
			if err != nil {
				respondError(c, err)
				return
			}
		}
		responses = append(responses, newUserResponse(user, subscribed))
	}

	c.JSON(http.StatusOK, gin.H{"count": total, "results": responses})
}

// GetUser returns a single user by id.
func (h *AuthHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	subscribed := false
	if viewerID, ok := currentUserID(c); ok && viewerID != user.ID {
		subscribed, err = h.subscriptionService.IsSubscribed(c.Request.Context(), viewerID, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, newUserResponse(*user, subscribed))
}
