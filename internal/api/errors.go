package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram-v2/backend/internal/service"
)

// respondError maps the service error taxonomy onto HTTP statuses: conflict,
// not-found, bad-request, unauthorized, forbidden. Anything unrecognized is
// logged and reported as a 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSelfSubscription),
		errors.Is(err, service.ErrReferenceNotFound),
		errors.Is(err, service.ErrDuplicateEntry),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrEmptyList),
		errors.Is(err, service.ErrInvalidImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrUserBanned):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		log.Printf("[API] Unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
