package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quarry-dev/quarry/internal/service"
)

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Merged NotFound/Unauthorized outcomes all land on 404.
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrTicketNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyMember):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrOwnerRemoval):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
