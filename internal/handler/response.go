// Package handler contains the HTTP controllers.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"sgo-sapem/internal/service"
	"sgo-sapem/pkg/log"
)

// respondError maps a service error to its HTTP response. Unexpected errors
// become an opaque 500.
func respondError(c *gin.Context, err error) {
	var appErr *service.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPCode >= http.StatusInternalServerError {
			log.Error(appErr.Message, appErr.Err)
		}
		c.JSON(appErr.HTTPCode, gin.H{"error": appErr.Message})
		return
	}
	log.Error("error inesperado", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "error interno del servidor"})
}
