package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"sgo-sapem/internal/model"
)

// AdminAuthMiddleware restricts a route group to ADMIN accounts. It must
// run after AuthMiddleware.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := c.Get("user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "no se pudo obtener el usuario"})
			return
		}

		currentUser, ok := user.(*model.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "tipo de usuario inesperado"})
			return
		}

		if currentUser.Rol != model.RolAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "se requieren permisos de administrador"})
			return
		}

		c.Next()
	}
}
