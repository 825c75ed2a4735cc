// Package middleware provides the Gin middleware chain.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"sgo-sapem/internal/service"
	"sgo-sapem/pkg/token"
)

// AuthMiddleware validates the bearer token and loads the full user into
// the Gin context for the handlers downstream.
func AuthMiddleware(jwtManager *token.JWTManager, userService service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "falta el encabezado de autorización"})
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "formato de autorización inválido"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token inválido o expirado"})
			return
		}

		// Resolve the full account; a deleted user invalidates its tokens.
		user, err := userService.Perfil(c.Request.Context(), claims.Username)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "el usuario no existe"})
			return
		}

		c.Set("user", user)
		c.Set("claims", claims)
		c.Next()
	}
}
