package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ghostauth/internal/token"
)

const authClaimsKey = "auth_claims"

// AuthMiddleware valida access tokens y guarda claims en el contexto. Un
// token de otro type (refresh incluido) no sirve para autorizar requests.
func AuthMiddleware(codec *token.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		if codec == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token codec not configured"})
			c.Abort()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		raw := strings.TrimSpace(header[len("Bearer "):])
		claims, err := codec.Verify(raw)
		if err != nil || claims.TokenType != token.TypeAccess {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// GetAuthClaims obtiene claims del token desde el contexto.
func GetAuthClaims(c *gin.Context) (token.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return token.Claims{}, false
	}
	claims, ok := val.(token.Claims)
	return claims, ok
}
