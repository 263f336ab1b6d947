package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"chatdesk/api/utils"
)

const (
	TokenCookie      = "jwt_token"
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
)

// TokenFromRequest reads the owner token from the jwt_token cookie, falling
// back to a Bearer Authorization header.
func TokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(TokenCookie); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func AuthRequired(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := TokenFromRequest(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token provided"})
			return
		}

		claims, err := tokens.ValidateJWT(tokenString)
		if err != nil {
			log.Debug().Err(err).Str("path", c.FullPath()).Msg("AuthRequired: invalid JWT")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid or expired token"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}
