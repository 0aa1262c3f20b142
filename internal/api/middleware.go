package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"marketplace-service/internal/auth"
	"marketplace-service/internal/models"
)

const (
	ctxUserIDKey = "user_id"
	ctxRoleKey   = "role"
)

// authMiddleware validates the Bearer token and stores the caller's
// identity on the context.
func authMiddleware(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
			return
		}

		claims, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "), jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxRoleKey, claims.Role)
		c.Next()
	}
}

// requireRole gates a route group to one role
func requireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if callerRole(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "insufficient role"})
			return
		}
		c.Next()
	}
}

func callerID(c *gin.Context) int64 {
	id, _ := c.Get(ctxUserIDKey)
	userID, _ := id.(int64)
	return userID
}

func callerRole(c *gin.Context) models.Role {
	r, _ := c.Get(ctxRoleKey)
	role, _ := r.(models.Role)
	return role
}
