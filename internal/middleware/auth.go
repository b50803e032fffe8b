package middleware

import (
	"net/http"
	"strings"

	"github.com/Juadebfm/ecorewards-deploy/internal/auth"
	"github.com/Juadebfm/ecorewards-deploy/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	authUserKey  = "auth_user_id"
	authEmailKey = "auth_email"
	authRoleKey  = "auth_role"
)

// RequireAuth validates the JWT token and sets the caller identity in
// the request context. The claim core trusts this boundary completely.
func RequireAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Check for Bearer token format
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format. Use: Bearer <token>"})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(parts[1])
		if err != nil {
			if err == auth.ErrExpiredToken {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			c.Abort()
			return
		}

		c.Set(authUserKey, claims.UserID)
		c.Set(authEmailKey, claims.Email)
		c.Set(authRoleKey, claims.Role)

		c.Next()
	}
}

// RequireAdmin ensures the authenticated caller has the admin role
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(authRoleKey)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		if role.(string) != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequirePartnerOrAdmin ensures the caller manages reward campaigns
func RequirePartnerOrAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(authRoleKey)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		if r := role.(string); r != models.RoleAdmin && r != models.RolePartner {
			c.JSON(http.StatusForbidden, gin.H{"error": "Partner access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetAuthUserID retrieves the authenticated user ID from context
func GetAuthUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(authUserKey)
	if !exists {
		return uuid.Nil, false
	}
	return userID.(uuid.UUID), true
}
