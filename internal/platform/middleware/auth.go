package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/teranga-stays/service-rental/internal/platform/auth"
)

const (
	contextUserID   = "user_id"
	contextUserRole = "user_role"
)

// AuthMiddleware requires a valid bearer access token.
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, jwtManager)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "unauthorized", "message": "missing or invalid token"},
			})
			return
		}
		c.Set(contextUserID, claims.UserID)
		c.Set(contextUserRole, claims.Role)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the caller identity when a valid token is present
// and lets anonymous requests through.
func OptionalAuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := bearerClaims(c, jwtManager); ok {
			c.Set(contextUserID, claims.UserID)
			c.Set(contextUserRole, claims.Role)
		}
		c.Next()
	}
}

// RequireRole rejects callers whose token role is not in roles.
// It only gates routes; services re-resolve roles for privileged actions.
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "unauthorized", "message": "unauthorized"},
			})
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   gin.H{"code": "forbidden", "message": "insufficient role"},
		})
	}
}

// GetUserID returns the authenticated user's ID.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(contextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetUserRole returns the role claim of the authenticated user.
func GetUserRole(c *gin.Context) (auth.Role, bool) {
	v, ok := c.Get(contextUserRole)
	if !ok {
		return "", false
	}
	role, ok := v.(auth.Role)
	return role, ok
}

func bearerClaims(c *gin.Context, jwtManager *auth.JWTManager) (*auth.Claims, bool) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil, false
	}
	claims, err := jwtManager.ValidateToken(token)
	if err != nil || claims.TokenType != auth.TokenTypeAccess {
		return nil, false
	}
	return claims, true
}
