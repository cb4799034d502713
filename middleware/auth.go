package middleware

import (
	"net/http"
	"os"
	"strings"

	"journal-management-api/config"
	"journal-management-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Role names usable with RequireRole. They map onto the user's
// capability flags; a user may hold several at once.
const (
	RoleManagingEditor = "managing_editor"
	RoleAreaEditor     = "area_editor"
	RoleReferee        = "referee"
	RoleAuthor         = "author"
)

type Claims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates JWT token and loads the user's role flags.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("JWT_SECRET")), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		// Check if user still exists; role flags are read fresh from the
		// database so revoking a role takes effect immediately.
		var user models.User
		if err := config.DB.Where("user_id = ? AND delete_at IS NULL", claims.UserID).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			c.Abort()
			return
		}

		roles := map[string]bool{
			RoleManagingEditor: user.ManagingEditor,
			RoleAreaEditor:     user.AreaEditor,
			RoleReferee:        user.Referee,
			RoleAuthor:         user.Author,
		}

		c.Set("userID", user.UserID)
		c.Set("email", user.Email)
		c.Set("roles", roles)

		c.Next()
	}
}

// RequireRole allows the request through when the user holds at least
// one of the named roles.
func RequireRole(roleNames ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get("roles")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Role not found"})
			c.Abort()
			return
		}

		roles, ok := v.(map[string]bool)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Role not found"})
			c.Abort()
			return
		}

		allowed := false
		for _, name := range roleNames {
			if roles[name] {
				allowed = true
				break
			}
		}

		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}
