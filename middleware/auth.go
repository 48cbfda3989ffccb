package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gursha/models"
	"gursha/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware verifies the bearer token and stores the subject's id and
// role in the request context as "user_id" and "user_role".
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "No token provided"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid authorization header"})
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized - Invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized - Invalid token"})
			return
		}

		id, ok := claims["id"].(float64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized - Invalid token"})
			return
		}
		role, _ := claims["role"].(string)

		c.Set("user_id", uint(id))
		c.Set("user_role", role)
		c.Next()
	}
}

// RequireAdmin allows only admin subjects past.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("user_role") != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Require Admin Role!"})
			return
		}
		c.Next()
	}
}

// PackageGuard blocks any paid action by a controller whose package has run
// out. It must sit before the handler so nothing is committed for a depleted
// controller; it performs no deduction itself.
func PackageGuard(packages *services.PackageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		role := c.GetString("user_role")

		if err := packages.CheckAccess(userID, role); err != nil {
			var depleted *services.PackageDepletedError
			switch {
			case errors.As(err, &depleted):
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"message":         "Package depleted. Please contact admin to refill your package.",
					"packageDepleted": true,
					"originalAmount":  depleted.OriginalAmount,
				})
			case errors.Is(err, services.ErrUserNotFound):
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "User not found"})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error checking package status"})
			}
			return
		}

		c.Next()
	}
}
