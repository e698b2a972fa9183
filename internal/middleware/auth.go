package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/docbook-api/internal/models"
	"github.com/harentsoaR/docbook-api/internal/utils"
)

// Context keys set by the auth middlewares.
const (
	UserIDKey   = "userID"
	UserRoleKey = "userRole"
)

const notAuthorized = "Not Authorized Login Again"

// AdminAuth accepts admin tokens sent in the atoken header.
func AdminAuth(tm *utils.TokenManager) gin.HandlerFunc {
	return authenticate(tm, models.RoleAdmin, "atoken")
}

// DoctorAuth accepts doctor tokens sent in d-token (or dtoken).
func DoctorAuth(tm *utils.TokenManager) gin.HandlerFunc {
	return authenticate(tm, models.RoleDoctor, "d-token", "dtoken")
}

// UserAuth accepts patient tokens sent in the token header.
func UserAuth(tm *utils.TokenManager) gin.HandlerFunc {
	return authenticate(tm, models.RoleUser, "token")
}

func authenticate(tm *utils.TokenManager, role string, headers ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFrom(c, headers)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": notAuthorized})
			return
		}

		claims, err := tm.Validate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": notAuthorized})
			return
		}
		if claims.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": notAuthorized})
			return
		}

		c.Set(UserIDKey, claims.ID)
		c.Set(UserRoleKey, claims.Role)
		c.Next()
	}
}

func tokenFrom(c *gin.Context, headers []string) string {
	for _, h := range headers {
		if v := strings.TrimSpace(c.GetHeader(h)); v != "" {
			return v
		}
	}
	authHeader := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// UserID returns the id stored by the auth middleware.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
