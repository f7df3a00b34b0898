package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

const principalKey = "principal"

// UserAuth validates the bearer token and injects the authenticated principal
// into the request context. Token issuance happens elsewhere; this core only
// consumes tokens and enforces its own checks on top of the principal.
func UserAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := principalFromHeader(c.GetHeader("Authorization"), secret)
		if err != nil {
			log.Println("[AUTH] [ERROR] token validation failed:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// AdminAuth is UserAuth plus the admin role requirement.
func AdminAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := principalFromHeader(c.GetHeader("Authorization"), secret)
		if err != nil {
			log.Println("[AUTH] [ERROR] token validation failed:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !principal.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// Principal returns the actor stored by the auth middleware.
func Principal(c *gin.Context) (models.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	principal, ok := value.(models.Principal)
	return principal, ok
}

func principalFromHeader(header, secret string) (models.Principal, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return models.Principal{}, jwt.ErrTokenMalformed
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return models.Principal{}, jwt.ErrTokenMalformed
	}

	// Tokens are issued with HS256; anything else is rejected before the key
	// function runs.
	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Principal{}, err
	}
	if !token.Valid {
		return models.Principal{}, jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Principal{}, jwt.ErrTokenInvalidClaims
	}

	userIDValue, ok := claims["userId"].(string)
	if !ok || strings.TrimSpace(userIDValue) == "" {
		return models.Principal{}, jwt.ErrTokenInvalidClaims
	}
	userID, err := primitive.ObjectIDFromHex(userIDValue)
	if err != nil {
		return models.Principal{}, jwt.ErrTokenInvalidClaims
	}

	role := models.RoleUser
	if claimed, _ := claims["role"].(string); claimed == string(models.RoleAdmin) {
		role = models.RoleAdmin
	}

	return models.Principal{ID: userID, Role: role}, nil
}
