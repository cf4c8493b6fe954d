// internal/devapi/middleware.go
package devapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agri-oasis/storefront/internal/domain/session"
	"github.com/agri-oasis/storefront/internal/pkg/auth"
)

const claimsKey = "token_claims"

// bearerAuth validates the bearer token and stores its claims
func (s *Server) bearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}

		claims, err := s.jwt.ValidateToken(tokenString)
		if err != nil {
			s.logger.WithError(err).Debug("Rejected bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid JWT token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// requireRole allows only the listed roles. Must run after bearerAuth.
func requireRole(roles ...session.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		for _, r := range roles {
			if string(r) == claims.Role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied"})
	}
}

func claimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
