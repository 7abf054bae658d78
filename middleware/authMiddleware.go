package middleware

import (
	"net/http"

	"go-hotel-dashboard/helpers"

	"github.com/gin-gonic/gin"
)

// IdentitySource reports the operator the dashboard is bound to.
type IdentitySource interface {
	Current() string
}

// Authentication accepts a request only when its token belongs to the
// operator currently signed in, so a stale token cannot act on another
// operator's data.
func Authentication(tokens *helpers.TokenMaker, sessions IdentitySource) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientToken := c.Request.Header.Get("token")
		if clientToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no authorization token provided"})
			return
		}
		claims, err := tokens.ValidateToken(clientToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if current := sessions.Current(); current == "" || current != claims.Uid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "operator is not signed in"})
			return
		}
		c.Set("email", claims.Email)
		c.Set("Name", claims.Name)
		c.Set("uid", claims.Uid)
		c.Next()
	}
}
