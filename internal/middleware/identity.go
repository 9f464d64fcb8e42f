package middleware

import (
	"net/http"

	"kejani/internal/authz"

	"github.com/gin-gonic/gin"
)

// RequireIdentity resolves the caller's authorization identity from the
// database on every request. The token only carries the user id; role and
// managed scope are looked up fresh here, so an unlinked caretaker or a
// moved tenant loses access on their very next request. Use after
// AuthRequired.
func RequireIdentity(resolver *authz.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, err := resolver.Resolve(userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account no longer active"})
			return
		}
		c.Set("identity", id)
		c.Next()
	}
}

// GetIdentity returns the resolved identity (must be used after
// RequireIdentity).
func GetIdentity(c *gin.Context) *authz.Identity {
	v, _ := c.Get("identity")
	if v == nil {
		return nil
	}
	return v.(*authz.Identity)
}
