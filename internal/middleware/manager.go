package middleware

import (
	"net/http"

	"kejani/internal/domain"

	"github.com/gin-gonic/gin"
)

// ManagerRequired admits landlords and caretakers. Tenant-facing routes use
// their own group; this keeps the management surface off their token
// entirely. Use after AuthRequired.
func ManagerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		r := domain.Role(role.(string))
		if !r.IsLandlord() && !r.IsCaretaker() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "management access required"})
			return
		}
		c.Next()
	}
}

// LandlordRequired gates landlord-only routes.
func LandlordRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || !domain.Role(role.(string)).IsLandlord() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "landlord access required"})
			return
		}
		c.Next()
	}
}

// TenantRequired gates the tenant self-service surface.
func TenantRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || !domain.Role(role.(string)).IsTenant() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "tenant access required"})
			return
		}
		c.Next()
	}
}
