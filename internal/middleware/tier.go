package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/id8-org/id8-recovery/internal/tiers"
)

// RequireFeature gates a route on a tier or account entitlement.
func RequireFeature(feature string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetCurrentUser(c)
		if user == nil || !tiers.HasFeature(user, feature) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    40301,
				"message": "your plan does not include this feature",
				"data":    nil,
			})
			return
		}
		c.Next()
	}
}
