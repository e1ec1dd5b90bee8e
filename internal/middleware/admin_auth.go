package middleware

import (
	"net/http"

	"coffeestock-backend/internal/models"
	"coffeestock-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// AdminAuthMiddleware layers the role gate on top of AuthMiddleware. An
// authenticated caller without the admin role gets 403, not 401. The role
// comes from the live user row, not the token claims, so a demotion takes
// effect immediately.
func AdminAuthMiddleware() gin.HandlerFunc {
	authenticate := AuthMiddleware()
	return func(c *gin.Context) {
		authenticate(c)
		if c.IsAborted() {
			return
		}

		userVal, exists := c.Get("user")
		user, ok := userVal.(models.User)
		if !exists || !ok || !user.IsAdmin() {
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Forbidden: admins only"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUser pulls the authenticated user set by AuthMiddleware.
func CurrentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get("user")
	if !exists {
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	return user, ok
}
