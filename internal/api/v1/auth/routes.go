package auth

import (
	"coffeestock-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	auth.POST("/login", Login)
	auth.POST("/register", Register)
	auth.GET("/registration/approve", ApproveRegistration)
	auth.GET("/registration/reject", RejectRegistration)
	auth.POST("/logout", middleware.AuthMiddleware(), Logout)
	auth.GET("/me", middleware.AuthMiddleware(), Me)
}
