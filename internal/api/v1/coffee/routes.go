package coffee

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	coffee := router.Group("/coffee")
	coffee.GET("/status", Status)
	coffee.POST("/consume", Consume)
	coffee.GET("/history", History)
}
