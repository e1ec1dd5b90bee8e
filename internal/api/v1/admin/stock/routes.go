package stock

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/stock", GetStock)
	router.PUT("/stock", UpdateStock)
}
