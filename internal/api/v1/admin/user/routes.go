package user

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/users", ListUsers)
	router.POST("/users", CreateUser)
	router.PATCH("/users/:id", UpdateUser)
	router.DELETE("/users/:id", DeleteUser)
	router.GET("/users/:id/stats", UserStats)
	router.POST("/users/:id/consume", ConsumeOnBehalf)
}
