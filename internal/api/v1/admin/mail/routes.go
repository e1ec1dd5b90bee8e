package mail

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/mail/test", SendTestMail)
	router.GET("/errors", ListRuntimeErrors)
}
