package history

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/history", ListHistory)
	router.GET("/history/export", ExportHistory)
	router.PATCH("/history/:id", UpdateLog)
	router.DELETE("/history/:id", DeleteLog)
	router.DELETE("/history", DeleteHistory)
}
