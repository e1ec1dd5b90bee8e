package api

import (
	"net/http"

	"coffeestock-backend/config"
	adminEvents "coffeestock-backend/internal/api/v1/admin/events"
	adminHistory "coffeestock-backend/internal/api/v1/admin/history"
	adminMail "coffeestock-backend/internal/api/v1/admin/mail"
	adminStock "coffeestock-backend/internal/api/v1/admin/stock"
	adminUser "coffeestock-backend/internal/api/v1/admin/user"
	"coffeestock-backend/internal/api/v1/auth"
	"coffeestock-backend/internal/api/v1/coffee"
	"coffeestock-backend/internal/database"
	"coffeestock-backend/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter() (*gin.Engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	_, err = database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}

	err = database.ConnectRedis(cfg)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Liveness plus the resolved storage namespace.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"database": cfg.DBName,
		})
	})

	// API v1
	v1 := router.Group("/api/v1")
	{
		auth.RegisterRoutes(v1)

		authorized := v1.Group("/")
		authorized.Use(middleware.AuthMiddleware())
		{
			coffee.RegisterRoutes(authorized)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware())
		{
			adminUser.RegisterRoutes(admin)
			adminStock.RegisterRoutes(admin)
			adminHistory.RegisterRoutes(admin)
			adminMail.RegisterRoutes(admin)
			adminEvents.RegisterRoutes(admin)
		}
	}

	return router, nil
}
