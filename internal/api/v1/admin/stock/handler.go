package stock

import (
	"net/http"

	"coffeestock-backend/internal/middleware"
	"coffeestock-backend/internal/services"
	"coffeestock-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type UpdateStockRequest struct {
	InitialStock int `json:"initial_stock" binding:"gte=0"`
	CurrentStock int `json:"current_stock" binding:"gte=0"`
	MinStock     int `json:"min_stock" binding:"gte=0"`
}

// GetStock returns the settings row plus derived fields.
func GetStock(c *gin.Context) {
	s, derived, err := services.StockStatus()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to load stock settings"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Stock settings retrieved", gin.H{
		"settings": s,
		"derived":  derived,
	}))
}

// UpdateStock overwrites the settings row and records the acting admin.
// Divergence from the consumption ledger introduced here shows up as
// manual_delta, not as an error.
func UpdateStock(c *gin.Context) {
	var req UpdateStockRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	s, err := services.UpdateStockSettings(req.InitialStock, req.CurrentStock, req.MinStock, actor.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update stock settings"))
		return
	}

	services.Dashboard.Publish(services.EventStockInit)

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Stock settings updated", s))
}
