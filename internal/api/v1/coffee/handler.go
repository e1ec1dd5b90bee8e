package coffee

import (
	"errors"
	"net/http"
	"strconv"

	"coffeestock-backend/internal/middleware"
	"coffeestock-backend/internal/models"
	"coffeestock-backend/internal/services"
	"coffeestock-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

func toStatusResponse(s models.StockSettings, d services.StockDerived) StatusResponse {
	return StatusResponse{
		InitialStock:    s.InitialStock,
		CurrentStock:    s.CurrentStock,
		MinStock:        s.MinStock,
		ConsumedTotal:   d.ConsumedTotal,
		ExpectedCurrent: d.ExpectedCurrent,
		ManualDelta:     d.ManualDelta,
		Low:             d.Low,
		UpdatedBy:       s.UpdatedBy,
		UpdatedAt:       s.UpdatedAt,
	}
}

// Status returns the stock snapshot plus derived fields.
func Status(c *gin.Context) {
	s, derived, err := services.StockStatus()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to load stock status"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Stock status retrieved", toStatusResponse(s, derived)))
}

// Consume runs the consumption state machine for the caller.
func Consume(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	var input ConsumeInput
	if !utils.BindOptional(c, &input) {
		return
	}

	result, err := services.Consume(user, input.Delta)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStockExhausted):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, "Stock exhausted"))
		case errors.Is(err, services.ErrCapReached):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, "Consumption cap reached"))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to consume"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Coffee consumed", ConsumeResponse{
		LogID:      result.Log.ID,
		Delta:      result.Log.Delta,
		ConsumedAt: result.Log.ConsumedAt,
		Stock:      toStatusResponse(result.Stock, result.Derived),
		Remaining:  result.Remaining,
	}))
}

// History lists log rows. Non-admins only see their own; an admin can
// pass mine=0 for everyone's.
func History(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	mine := c.DefaultQuery("mine", "1") != "0"
	if !user.IsAdmin() {
		mine = true
	}

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid limit number"))
			return
		}
		limit = n
	}

	filter := services.HistoryFilter{Limit: limit}
	if mine {
		filter.UserID = &user.ID
	}

	entries, total, err := services.FindHistory(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch history"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("History retrieved", HistoryResponse{
		Entries: entries,
		Total:   total,
	}))
}
