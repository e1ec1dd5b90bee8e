package history

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"coffeestock-backend/internal/services"
	"coffeestock-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// ListHistory returns filtered, paginated log rows for the dashboard.
func ListHistory(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid page number"))
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid limit number"))
		return
	}

	filter := services.HistoryFilter{Page: page, Limit: limit}

	if userIDStr := c.Query("user_id"); userIDStr != "" {
		userID, err := strconv.Atoi(userIDStr)
		if err != nil || userID < 1 {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid user ID"))
			return
		}
		uid := uint(userID)
		filter.UserID = &uid
	}
	if fromStr := c.Query("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid from timestamp"))
			return
		}
		filter.StartTime = &from
	}
	if toStr := c.Query("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid to timestamp"))
			return
		}
		filter.EndTime = &to
	}

	entries, total, err := services.FindHistory(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch history"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("History retrieved", HistoryListResponse{
		Entries: entries,
		Total:   total,
		Page:    page,
		Limit:   limit,
	}))
}

// UpdateLog edits a row and re-balances the stock counter by the delta
// difference.
func UpdateLog(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid log ID"))
		return
	}

	var req UpdateLogRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.Delta == nil && req.ConsumedAt == nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "No fields to update"))
		return
	}

	entry, err := services.UpdateLog(uint(id), req.Delta, req.ConsumedAt)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLogNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Log entry not found"))
		case errors.Is(err, services.ErrCapReached):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, "Edit would exceed the user's consumption cap"))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update log entry"))
		}
		return
	}

	services.Dashboard.Publish(services.EventHistoryUpdateLog)

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Log entry updated", entry))
}

// DeleteLog removes one row and credits its delta back.
func DeleteLog(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid log ID"))
		return
	}

	if err := services.DeleteLog(uint(id)); err != nil {
		if errors.Is(err, services.ErrLogNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Log entry not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to delete log entry"))
		return
	}

	services.Dashboard.Publish(services.EventHistoryDeleteLog)

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Log entry deleted", nil))
}

// DeleteHistory bulk-deletes history, all of it or one user's, crediting
// the net sum back to the stock counter.
func DeleteHistory(c *gin.Context) {
	var userID *uint
	reason := services.EventHistoryDeleteAll

	if userIDStr := c.Query("user_id"); userIDStr != "" {
		id, err := strconv.Atoi(userIDStr)
		if err != nil || id < 1 {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid user ID"))
			return
		}
		uid := uint(id)
		userID = &uid
		reason = services.EventHistoryDeleteUser
	}

	removed, err := services.DeleteHistory(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to delete history"))
		return
	}

	services.Dashboard.Publish(reason)

	c.JSON(http.StatusOK, utils.NewSuccessResponse("History deleted", gin.H{"removed": removed}))
}

// ExportHistory streams the full joined dump as CSV (default) or XLSX.
func ExportHistory(c *gin.Context) {
	rows, _, err := services.FindHistory(services.HistoryFilter{Limit: 1 << 30})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch history"))
		return
	}

	filename := fmt.Sprintf("coffee-history-%s", time.Now().UTC().Format("2006-01-02"))

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		data, err := services.GenerateHistoryCSV(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to generate CSV"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))
		c.Data(http.StatusOK, "text/csv", data)
	case "xlsx":
		data, err := services.GenerateHistoryXLSX(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to generate XLSX"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", filename))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	default:
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Unsupported export format"))
	}
}
