package user

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

func toListItem(u *models.User) UserListItem {
	return UserListItem{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		IsActive:   u.IsActive,
		MaxCoffees: u.MaxCoffees,
		Notify:     u.Notify,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid user ID"))
		return 0, false
	}
	return uint(id), true
}

// ListUsers returns a paginated user list.
func ListUsers(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid page number"))
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid limit number"))
		return
	}

	users, total, err := services.FindUsers(page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch users"))
		return
	}

	items := make([]UserListItem, 0, len(users))
	for i := range users {
		items = append(items, toListItem(&users[i]))
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Users retrieved successfully", UserListResponse{
		Users: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}))
}

// CreateUser adds an active user directly, no approval round trip.
func CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	u, err := services.CreateUser(req.Email, req.Name, req.Password, role, req.MaxCoffees, req.Notify)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to create user"))
		return
	}

	services.Dashboard.Publish(services.EventHistoryAddUser)

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("User created successfully", toListItem(u)))
}

// UpdateUser patches selective user fields.
func UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	updates := make(map[string]interface{})
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Password != nil {
		updates["password"] = *req.Password
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.MaxCoffees != nil {
		if *req.MaxCoffees < 0 {
			updates["max_coffees"] = nil
		} else {
			updates["max_coffees"] = *req.MaxCoffees
		}
	}
	if req.Notify != nil {
		updates["notify"] = *req.Notify
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "No fields to update"))
		return
	}

	u, err := services.UpdateUser(id, updates)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "User not found"))
		case errors.Is(err, services.ErrEmailTaken):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update user"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("User updated successfully", toListItem(u)))
}

// DeleteUser removes a user and their log rows. Self-delete is refused.
func DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	if err := services.DeleteUser(id, actor.ID); err != nil {
		switch {
		case errors.Is(err, services.ErrSelfDelete):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "User not found"))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to delete user"))
		}
		return
	}

	services.Dashboard.Publish(services.EventHistoryDeleteUser)

	c.JSON(http.StatusOK, utils.NewSuccessResponse("User deleted successfully", nil))
}

// UserStats reports the per-user consumption counters.
func UserStats(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	u, err := services.FindUserByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "User not found"))
		return
	}

	stats, err := services.StatsForUser(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to compute stats"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Stats retrieved successfully", stats))
}

// ConsumeOnBehalf runs the same consumption state machine as the
// self-serve endpoint for the given user.
func ConsumeOnBehalf(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	u, err := services.FindUserByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "User not found"))
		return
	}

	var req ConsumeRequest
	if !utils.BindOptional(c, &req) {
		return
	}

	result, err := services.Consume(u, req.Delta)
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

	services.Dashboard.Publish(services.EventAdminConsume)

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Coffee consumed", gin.H{
		"log_id":        result.Log.ID,
		"delta":         result.Log.Delta,
		"consumed_at":   result.Log.ConsumedAt,
		"current_stock": result.Stock.CurrentStock,
		"remaining":     result.Remaining,
	}))
}
