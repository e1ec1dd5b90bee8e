package auth

import (
	"errors"
	"net/http"
	"time"

	"coffeestock-backend/internal/middleware"
	"coffeestock-backend/internal/models"
	"coffeestock-backend/internal/services"
	"coffeestock-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

func toUserResponse(u *models.User, token string) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		IsActive:   u.IsActive,
		MaxCoffees: u.MaxCoffees,
		Notify:     u.Notify,
		Token:      token,
	}
}

// Login authenticates by email and password and issues a session token.
func Login(c *gin.Context) {
	var input LoginInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	token, u, err := services.LoginUser(input.Email, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrUserInactive) {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, err.Error()))
			return
		}
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Invalid email or password"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Logged in successfully", toUserResponse(u, token)))
}

// Register creates an inactive account pending admin approval.
func Register(c *gin.Context) {
	var input RegisterInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	u, err := services.RegisterUser(input.Email, input.Name, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to register user"))
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Registration received, awaiting admin approval", toUserResponse(u, "")))
}

// Me returns the authenticated user, reloaded from the database.
func Me(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	latest, err := services.FindUserByID(u.ID)
	if err == nil {
		u = latest
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("User information retrieved successfully", toUserResponse(&u, "")))
}

// resolveRegistration handles the approve/reject links mailed to admins.
// Only an action token opens this endpoint; a session token fails the
// type check in ValidateToken.
func resolveRegistration(c *gin.Context, approve bool) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "token query parameter is required"))
		return
	}

	claims, err := utils.ValidateToken(tokenString, utils.TokenTypeRegistrationAction)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Invalid or expired action token"))
		return
	}

	u, err := services.ResolveRegistration(claims.UserID, approve)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Registration no longer exists"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to resolve registration"))
		return
	}

	msg := "Registration rejected"
	if approve {
		msg = "Registration approved"
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse(msg, toUserResponse(u, "")))
}

func ApproveRegistration(c *gin.Context) {
	resolveRegistration(c, true)
}

func RejectRegistration(c *gin.Context) {
	resolveRegistration(c, false)
}

// Logout denylists the presented token for the rest of its lifetime.
func Logout(c *gin.Context) {
	tokenString, err := utils.ExtractToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, err.Error()))
		return
	}

	remaining := utils.SessionTokenTTL
	if claims, err := utils.ValidateToken(tokenString, utils.TokenTypeSession); err == nil && claims.ExpiresAt != nil {
		remaining = time.Until(claims.ExpiresAt.Time)
	}

	if err := services.AddToDenylist(tokenString, remaining); err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to denylist token"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Logged out successfully", nil))
}
