package mail

import (
	"errors"
	"net/http"

	"coffeestock-backend/internal/middleware"
	"coffeestock-backend/internal/services"
	"coffeestock-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type TestMailRequest struct {
	To string `json:"to" binding:"omitempty,email"`
}

// SendTestMail dispatches a test message. Unlike the consumption
// broadcast, mailer failure here is surfaced directly to the caller.
func SendTestMail(c *gin.Context) {
	var req TestMailRequest
	if c.Request.ContentLength > 0 {
		if !utils.BindAndValidate(c, &req) {
			return
		}
	}

	to := req.To
	if to == "" {
		actor, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
			return
		}
		to = actor.Email
	}

	if err := services.SendTestMail(to); err != nil {
		if errors.Is(err, services.ErrMailNotConfigured) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
			return
		}
		services.RecordRuntimeError("mail", err)
		c.JSON(http.StatusBadGateway, utils.NewErrorResponse(http.StatusBadGateway, "Mail delivery failed: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Test mail sent", gin.H{"to": to}))
}

// ListRuntimeErrors exposes the bounded ring of recent background
// failures.
func ListRuntimeErrors(c *gin.Context) {
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Recent runtime errors", services.RecentRuntimeErrors()))
}
