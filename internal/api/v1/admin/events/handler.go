package events

import (
	"io"

	"coffeestock-backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Stream pushes dashboard refresh reasons over SSE until the client
// disconnects.
func Stream(c *gin.Context) {
	ch, cancel := services.Dashboard.Subscribe()
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("refresh", ev)
			return true
		}
	})
}
