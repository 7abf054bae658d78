package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type acceptServiceRequest struct {
	Type        string `json:"type"`
	Room_number int    `json:"roomNumber" validate:"gte=0"`
}

// AcceptServiceRequest marks the request in progress. The write is not
// abandoned if the client goes away.
func (ctl *Controller) AcceptServiceRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req acceptServiceRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx := context.WithoutCancel(c.Request.Context())
		conf, err := ctl.Workflow.AcceptServiceRequest(ctx, c.Param("id"), req.Type, req.Room_number)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, conf)
	}
}
