package controllers

import (
	"context"
	"net/http"
	"time"

	"go-hotel-dashboard/rooms"

	"github.com/gin-gonic/gin"
)

type setupRoomsRequest struct {
	Total int `json:"total" validate:"required,min=1,max=1000"`
}

// SetupRooms creates the signed-in operator's rooms once.
func (ctl *Controller) SetupRooms() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var req setupRoomsRequest
		if !bindJSON(c, &req) {
			return
		}
		created, err := rooms.Setup(ctx, ctl.Rooms, ctl.RoomsCollection, c.GetString("uid"), req.Total)
		if err != nil {
			respondError(c, err)
			return
		}
		if created == 0 {
			c.JSON(http.StatusOK, gin.H{"message": "rooms already set up", "created": 0})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "rooms created", "created": created})
	}
}
