// Package controllers exposes the dashboard over HTTP and a websocket.
package controllers

import (
	"errors"
	"net/http"

	"go-hotel-dashboard/database"
	"go-hotel-dashboard/helpers"
	"go-hotel-dashboard/rooms"
	"go-hotel-dashboard/session"
	"go-hotel-dashboard/views"
	"go-hotel-dashboard/workflow"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
	"go.uber.org/zap"
)

var validate = validator.New()

// DashboardSource is the live aggregated view.
type DashboardSource interface {
	Snapshot() views.View
	Resubscribe() error
}

// Controller holds what the handlers need. Every field except Hub is
// required.
type Controller struct {
	Views           DashboardSource
	Workflow        *workflow.Workflow
	Sessions        *session.Manager
	Tokens          *helpers.TokenMaker
	Admins          AdminStore
	Rooms           rooms.Store
	RoomsCollection string
	Hub             *Hub
	Logger          *zap.Logger
}

// respondError writes err as {"error": msg}. Failures of the remote store
// reach the operator with their original message.
func respondError(c *gin.Context, err error) {
	var stepErr *workflow.StepError
	switch {
	case errors.As(err, &stepErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":      err.Error(),
			"step":       stepErr.Step.String(),
			"orderId":    stepErr.OrderID,
			"trackingId": stepErr.TrackingID,
		})
	case errors.Is(err, workflow.ErrUnbound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrNoSelection):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrNotFood),
		errors.Is(err, workflow.ErrInvalidEstimate),
		errors.Is(err, rooms.ErrInvalidTotal),
		errors.Is(err, database.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// bindJSON decodes and validates the request body, answering 400 itself
// when either fails.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	if validationErr := validate.Struct(obj); validationErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
		return false
	}
	return true
}
