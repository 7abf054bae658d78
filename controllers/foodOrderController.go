package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type selectFoodOrderRequest struct {
	Name        string `json:"name"`
	Room_number int    `json:"roomNumber" validate:"gte=0"`
}

type estimateRequest struct {
	Estimated_minutes int `json:"estimatedMinutes" validate:"required,oneof=5 10 15 20 30 45 60"`
}

// SelectFoodOrder opens the estimated-time prompt for an order.
func (ctl *Controller) SelectFoodOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req selectFoodOrderRequest
		if !bindJSON(c, &req) {
			return
		}
		selection := ctl.Workflow.OpenTimeModal(c.Param("id"), req.Name, req.Room_number)
		c.JSON(http.StatusOK, selection)
	}
}

func (ctl *Controller) SetEstimatedTime() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req estimateRequest
		if !bindJSON(c, &req) {
			return
		}
		selection, err := ctl.Workflow.SetEstimatedTime(req.Estimated_minutes)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, selection)
	}
}

func (ctl *Controller) ClearSelection() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctl.Workflow.CloseTimeModal()
		c.JSON(http.StatusOK, gin.H{"message": "selection cleared"})
	}
}

// AcceptSelectedFoodOrder accepts the selected order with its selected
// estimate.
func (ctl *Controller) AcceptSelectedFoodOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithoutCancel(c.Request.Context())
		conf, err := ctl.Workflow.AcceptFoodOrderWithTime(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, conf)
	}
}

func (ctl *Controller) AcceptFoodOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req estimateRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx := context.WithoutCancel(c.Request.Context())
		conf, err := ctl.Workflow.AcceptFoodOrder(ctx, c.Param("id"), req.Estimated_minutes)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, conf)
	}
}
