package controllers

import (
	"net/http"

	"go-hotel-dashboard/workflow"

	"github.com/gin-gonic/gin"
)

func (ctl *Controller) GetDashboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, ctl.Views.Snapshot())
	}
}

func (ctl *Controller) GetTimeOptions() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"timeOptions": workflow.TimeOptions,
			"default":     workflow.DefaultEstimatedMinutes,
		})
	}
}

// Resubscribe reopens the live feeds, e.g. after one stopped on an error.
func (ctl *Controller) Resubscribe() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ctl.Views.Resubscribe(); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "live updates restarted"})
	}
}
