package routes

import (
	controller "go-hotel-dashboard/controllers"

	"github.com/gin-gonic/gin"
)

func DashboardRoutes(incomingRoutes *gin.Engine, ctl *controller.Controller) {
	incomingRoutes.GET("/dashboard", ctl.GetDashboard())
	incomingRoutes.GET("/dashboard/time-options", ctl.GetTimeOptions())
	incomingRoutes.POST("/dashboard/resubscribe", ctl.Resubscribe())
	incomingRoutes.POST("/rooms/setup", ctl.SetupRooms())
}
