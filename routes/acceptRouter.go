package routes

import (
	controller "go-hotel-dashboard/controllers"

	"github.com/gin-gonic/gin"
)

func AcceptRoutes(incomingRoutes *gin.Engine, ctl *controller.Controller) {
	incomingRoutes.POST("/service-requests/:id/accept", ctl.AcceptServiceRequest())
	incomingRoutes.POST("/food-orders/:id/select", ctl.SelectFoodOrder())
	incomingRoutes.POST("/food-orders/:id/accept", ctl.AcceptFoodOrder())
	incomingRoutes.PUT("/food-orders/selection", ctl.SetEstimatedTime())
	incomingRoutes.DELETE("/food-orders/selection", ctl.ClearSelection())
	incomingRoutes.POST("/food-orders/selection/accept", ctl.AcceptSelectedFoodOrder())
}
