package routes

import (
	controller "go-hotel-dashboard/controllers"

	"github.com/gin-gonic/gin"
)

func UserRoutes(incomingRoutes *gin.Engine, ctl *controller.Controller) {
	incomingRoutes.POST("/users/login", ctl.Login())
	incomingRoutes.GET("/ws", ctl.WebSocket())
}

// SessionRoutes need a signed-in operator's token.
func SessionRoutes(incomingRoutes *gin.Engine, ctl *controller.Controller) {
	incomingRoutes.POST("/users/logout", ctl.Logout())
}
