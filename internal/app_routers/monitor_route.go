package approuters

import (
	"github.com/gin-gonic/gin"

	"github.com/rohitnarwariya/PlaceReady-1/internal/configuration"
)

// MonitorRouters sets up monitoring API routes
func MonitorRouters(router *gin.Engine, container *configuration.Container) {
	monitorGroup := router.Group("/pr/api/monitor")
	{
		// GET /pr/api/monitor/stats - Get hub statistics
		monitorGroup.GET("/stats", container.MonitorHandler.GetHubStats)
	}
}
