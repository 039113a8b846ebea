package restapi

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the operator API under /api/v1.
func RegisterRoutes(router *gin.Engine, handler *WatcherHandler) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", handler.GetStatusHandler)
		v1.GET("/logs", handler.GetLogsHandler)
		v1.GET("/wallets", handler.GetWalletsHandler)
		v1.POST("/watcher/start", handler.StartWatcherHandler)
		v1.POST("/watcher/stop", handler.StopWatcherHandler)
	}
}
