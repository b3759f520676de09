package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"course-classroom/internal/hub"
)

// StatsProvider 提供在线房间和会话数量
type StatsProvider interface {
	Stats() hub.Stats
}

// HealthHandler 提供存活检查
type HealthHandler struct {
	rooms StatsProvider
}

// NewHealthHandler 创建 HealthHandler 实例
func NewHealthHandler(rooms StatsProvider) *HealthHandler {
	if rooms == nil {
		panic("StatsProvider cannot be nil for HealthHandler")
	}
	return &HealthHandler{rooms: rooms}
}

// Ping 返回服务状态和 Hub 的统计信息
func (h *HealthHandler) Ping(c *gin.Context) {
	stats := h.rooms.Stats()
	SuccessResponse(c, http.StatusOK, gin.H{
		"status":   "ok",
		"rooms":    stats.Rooms,
		"sessions": stats.Sessions,
	})
}
