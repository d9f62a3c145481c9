package api

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/xiaobei/mvd/internal/logger"
	"github.com/xiaobei/mvd/pkg/utils"
)

// ==================== Status API ====================

func (s *Server) statusPayload() gin.H {
	return gin.H{
		"version": s.version,
		"port":    s.port,
		"uptime":  time.Since(s.startedAt).Round(time.Second).String(),
		"daemon":  s.monitor.Snapshot(),
		"scheduler": gin.H{
			"running":  s.scheduler.IsRunning(),
			"interval": s.scheduler.GetInterval().String(),
		},
		"loading":     s.proposals.Loading(),
		"subscribers": s.eventBus.Len(),
	}
}

func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.statusPayload()})
}

// ==================== Monitoring API ====================

// ProcessStats process statistics
type ProcessStats struct {
	PID        int     `json:"pid"`
	CPUPercent float64 `json:"cpu_percent"`
	MemoryMB   float64 `json:"memory_mb"`
	Memory     string  `json:"memory"`
}

func processStats(pid int32) (*ProcessStats, error) {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return nil, err
	}
	cpuPercent, _ := proc.CPUPercent()
	stats := &ProcessStats{PID: int(pid), CPUPercent: cpuPercent}
	if memInfo, err := proc.MemoryInfo(); err == nil && memInfo != nil {
		stats.MemoryMB = float64(memInfo.RSS) / 1024 / 1024
		stats.Memory = utils.FormatBytes(int64(memInfo.RSS))
	}
	return stats, nil
}

func (s *Server) getSystemInfo(c *gin.Context) {
	result := gin.H{}

	// Get mvd process info
	if stats, err := processStats(int32(os.Getpid())); err == nil {
		result["mvd"] = stats
	}

	// Get node daemon process info
	if pid := s.monitor.Snapshot().PID; pid > 0 {
		if stats, err := processStats(pid); err == nil {
			result["daemon"] = stats
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) getLogs(c *gin.Context) {
	lines := 200 // Default to 200 lines
	if linesParam := c.Query("lines"); linesParam != "" {
		if n, err := strconv.Atoi(linesParam); err == nil && n > 0 {
			lines = n
		}
	}

	logs, err := logger.ReadAppLogs(lines)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": logs})
}

// ==================== Analytics API ====================

func (s *Server) getAnalytics(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	c.JSON(http.StatusOK, gin.H{"data": s.store.GetUserEvents(limit)})
}
