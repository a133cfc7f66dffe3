package controllers

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"asset_borrow_tracker/app"

	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

type SystemController struct{ *Srv }

func NewSystemController(s *Srv) *SystemController { return &SystemController{Srv: s} }

type componentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Size    string `json:"size,omitempty"`
}

// GET /api/system/health
func (sc *SystemController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	dbStatus := componentStatus{Status: "ok", Message: "Connected to database", Size: "Unknown"}
	if err := sc.Repo.Ping(ctx); err != nil {
		dbStatus = componentStatus{Status: "error", Message: "Database connection failed: " + err.Error(), Size: "Unknown"}
	} else if size, err := sc.Repo.DatabaseSize(ctx); err == nil {
		dbStatus.Size = size
	}

	redisStatus := componentStatus{Status: "ok", Message: "Connected to redis"}
	if err := sc.RDB.Ping(ctx).Err(); err != nil {
		redisStatus = componentStatus{Status: "error", Message: "Redis connection failed: " + err.Error()}
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	c.JSON(http.StatusOK, app.H{
		"timestamp": time.Now().UTC(),
		"database":  dbStatus,
		"redis":     redisStatus,
		"system": app.H{
			"platform":   runtime.GOOS,
			"cpus":       runtime.NumCPU(),
			"goroutines": runtime.NumGoroutine(),
			"memory":     fmt.Sprintf("%d MB", ms.Sys/(1024*1024)),
			"uptime":     time.Since(startedAt).Round(time.Second).String(),
		},
	})
}

// POST /api/system/cleanup（管理员）：归档一年前已归还的申请
func (sc *SystemController) Cleanup(c *gin.Context) {
	res, err := sc.Archiver.Run(c.Request.Context())
	if err != nil {
		serverError(c, "Failed to run cleanup", err)
		return
	}
	if res.Archived > 0 {
		sc.audit(c, "ARCHIVE", "BorrowRequest", "*", fmt.Sprintf("Archived %d requests to %s", res.Archived, res.File))
	}
	c.JSON(http.StatusOK, app.H{
		"message":  "Cleanup completed successfully",
		"archived": res.Archived,
		"file":     res.File,
	})
}
