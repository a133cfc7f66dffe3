package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type DashboardController struct{ *Srv }

func NewDashboardController(s *Srv) *DashboardController { return &DashboardController{Srv: s} }

// GET /api/dashboard（管理员）
func (dc *DashboardController) Summary(c *gin.Context) {
	d, err := dc.Repo.DashboardSummary(c.Request.Context())
	if err != nil {
		serverError(c, "Failed to fetch dashboard data", err)
		return
	}
	c.JSON(http.StatusOK, d)
}
