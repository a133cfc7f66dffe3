package controllers

import (
	"net/http"

	"asset_borrow_tracker/db"

	"github.com/gin-gonic/gin"
)

type AuditController struct{ *Srv }

func NewAuditController(s *Srv) *AuditController { return &AuditController{Srv: s} }

// GET /api/audit?actorId=&entityType=&entityId=&page=&size=（管理员）
func (ac *AuditController) List(c *gin.Context) {
	page, size := pageParams(c)
	res, err := ac.Repo.ListAuditLogs(c.Request.Context(), db.AuditQuery{
		ActorID:    c.Query("actorId"),
		EntityType: c.Query("entityType"),
		EntityID:   c.Query("entityId"),
		Page:       page,
		Size:       size,
	})
	if err != nil {
		serverError(c, "Failed to fetch audit logs", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
