package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type MaintenanceController struct{ *Srv }

func NewMaintenanceController(s *Srv) *MaintenanceController {
	return &MaintenanceController{Srv: s}
}

// POST /api/maintenance/:id/start {reason?}
func (mc *MaintenanceController) Start(c *gin.Context) {
	var in struct {
		Reason string `json:"reason"`
	}
	if !bindOptionalJSON(c, &in) {
		return
	}

	it, err := mc.Engine.StartMaintenance(c.Request.Context(), c.Param("id"), in.Reason)
	if err != nil {
		respondError(c, err, "Failed to start maintenance")
		return
	}
	mc.audit(c, "MAINTENANCE_START", "Item", it.ID, in.Reason)
	c.JSON(http.StatusOK, it)
}

// POST /api/maintenance/:id/complete {notes?}
func (mc *MaintenanceController) Complete(c *gin.Context) {
	var in struct {
		Notes string `json:"notes"`
	}
	if !bindOptionalJSON(c, &in) {
		return
	}

	it, err := mc.Engine.CompleteMaintenance(c.Request.Context(), c.Param("id"), in.Notes)
	if err != nil {
		respondError(c, err, "Failed to complete maintenance")
		return
	}
	mc.audit(c, "MAINTENANCE_COMPLETE", "Item", it.ID, in.Notes)
	c.JSON(http.StatusOK, it)
}
