package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/roadquest/game/adventure"
	"github.com/kasuganosora/roadquest/model"
	"go.uber.org/zap"
)

// InventoryHandler handles equipment endpoints.
type InventoryHandler struct {
	svc    *adventure.Service
	logger *zap.Logger
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(svc *adventure.Service, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{svc: svc, logger: logger}
}

type equipRequest struct {
	Slot        model.Slot `json:"slot" binding:"required"`
	InventoryID int64      `json:"inventory_id" binding:"required"`
}

// Equip handles POST /api/characters/:id/equip.
func (h *InventoryHandler) Equip(c *gin.Context) {
	id, ok := charID(c)
	if !ok {
		return
	}
	var req equipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "slot and inventory_id are required")
		return
	}
	comp, err := h.svc.Equip(c.Request.Context(), id, req.Slot, req.InventoryID)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": comp.Total, "effects": comp.EffectTags()})
}

type unequipRequest struct {
	Slot model.Slot `json:"slot" binding:"required"`
}

// Unequip handles POST /api/characters/:id/unequip.
func (h *InventoryHandler) Unequip(c *gin.Context) {
	id, ok := charID(c)
	if !ok {
		return
	}
	var req unequipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "slot is required")
		return
	}
	comp, err := h.svc.Unequip(c.Request.Context(), id, req.Slot)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": comp.Total, "effects": comp.EffectTags()})
}
