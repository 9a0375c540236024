package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/roadquest/game/adventure"
	"github.com/kasuganosora/roadquest/game/encounter"
	"github.com/kasuganosora/roadquest/scheduler"
	"go.uber.org/zap"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by AdminAuth middleware.
type AdminHandler struct {
	svc    *adventure.Service
	sched  *scheduler.Scheduler
	logger *zap.Logger
}

// NewAdminHandler creates an AdminHandler. sched may be nil.
func NewAdminHandler(svc *adventure.Service, sched *scheduler.Scheduler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, sched: sched, logger: logger}
}

// ValidateSpawns returns spawn table warnings.
// GET /api/admin/spawns/validate
func (h *AdminHandler) ValidateSpawns(c *gin.Context) {
	warnings, err := h.svc.ValidateSpawns(c.Request.Context())
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	if warnings == nil {
		warnings = []encounter.ConfigurationWarning{}
	}
	c.JSON(http.StatusOK, gin.H{"warnings": warnings, "count": len(warnings)})
}

type grantItemRequest struct {
	ItemID string `json:"item_id" binding:"required"`
}

// GrantItem puts a catalog item into a character's bag.
// POST /api/admin/characters/:id/items
func (h *AdminHandler) GrantItem(c *gin.Context) {
	id, ok := charID(c)
	if !ok {
		return
	}
	var req grantItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "item_id is required")
		return
	}
	inv, err := h.svc.GrantItem(c.Request.Context(), id, req.ItemID)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// Tasks lists the running background jobs and the size of the battle
// registry they keep in check.
// GET /api/admin/tasks
func (h *AdminHandler) Tasks(c *gin.Context) {
	var names []string
	if h.sched != nil {
		names = h.sched.ListTickers()
	}
	c.JSON(http.StatusOK, gin.H{"tasks": names, "battles": h.svc.BattleCount()})
}
