package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/roadquest/game/adventure"
	"github.com/kasuganosora/roadquest/game/battle"
	"go.uber.org/zap"
)

// BattleHandler handles battle endpoints.
type BattleHandler struct {
	svc    *adventure.Service
	logger *zap.Logger
}

// NewBattleHandler creates a new BattleHandler.
func NewBattleHandler(svc *adventure.Service, logger *zap.Logger) *BattleHandler {
	return &BattleHandler{svc: svc, logger: logger}
}

type startBattleRequest struct {
	LocationID string `json:"location_id"`
}

// Start handles POST /api/characters/:id/battle.
func (h *BattleHandler) Start(c *gin.Context) {
	id, ok := charID(c)
	if !ok {
		return
	}
	var req startBattleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	sess, err := h.svc.StartBattle(c.Request.Context(), id, req.LocationID)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	if sess == nil {
		c.JSON(http.StatusOK, gin.H{"encounter": false})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"encounter": true, "session": sess})
}

// Get handles GET /api/characters/:id/battle.
func (h *BattleHandler) Get(c *gin.Context) {
	id, ok := charID(c)
	if !ok {
		return
	}
	sess, err := h.svc.Battle(c.Request.Context(), id)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

type actionRequest struct {
	Kind  battle.ActionKind `json:"kind" binding:"required,oneof=attack defend skill escape"`
	Skill string            `json:"skill"`
}

// Action handles POST /api/characters/:id/battle/action.
func (h *BattleHandler) Action(c *gin.Context) {
	id, ok := charID(c)
	if !ok {
		return
	}
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "kind must be attack, defend, skill or escape")
		return
	}
	if req.Kind == battle.ActionSkill && req.Skill == "" {
		badRequest(c, "skill is required")
		return
	}
	res, err := h.svc.PerformAction(c.Request.Context(), id, battle.Action{Kind: req.Kind, Skill: req.Skill})
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
