package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/roadquest/game/adventure"
	"go.uber.org/zap"
)

// TravelHandler handles dice, movement and transition endpoints.
type TravelHandler struct {
	svc    *adventure.Service
	logger *zap.Logger
}

// NewTravelHandler creates a new TravelHandler.
func NewTravelHandler(svc *adventure.Service, logger *zap.Logger) *TravelHandler {
	return &TravelHandler{svc: svc, logger: logger}
}

type directionRequest struct {
	Direction int `json:"direction" binding:"required,oneof=-1 1"`
}

// Roll handles POST /api/characters/:id/dice/roll.
func (h *TravelHandler) Roll(c *gin.Context) {
	id, ok := charID(c)
	if !ok {
		return
	}
	r, err := h.svc.RollDice(c.Request.Context(), id)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// Move handles POST /api/characters/:id/move.
func (h *TravelHandler) Move(c *gin.Context) {
	id, ok := charID(c)
	if !ok {
		return
	}
	var req directionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "direction must be 1 or -1")
		return
	}
	res, err := h.svc.Move(c.Request.Context(), id, req.Direction)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Transition handles POST /api/characters/:id/transition.
func (h *TravelHandler) Transition(c *gin.Context) {
	id, ok := charID(c)
	if !ok {
		return
	}
	var req directionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "direction must be 1 or -1")
		return
	}
	res, err := h.svc.Transition(c.Request.Context(), id, req.Direction)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
