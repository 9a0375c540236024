package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/roadquest/game/adventure"
	"go.uber.org/zap"
)

// SkillHandler handles skill endpoints.
type SkillHandler struct {
	svc    *adventure.Service
	logger *zap.Logger
}

// NewSkillHandler creates a new SkillHandler.
func NewSkillHandler(svc *adventure.Service, logger *zap.Logger) *SkillHandler {
	return &SkillHandler{svc: svc, logger: logger}
}

// Learn handles POST /api/characters/:id/skills.
func (h *SkillHandler) Learn(c *gin.Context) {
	id, ok := charID(c)
	if !ok {
		return
	}
	var req adventure.LearnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.svc.LearnSkill(c.Request.Context(), id, req)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

type useSkillRequest struct {
	Name string `json:"name" binding:"required"`
}

// Use handles POST /api/characters/:id/skills/use.
func (h *SkillHandler) Use(c *gin.Context) {
	id, ok := charID(c)
	if !ok {
		return
	}
	var req useSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}
	res, err := h.svc.UseSkill(c.Request.Context(), id, req.Name)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type toggleSkillRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// Toggle handles PUT /api/characters/:id/skills/:name.
func (h *SkillHandler) Toggle(c *gin.Context) {
	id, ok := charID(c)
	if !ok {
		return
	}
	var req toggleSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "active is required")
		return
	}
	level, err := h.svc.SetSkillActive(c.Request.Context(), id, c.Param("name"), *req.Active)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": c.Param("name"), "active": *req.Active, "level": level})
}
