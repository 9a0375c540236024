package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/roadquest/game/adventure"
	"go.uber.org/zap"
)

const defaultHistoryLimit = 20

// CharacterHandler handles character REST endpoints.
type CharacterHandler struct {
	svc    *adventure.Service
	logger *zap.Logger
}

// NewCharacterHandler creates a new CharacterHandler.
func NewCharacterHandler(svc *adventure.Service, logger *zap.Logger) *CharacterHandler {
	return &CharacterHandler{svc: svc, logger: logger}
}

type createCharacterRequest struct {
	Name string `json:"name" binding:"required,min=1,max=32"`
}

// Create handles POST /api/characters.
func (h *CharacterHandler) Create(c *gin.Context) {
	var req createCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	char, err := h.svc.CreateCharacter(c.Request.Context(), req.Name)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, char)
}

// Get handles GET /api/characters/:id.
func (h *CharacterHandler) Get(c *gin.Context) {
	id, ok := charID(c)
	if !ok {
		return
	}
	char, err := h.svc.Character(c.Request.Context(), id)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, char)
}

// Stats handles GET /api/characters/:id/stats.
func (h *CharacterHandler) Stats(c *gin.Context) {
	id, ok := charID(c)
	if !ok {
		return
	}
	comp, err := h.svc.TotalStats(c.Request.Context(), id)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"level":     comp.Level,
		"base":      comp.Base,
		"skill":     comp.Skill,
		"equipment": comp.Equipment,
		"total":     comp.Total,
		"effects":   comp.EffectTags(),
	})
}

// History handles GET /api/characters/:id/battles?limit=N.
func (h *CharacterHandler) History(c *gin.Context) {
	id, ok := charID(c)
	if !ok {
		return
	}
	limit := defaultHistoryLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 100 {
			badRequest(c, "limit must be 1-100")
			return
		}
		limit = n
	}
	recs, err := h.svc.BattleHistory(c.Request.Context(), id, limit)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"battles": recs})
}
