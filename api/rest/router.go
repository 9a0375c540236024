package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/roadquest/game/adventure"
	mw "github.com/kasuganosora/roadquest/middleware"
	"github.com/kasuganosora/roadquest/scheduler"
	"go.uber.org/zap"
)

// RouterConfig holds what the REST routes need besides the service.
type RouterConfig struct {
	AdminKey string
	AdminIPs []string
	Sched    *scheduler.Scheduler
	Logger   *zap.Logger
}

// Register mounts every REST route on r.
func Register(r gin.IRouter, svc *adventure.Service, cfg RouterConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	charH := NewCharacterHandler(svc, logger)
	travelH := NewTravelHandler(svc, logger)
	battleH := NewBattleHandler(svc, logger)
	skillH := NewSkillHandler(svc, logger)
	invH := NewInventoryHandler(svc, logger)
	adminH := NewAdminHandler(svc, cfg.Sched, logger)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	api.POST("/characters", charH.Create)
	chars := api.Group("/characters/:id")
	{
		chars.GET("", charH.Get)
		chars.GET("/stats", charH.Stats)
		chars.GET("/battles", charH.History)

		chars.POST("/dice/roll", travelH.Roll)
		chars.POST("/move", travelH.Move)
		chars.POST("/transition", travelH.Transition)

		chars.POST("/battle", battleH.Start)
		chars.GET("/battle", battleH.Get)
		chars.POST("/battle/action", battleH.Action)

		chars.POST("/skills", skillH.Learn)
		chars.POST("/skills/use", skillH.Use)
		chars.PUT("/skills/:name", skillH.Toggle)

		chars.POST("/equip", invH.Equip)
		chars.POST("/unequip", invH.Unequip)
	}

	admin := api.Group("/admin", mw.IPWhitelist(cfg.AdminIPs), mw.AdminAuth(cfg.AdminKey))
	{
		admin.GET("/spawns/validate", adminH.ValidateSpawns)
		admin.POST("/characters/:id/items", adminH.GrantItem)
		admin.GET("/tasks", adminH.Tasks)
	}
}
