package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	schedulertesting "github.com/smallbiznis/rebill/internal/scheduler/testing"
)

// RegisterDevRoutes adds development-only endpoints for rewinding
// generation schedules. Never registered in production.
func (s *Server) RegisterDevRoutes() {
	if s.cfg.IsProduction() {
		return
	}

	dev := s.engine.Group("/dev/generation")
	dev.POST("/configs/:id/fast-forward", s.DevFastForwardConfig)
	dev.POST("/configs/fast-forward-all", s.DevFastForwardAllConfigs)
}

func (s *Server) DevFastForwardConfig(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	configID, err := snowflake.ParseString(id)
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	helper := schedulertesting.NewTimeAccelerator(s.db)
	if err := helper.FastForwardConfig(c.Request.Context(), configID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "config fast-forwarded",
		"config_id": id,
	})
}

func (s *Server) DevFastForwardAllConfigs(c *gin.Context) {
	helper := schedulertesting.NewTimeAccelerator(s.db)
	affected, err := helper.FastForwardAllActive(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "all active configs fast-forwarded",
		"affected_configs": affected,
	})
}
