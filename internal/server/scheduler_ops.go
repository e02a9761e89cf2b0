package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) RegisterSchedulerRoutes() {
	v1 := s.engine.Group("/v1")
	v1.POST("/scheduler/run-once", s.TriggerSchedulerPass)
}

// TriggerSchedulerPass runs one generation pass on the same code path as
// the hourly cadence. It returns 409 while another pass is running.
func (s *Server) TriggerSchedulerPass(c *gin.Context) {
	if s.scheduler == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	if err := s.scheduler.TriggerManualCheck(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "generation pass completed"})
}
