package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	logdomain "github.com/smallbiznis/rebill/internal/generationlog/domain"
)

func (s *Server) RegisterGenerationLogRoutes() {
	v1 := s.engine.Group("/v1")
	v1.GET("/generation-logs", s.ListGenerationLogs)
}

func (s *Server) ListGenerationLogs(c *gin.Context) {
	filter := logdomain.ListFilter{}

	if raw := strings.TrimSpace(c.Query("tenant_id")); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("tenant_id", "invalid_id", "invalid tenant id"))
			return
		}
		filter.TenantID = id
	}
	if raw := strings.TrimSpace(c.Query("config_id")); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("config_id", "invalid_id", "invalid config id"))
			return
		}
		filter.ConfigID = id
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		switch logdomain.Status(raw) {
		case logdomain.StatusCompleted, logdomain.StatusFailed:
			filter.Status = logdomain.Status(raw)
		default:
			AbortWithError(c, newValidationError("status", "invalid_status", "expected completed or failed"))
			return
		}
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "expected a positive integer"))
			return
		}
		filter.Limit = limit
	}

	entries, err := s.logSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"generation_logs": entries})
}
