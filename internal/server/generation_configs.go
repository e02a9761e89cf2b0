package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	configdomain "github.com/smallbiznis/rebill/internal/generationconfig/domain"
)

func (s *Server) RegisterGenerationConfigRoutes() {
	v1 := s.engine.Group("/v1")
	v1.POST("/generation-configs", s.CreateGenerationConfig)
	v1.GET("/generation-configs/:id", s.GetGenerationConfig)
	v1.PATCH("/generation-configs/:id", s.UpdateGenerationConfig)
}

type createGenerationConfigRequest struct {
	TenantID            string `json:"tenant_id" binding:"required"`
	Frequency           string `json:"frequency" binding:"required"`
	NextGenerationDate  string `json:"next_generation_date" binding:"required"`
	Timezone            string `json:"timezone" binding:"required"`
	GenerateOnWeekend   bool   `json:"generate_on_weekend"`
	AutoSend            bool   `json:"auto_send"`
	BillingContactEmail string `json:"billing_contact_email"`
}

func (s *Server) CreateGenerationConfig(c *gin.Context) {
	var req createGenerationConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	tenantID, err := snowflake.ParseString(strings.TrimSpace(req.TenantID))
	if err != nil {
		AbortWithError(c, newValidationError("tenant_id", "invalid_id", "invalid tenant id"))
		return
	}

	frequency, err := configdomain.ParseFrequency(req.Frequency)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if _, err := time.LoadLocation(strings.TrimSpace(req.Timezone)); err != nil {
		AbortWithError(c, newValidationError("timezone", "invalid_timezone", "unknown IANA timezone"))
		return
	}

	// The date is a tenant-local wall clock; it is stored verbatim with a
	// UTC stamp and reinterpreted in the config's timezone at runtime.
	next, err := time.Parse("2006-01-02", strings.TrimSpace(req.NextGenerationDate))
	if err != nil {
		AbortWithError(c, newValidationError("next_generation_date", "invalid_date", "expected YYYY-MM-DD"))
		return
	}

	now := time.Now().UTC()
	cfg := configdomain.GenerationConfig{
		ID:                  s.genID.Generate(),
		TenantID:            tenantID,
		Frequency:           frequency,
		NextGenerationDate:  &next,
		Timezone:            strings.TrimSpace(req.Timezone),
		GenerateOnWeekend:   req.GenerateOnWeekend,
		AutoSend:            req.AutoSend,
		BillingContactEmail: strings.TrimSpace(req.BillingContactEmail),
		IsActive:            true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.configRepo.Create(c.Request.Context(), &cfg); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, cfg)
}

func (s *Server) GetGenerationConfig(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	cfg, err := s.configRepo.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if cfg == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, cfg)
}

type updateGenerationConfigRequest struct {
	Frequency           *string `json:"frequency"`
	Timezone            *string `json:"timezone"`
	GenerateOnWeekend   *bool   `json:"generate_on_weekend"`
	AutoSend            *bool   `json:"auto_send"`
	BillingContactEmail *string `json:"billing_contact_email"`
	IsActive            *bool   `json:"is_active"`
}

func (s *Server) UpdateGenerationConfig(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req updateGenerationConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	cfg, err := s.configRepo.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if cfg == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	if req.Frequency != nil {
		frequency, err := configdomain.ParseFrequency(*req.Frequency)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		cfg.Frequency = frequency
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(strings.TrimSpace(*req.Timezone)); err != nil {
			AbortWithError(c, newValidationError("timezone", "invalid_timezone", "unknown IANA timezone"))
			return
		}
		cfg.Timezone = strings.TrimSpace(*req.Timezone)
	}
	if req.GenerateOnWeekend != nil {
		cfg.GenerateOnWeekend = *req.GenerateOnWeekend
	}
	if req.AutoSend != nil {
		cfg.AutoSend = *req.AutoSend
	}
	if req.BillingContactEmail != nil {
		cfg.BillingContactEmail = strings.TrimSpace(*req.BillingContactEmail)
	}
	if req.IsActive != nil {
		cfg.IsActive = *req.IsActive
	}
	cfg.UpdatedAt = time.Now().UTC()

	if err := s.configRepo.Update(c.Request.Context(), cfg); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}
