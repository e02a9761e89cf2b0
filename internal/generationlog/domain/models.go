package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Status is the outcome recorded for one generation attempt.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// GenerationLog is the audit record of a single invoice generation
// attempt. Weekend deferrals are intentionally not recorded; nothing was
// attempted.
type GenerationLog struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	TenantID     snowflake.ID      `gorm:"not null;index" json:"tenant_id"`
	ConfigID     snowflake.ID      `gorm:"not null;index" json:"config_id"`
	Status       Status            `gorm:"type:text;not null" json:"status"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (GenerationLog) TableName() string { return "generation_logs" }

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	TenantID snowflake.ID
	ConfigID snowflake.ID
	Status   Status
	Limit    int
}

type Repository interface {
	Insert(ctx context.Context, entry *GenerationLog) error
	List(ctx context.Context, filter ListFilter) ([]GenerationLog, error)
}

// Service issues IDs and timestamps so callers only describe the outcome.
type Service interface {
	Append(ctx context.Context, entry *GenerationLog) error
	List(ctx context.Context, filter ListFilter) ([]GenerationLog, error)
}
