package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Frequency is the recurrence period of a generation configuration.
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

var ErrInvalidFrequency = errors.New("invalid_frequency")

// ParseFrequency validates a raw frequency value. Unknown values are
// rejected rather than defaulted so a misconfigured tenant never bills on
// a period it did not ask for.
func ParseFrequency(raw string) (Frequency, error) {
	switch Frequency(strings.ToLower(strings.TrimSpace(raw))) {
	case FrequencyMonthly:
		return FrequencyMonthly, nil
	case FrequencyQuarterly:
		return FrequencyQuarterly, nil
	case FrequencyYearly:
		return FrequencyYearly, nil
	default:
		return "", ErrInvalidFrequency
	}
}

// GenerationConfig is one tenant's recurring invoice schedule. At most one
// active config exists per tenant.
type GenerationConfig struct {
	ID                  snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID            snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	Frequency           Frequency    `gorm:"type:text;not null" json:"frequency"`
	NextGenerationDate  *time.Time   `json:"next_generation_date"`
	Timezone            string       `gorm:"not null;default:'UTC'" json:"timezone"`
	GenerateOnWeekend   bool         `gorm:"not null;default:false" json:"generate_on_weekend"`
	AutoSend            bool         `gorm:"not null;default:false" json:"auto_send"`
	BillingContactEmail string       `json:"billing_contact_email,omitempty"`
	IsActive            bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt           time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (GenerationConfig) TableName() string { return "generation_configs" }

// DueCandidate is a generation config joined with its tenant, as returned
// by the repository for scheduling. The repository guarantees the config is
// active, the tenant is active and the next generation date is set.
type DueCandidate struct {
	ID                  snowflake.ID
	TenantID            snowflake.ID
	TenantName          string
	Frequency           Frequency
	NextGenerationDate  time.Time
	Timezone            string
	GenerateOnWeekend   bool
	AutoSend            bool
	BillingContactEmail string
}
