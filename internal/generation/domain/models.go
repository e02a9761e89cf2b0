package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
)

type Invoice struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	TenantID  snowflake.ID  `gorm:"not null;index" json:"tenant_id"`
	ConfigID  *snowflake.ID `json:"config_id,omitempty"`
	Number    string        `gorm:"not null;uniqueIndex" json:"number"`
	Status    InvoiceStatus `gorm:"type:text;not null;default:'draft'" json:"status"`
	IssuedAt  *time.Time    `json:"issued_at,omitempty"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Invoice) TableName() string { return "invoices" }
