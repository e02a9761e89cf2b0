package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// GenerateOptions carries per-config delivery settings into a generation
// attempt.
type GenerateOptions struct {
	ConfigID            snowflake.ID
	ScheduledFor        time.Time
	AutoSend            bool
	BillingContactEmail string
}

// Result describes a completed generation attempt.
type Result struct {
	InvoiceID     snowflake.ID
	InvoiceNumber string
}

// Invoker produces one invoice for a tenant. Implementations must be safe
// to call again for the same scheduled date; the caller treats any error as
// a failed attempt and moves on.
type Invoker interface {
	Generate(ctx context.Context, tenantID snowflake.ID, tenantName string, opts GenerateOptions) (*Result, error)
}
