package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	gendomain "github.com/smallbiznis/rebill/internal/generation/domain"
	"github.com/smallbiznis/rebill/internal/observability/logger"
	"github.com/smallbiznis/rebill/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Email email.Provider
}

// Service writes a draft invoice per generation attempt and optionally
// emails the billing contact. Line-item assembly belongs to the billing
// engine and is out of scope here.
type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	email email.Provider
}

func New(p Params) gendomain.Invoker {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("generation.service"),
		genID: p.GenID,
		email: p.Email,
	}
}

func (s *Service) Generate(ctx context.Context, tenantID snowflake.ID, tenantName string, opts gendomain.GenerateOptions) (*gendomain.Result, error) {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()
	invoice := gendomain.Invoice{
		ID:        s.genID.Generate(),
		TenantID:  tenantID,
		Number:    invoiceNumber(tenantID, opts.ScheduledFor),
		Status:    gendomain.InvoiceStatusDraft,
		CreatedAt: now,
	}
	if opts.ConfigID != 0 {
		configID := opts.ConfigID
		invoice.ConfigID = &configID
	}
	if opts.AutoSend {
		invoice.Status = gendomain.InvoiceStatusSent
		invoice.IssuedAt = &now
	}

	err := s.db.WithContext(ctx).Exec(
		`INSERT INTO invoices (id, tenant_id, config_id, number, status, issued_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.TenantID,
		invoice.ConfigID,
		invoice.Number,
		invoice.Status,
		invoice.IssuedAt,
		invoice.CreatedAt,
	).Error
	if err != nil {
		return nil, fmt.Errorf("insert invoice: %w", err)
	}

	if opts.AutoSend && opts.BillingContactEmail != "" {
		subject := fmt.Sprintf("New invoice %s for %s", invoice.Number, tenantName)
		body := fmt.Sprintf("<p>Invoice <strong>%s</strong> has been generated for %s.</p>", invoice.Number, tenantName)
		if sendErr := s.email.Send(ctx, []string{opts.BillingContactEmail}, subject, body); sendErr != nil {
			// Delivery failure does not undo generation; the invoice exists.
			log.Warn("invoice email delivery failed",
				zap.String("invoice_number", invoice.Number),
				zap.Error(sendErr),
			)
		}
	}

	return &gendomain.Result{
		InvoiceID:     invoice.ID,
		InvoiceNumber: invoice.Number,
	}, nil
}

// invoiceNumber is deterministic per tenant and scheduled date so a retry
// of the same cycle collides on the unique index instead of double billing.
func invoiceNumber(tenantID snowflake.ID, scheduledFor time.Time) string {
	return fmt.Sprintf("INV-%d-%s", tenantID, scheduledFor.Format("20060102"))
}
