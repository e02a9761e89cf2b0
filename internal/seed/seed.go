package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	configdomain "github.com/smallbiznis/rebill/internal/generationconfig/domain"
	tenantdomain "github.com/smallbiznis/rebill/internal/tenant/domain"
	"gorm.io/gorm"
)

const (
	demoTenantName = "Demo Tenant"
	demoTimezone   = "America/New_York"
)

// EnsureDemoTenant seeds a demo tenant with a monthly generation config so
// a fresh local install has something for the scheduler to pick up.
func EnsureDemoTenant(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenant, err := ensureDemoTenantTx(ctx, tx, node)
		if err != nil {
			return err
		}
		return ensureDemoConfigTx(ctx, tx, node, tenant.ID)
	})
}

func ensureDemoTenantTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (*tenantdomain.Tenant, error) {
	var existing tenantdomain.Tenant
	err := tx.WithContext(ctx).Raw(
		`SELECT id, name, status, created_at, updated_at FROM tenants WHERE name = ?`,
		demoTenantName,
	).Scan(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing.ID != 0 {
		return &existing, nil
	}

	now := time.Now().UTC()
	tenant := tenantdomain.Tenant{
		ID:        node.Generate(),
		Name:      demoTenantName,
		Status:    tenantdomain.TenantStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = tx.WithContext(ctx).Exec(
		`INSERT INTO tenants (id, name, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		tenant.ID, tenant.Name, tenant.Status, tenant.CreatedAt, tenant.UpdatedAt,
	).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func ensureDemoConfigTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, tenantID snowflake.ID) error {
	var existing configdomain.GenerationConfig
	err := tx.WithContext(ctx).Raw(
		`SELECT id FROM generation_configs WHERE tenant_id = ? AND is_active = TRUE`,
		tenantID,
	).Scan(&existing).Error
	if err != nil {
		return err
	}
	if existing.ID != 0 {
		return nil
	}

	loc, err := time.LoadLocation(demoTimezone)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	local := now.In(loc)
	// First of next month, local wall clock.
	next := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, 1, 0)
	// Stored dates carry the tenant-local wall clock with a UTC stamp.
	stored := time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, time.UTC)

	return tx.WithContext(ctx).Exec(
		`INSERT INTO generation_configs (
			id, tenant_id, frequency, next_generation_date, timezone,
			generate_on_weekend, auto_send, billing_contact_email,
			is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		node.Generate(),
		tenantID,
		configdomain.FrequencyMonthly,
		stored,
		demoTimezone,
		false,
		false,
		"",
		true,
		now,
		now,
	).Error
}
