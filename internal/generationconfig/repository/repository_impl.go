package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rebill/internal/generationconfig/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) LoadActiveDueCandidates(ctx context.Context) ([]domain.DueCandidate, error) {
	var candidates []domain.DueCandidate
	err := r.db.WithContext(ctx).Raw(
		`SELECT gc.id,
		        gc.tenant_id,
		        t.name AS tenant_name,
		        gc.frequency,
		        gc.next_generation_date,
		        gc.timezone,
		        gc.generate_on_weekend,
		        gc.auto_send,
		        gc.billing_contact_email,
		        gc.is_active
		 FROM generation_configs gc
		 JOIN tenants t ON t.id = gc.tenant_id
		 WHERE gc.is_active = TRUE
		   AND t.status = 'active'
		   AND gc.next_generation_date IS NOT NULL
		 ORDER BY gc.id`,
	).Scan(&candidates).Error
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *repo) UpdateNextGenerationDate(ctx context.Context, configID snowflake.ID, next time.Time) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE generation_configs
		 SET next_generation_date = ?, updated_at = ?
		 WHERE id = ?`,
		next,
		time.Now().UTC(),
		configID,
	).Error
}

func (r *repo) Get(ctx context.Context, configID snowflake.ID) (*domain.GenerationConfig, error) {
	var cfg domain.GenerationConfig
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, frequency, next_generation_date, timezone,
		        generate_on_weekend, auto_send, billing_contact_email,
		        is_active, created_at, updated_at
		 FROM generation_configs WHERE id = ?`,
		configID,
	).Scan(&cfg).Error
	if err != nil {
		return nil, err
	}
	if cfg.ID == 0 {
		return nil, nil
	}
	return &cfg, nil
}

func (r *repo) Create(ctx context.Context, cfg *domain.GenerationConfig) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO generation_configs (
			id, tenant_id, frequency, next_generation_date, timezone,
			generate_on_weekend, auto_send, billing_contact_email,
			is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cfg.ID,
		cfg.TenantID,
		cfg.Frequency,
		cfg.NextGenerationDate,
		cfg.Timezone,
		cfg.GenerateOnWeekend,
		cfg.AutoSend,
		cfg.BillingContactEmail,
		cfg.IsActive,
		cfg.CreatedAt,
		cfg.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, cfg *domain.GenerationConfig) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE generation_configs
		 SET frequency = ?, next_generation_date = ?, timezone = ?,
		     generate_on_weekend = ?, auto_send = ?, billing_contact_email = ?,
		     is_active = ?, updated_at = ?
		 WHERE id = ?`,
		cfg.Frequency,
		cfg.NextGenerationDate,
		cfg.Timezone,
		cfg.GenerateOnWeekend,
		cfg.AutoSend,
		cfg.BillingContactEmail,
		cfg.IsActive,
		cfg.UpdatedAt,
		cfg.ID,
	).Error
}
