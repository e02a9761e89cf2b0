package repository

import (
	"context"

	"github.com/smallbiznis/rebill/internal/generationlog/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Insert(ctx context.Context, entry *domain.GenerationLog) error {
	if entry == nil {
		return nil
	}
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO generation_logs (
			id, tenant_id, config_id, status, error_message, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.TenantID,
		entry.ConfigID,
		entry.Status,
		entry.ErrorMessage,
		entry.Metadata,
		entry.CreatedAt,
	).Error
}

func (r *repo) List(ctx context.Context, filter domain.ListFilter) ([]domain.GenerationLog, error) {
	stmt := r.db.WithContext(ctx).Model(&domain.GenerationLog{})

	if filter.TenantID != 0 {
		stmt = stmt.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.ConfigID != 0 {
		stmt = stmt.Where("config_id = ?", filter.ConfigID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var logs []domain.GenerationLog
	err := stmt.Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
