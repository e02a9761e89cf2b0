package testing

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// TimeAccelerator rewinds generation schedules so the next pass picks them
// up immediately. Local and staging only; the API never exposes it in
// production.
type TimeAccelerator struct {
	db *gorm.DB
}

func NewTimeAccelerator(db *gorm.DB) *TimeAccelerator {
	return &TimeAccelerator{db: db}
}

// FastForwardConfig moves one config's next generation date to yesterday.
func (ta *TimeAccelerator) FastForwardConfig(ctx context.Context, configID snowflake.ID) error {
	now := time.Now().UTC()
	return ta.db.WithContext(ctx).Exec(
		`UPDATE generation_configs
		 SET next_generation_date = ?, updated_at = ?
		 WHERE id = ? AND is_active = TRUE`,
		now.AddDate(0, 0, -1),
		now,
		configID,
	).Error
}

// FastForwardAllActive rewinds every active future schedule.
func (ta *TimeAccelerator) FastForwardAllActive(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	result := ta.db.WithContext(ctx).Exec(
		`UPDATE generation_configs
		 SET next_generation_date = ?, updated_at = ?
		 WHERE is_active = TRUE AND next_generation_date > ?`,
		now.AddDate(0, 0, -1),
		now,
		now,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
