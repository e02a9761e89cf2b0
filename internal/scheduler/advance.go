package scheduler

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	obsmetrics "github.com/smallbiznis/rebill/internal/observability/metrics"
	"go.uber.org/zap"
)

// persistNextDate writes the advanced schedule back as a stored UTC
// wall-clock value. A write failure is logged and counted but does not
// abort the pass; the config will be re-evaluated next hour and the
// deterministic invoice number absorbs the duplicate attempt.
func (s *Scheduler) persistNextDate(ctx context.Context, log *zap.Logger, configID snowflake.ID, nextLocal time.Time) {
	stored := ToStoredUTC(nextLocal)
	if err := s.configRepo.UpdateNextGenerationDate(ctx, configID, stored); err != nil {
		obsmetrics.Scheduler().IncDateUpdateError()
		log.Error("scheduler.advance.persist_failed",
			zap.String("next_generation_date", stored.Format(time.RFC3339)),
			zap.Error(err),
		)
		return
	}
	log.Debug("scheduler.advance.persisted",
		zap.String("next_generation_date", stored.Format(time.RFC3339)),
	)
}
