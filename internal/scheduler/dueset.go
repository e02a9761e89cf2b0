package scheduler

import (
	"context"
	"time"

	configdomain "github.com/smallbiznis/rebill/internal/generationconfig/domain"
	obsmetrics "github.com/smallbiznis/rebill/internal/observability/metrics"
	"github.com/smallbiznis/rebill/internal/scheduler/guard"
	"go.uber.org/zap"
)

// dueItem is a candidate that passed validation and is due at now,
// carrying its resolved location and tenant-local scheduled instant.
type dueItem struct {
	candidate      configdomain.DueCandidate
	location       *time.Location
	scheduledLocal time.Time
}

// selectDue filters candidates down to the ones whose scheduled local date
// has arrived, preserving repository order. Candidates that fail validation
// or timezone resolution are skipped with a log entry and metric; their
// schedule is left untouched so a config fix picks them up on the next pass.
func (s *Scheduler) selectDue(ctx context.Context, run *passRun, candidates []configdomain.DueCandidate, now time.Time) []dueItem {
	schedMetrics := obsmetrics.Scheduler()
	due := make([]dueItem, 0, len(candidates))

	for _, c := range candidates {
		log := s.logger(s.withLogContext(ctx, c.TenantID)).With(
			zap.String("config_id", idString(c.ID)),
			zap.String("run_id", run.runID),
		)

		if err := guard.EnsureConfigSchedulable(c); err != nil {
			run.observe(outcomeInvalid)
			schedMetrics.IncConfigOutcome(obsmetrics.ConfigOutcomeInvalid)
			log.Error("scheduler.config.invalid",
				zap.String("frequency", string(c.Frequency)),
				zap.Error(err),
			)
			continue
		}

		loc, err := guard.ResolveLocation(c)
		if err != nil {
			run.observe(outcomeInvalid)
			schedMetrics.IncConfigOutcome(obsmetrics.ConfigOutcomeInvalid)
			log.Error("scheduler.config.invalid",
				zap.String("timezone", c.Timezone),
				zap.Error(err),
			)
			continue
		}

		scheduledLocal := ScheduledInLocation(c.NextGenerationDate, loc)
		if !IsDue(now, scheduledLocal) {
			continue
		}

		due = append(due, dueItem{
			candidate:      c,
			location:       loc,
			scheduledLocal: scheduledLocal,
		})
	}

	return due
}
