package scheduler

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	obscontext "github.com/smallbiznis/rebill/internal/observability/context"
	obslogger "github.com/smallbiznis/rebill/internal/observability/logger"
	"go.uber.org/zap"
)

type passRun struct {
	trigger        string
	runID          string
	startedAt      time.Time
	dueCount       int
	generatedCount int
	deferredCount  int
	failedCount    int
	skippedCount   int
}

func (r *passRun) observe(outcome string) {
	if r == nil {
		return
	}
	switch outcome {
	case outcomeGenerated:
		r.generatedCount++
	case outcomeDeferred:
		r.deferredCount++
	case outcomeFailed:
		r.failedCount++
	default:
		r.skippedCount++
	}
}

func (s *Scheduler) newPassRun(trigger string) *passRun {
	return &passRun{
		trigger:   trigger,
		runID:     s.genID.Generate().String(),
		startedAt: s.clock.Now(),
	}
}

func (s *Scheduler) withLogContext(ctx context.Context, tenantID snowflake.ID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = obscontext.WithActor(ctx, "system", "scheduler")
	if tenantID != 0 {
		ctx = obscontext.WithTenantID(ctx, tenantID.String())
	}
	return ctx
}

func (s *Scheduler) logger(ctx context.Context) *zap.Logger {
	return obslogger.WithContext(ctx, s.log)
}

func (s *Scheduler) logPassStart(ctx context.Context, run *passRun) {
	s.logger(ctx).Info("scheduler.pass.start",
		zap.String("trigger", run.trigger),
		zap.String("run_id", run.runID),
	)
}

func (s *Scheduler) logPassFinish(ctx context.Context, run *passRun) {
	fields := []zap.Field{
		zap.String("trigger", run.trigger),
		zap.String("run_id", run.runID),
		zap.Int64("duration_ms", time.Since(run.startedAt).Milliseconds()),
		zap.Int("due_count", run.dueCount),
		zap.Int("generated_count", run.generatedCount),
		zap.Int("deferred_count", run.deferredCount),
		zap.Int("failed_count", run.failedCount),
		zap.Int("skipped_count", run.skippedCount),
	}
	log := s.logger(ctx)
	if run.failedCount > 0 {
		log.Warn("scheduler.pass.finish", fields...)
		return
	}
	log.Info("scheduler.pass.finish", fields...)
}

func idString(id snowflake.ID) string {
	if id == 0 {
		return ""
	}
	return id.String()
}
