package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rebill/internal/clock"
	gendomain "github.com/smallbiznis/rebill/internal/generation/domain"
	configdomain "github.com/smallbiznis/rebill/internal/generationconfig/domain"
	logdomain "github.com/smallbiznis/rebill/internal/generationlog/domain"
	obsmetrics "github.com/smallbiznis/rebill/internal/observability/metrics"
	"github.com/smallbiznis/rebill/internal/runlock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler_invalid_config")

const (
	outcomeGenerated = obsmetrics.ConfigOutcomeGenerated
	outcomeFailed    = obsmetrics.ConfigOutcomeFailed
	outcomeDeferred  = obsmetrics.ConfigOutcomeDeferred
	outcomeInvalid   = obsmetrics.ConfigOutcomeInvalid
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	ConfigRepo configdomain.Repository
	Invoker    gendomain.Invoker
	LogSvc     logdomain.Service
	GenID      *snowflake.Node
	Clock      clock.Clock
	Locker     *runlock.Locker `optional:"true"`
	Config     Config          `optional:"true"`
}

// Scheduler walks active generation configs on an hourly cadence and
// generates invoices whose tenant-local scheduled date has arrived.
// Configs are processed sequentially; one tenant's failure never blocks
// another's invoice.
type Scheduler struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        Config
	genID      *snowflake.Node
	clock      clock.Clock
	configRepo configdomain.Repository
	invoker    gendomain.Invoker
	logSvc     logdomain.Service
	locker     *runlock.Locker

	passMu sync.Mutex
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.ConfigRepo == nil || p.Invoker == nil || p.LogSvc == nil || p.GenID == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:         p.DB,
		log:        p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:        p.Config.withDefaults(),
		genID:      p.GenID,
		clock:      p.Clock,
		configRepo: p.ConfigRepo,
		invoker:    p.Invoker,
		logSvc:     p.LogSvc,
		locker:     p.Locker,
	}, nil
}

// RunForever fires a catch-up pass shortly after boot, then aligns to the
// top of every UTC hour. Missed ticks surface as run loop lag, not as
// skipped billing; each pass evaluates every config against the current
// clock.
func (s *Scheduler) RunForever(ctx context.Context) {
	schedMetrics := obsmetrics.Scheduler()

	select {
	case <-ctx.Done():
		return
	case <-time.After(s.cfg.StartupDelay):
	}
	s.runPassLogged(ctx, obsmetrics.PassTriggerStartup)

	for {
		now := s.clock.Now()
		next := now.Truncate(s.cfg.RunInterval).Add(s.cfg.RunInterval)

		select {
		case <-ctx.Done():
			return
		case <-time.After(next.Sub(now)):
		}

		if lag := s.clock.Now().Sub(next); lag > 0 {
			schedMetrics.ObserveRunLoopLag(lag)
		}
		s.runPassLogged(ctx, obsmetrics.PassTriggerCadence)
	}
}

// TriggerManualCheck runs one pass on the caller's goroutine, on the same
// code path as the cadence. It reports ErrPassInProgress when another pass
// holds the guard.
func (s *Scheduler) TriggerManualCheck(ctx context.Context) error {
	return s.runPass(ctx, obsmetrics.PassTriggerManual)
}

func (s *Scheduler) runPassLogged(ctx context.Context, trigger string) {
	if err := s.runPass(ctx, trigger); err != nil && !errors.Is(err, ErrPassInProgress) {
		s.log.Warn("scheduler pass failed", zap.String("trigger", trigger), zap.Error(err))
	}
}

func (s *Scheduler) runPass(parent context.Context, trigger string) error {
	schedMetrics := obsmetrics.Scheduler()

	release, err := s.acquireFlight(parent)
	if err != nil {
		schedMetrics.IncPassSkipped(trigger)
		s.log.Info("scheduler pass skipped", zap.String("trigger", trigger))
		return err
	}
	defer release()

	ctx, cancel := context.WithTimeout(parent, s.cfg.PassTimeout)
	defer cancel()
	ctx = s.withLogContext(ctx, 0)

	run := s.newPassRun(trigger)
	schedMetrics.IncPassRun(trigger)
	s.logPassStart(ctx, run)
	defer func() {
		schedMetrics.ObservePassDuration(time.Since(run.startedAt))
		s.logPassFinish(ctx, run)
	}()

	candidates, err := s.configRepo.LoadActiveDueCandidates(ctx)
	if err != nil {
		schedMetrics.IncSelectionError()
		s.logger(ctx).Error("scheduler.selection.failed",
			zap.String("run_id", run.runID),
			zap.Error(err),
		)
		return err
	}

	due := s.selectDue(ctx, run, candidates, s.clock.Now())
	run.dueCount = len(due)
	schedMetrics.AddConfigsDue(len(due))

	for _, item := range due {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.processDueConfig(ctx, run, item)
	}

	return nil
}

// processDueConfig runs one generation attempt end to end. All failure
// modes are absorbed here: a generation error still advances the schedule
// and writes a failed log entry, and bookkeeping errors are logged without
// aborting the pass. The config's fate never leaks into its neighbors.
func (s *Scheduler) processDueConfig(parent context.Context, run *passRun, item dueItem) {
	c := item.candidate
	schedMetrics := obsmetrics.Scheduler()

	ctx := s.withLogContext(parent, c.TenantID)
	log := s.logger(ctx).With(
		zap.String("config_id", idString(c.ID)),
		zap.String("run_id", run.runID),
		zap.String("scheduled_for", item.scheduledLocal.Format(time.RFC3339)),
	)

	// Weekend deferral moves the date without generating and without an
	// audit entry; nothing was attempted.
	if IsWeekend(item.scheduledLocal) && !c.GenerateOnWeekend {
		deferred := NextBusinessDay(item.scheduledLocal)
		run.observe(outcomeDeferred)
		schedMetrics.IncConfigOutcome(obsmetrics.ConfigOutcomeDeferred)
		log.Info("scheduler.config.weekend_deferred",
			zap.String("deferred_to", deferred.Format(time.RFC3339)),
		)
		s.persistNextDate(ctx, log, c.ID, deferred)
		return
	}

	// The recurrence base is the scheduled date, not the processing time,
	// so late or failed runs never drift the cycle. Frequency was already
	// validated during selection.
	next, err := NextDueDate(c.Frequency, item.scheduledLocal)
	if err != nil {
		schedMetrics.IncConfigOutcome(obsmetrics.ConfigOutcomeInvalid)
		log.Error("scheduler.advance.failed", zap.Error(err))
		return
	}

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerationTimeout)
	result, genErr := s.invoker.Generate(genCtx, c.TenantID, c.TenantName, gendomain.GenerateOptions{
		ConfigID:            c.ID,
		ScheduledFor:        item.scheduledLocal,
		AutoSend:            c.AutoSend,
		BillingContactEmail: c.BillingContactEmail,
	})
	cancel()

	if genErr != nil {
		run.observe(outcomeFailed)
		schedMetrics.IncConfigOutcome(obsmetrics.ConfigOutcomeFailed)
		log.Error("scheduler.generation.failed", zap.Error(genErr))
		s.appendLog(ctx, log, run, c, item, next, logdomain.StatusFailed, genErr.Error(), nil)
	} else {
		run.observe(outcomeGenerated)
		schedMetrics.IncConfigOutcome(obsmetrics.ConfigOutcomeGenerated)
		log.Info("scheduler.generation.completed",
			zap.String("invoice_id", idString(result.InvoiceID)),
			zap.String("invoice_number", result.InvoiceNumber),
		)
		s.appendLog(ctx, log, run, c, item, next, logdomain.StatusCompleted, "", result)
	}

	s.persistNextDate(ctx, log, c.ID, next)
}

func (s *Scheduler) appendLog(ctx context.Context, log *zap.Logger, run *passRun, c configdomain.DueCandidate, item dueItem, next time.Time, status logdomain.Status, errorMessage string, result *gendomain.Result) {
	metadata := datatypes.JSONMap{
		"trigger":              run.trigger,
		"scheduled_for":        item.scheduledLocal.Format(time.RFC3339),
		"timezone":             c.Timezone,
		"frequency":            string(c.Frequency),
		"next_generation_date": ToStoredUTC(next).Format(time.RFC3339),
	}
	if result != nil {
		metadata["invoice_id"] = result.InvoiceID.String()
		metadata["invoice_number"] = result.InvoiceNumber
	}

	entry := &logdomain.GenerationLog{
		TenantID:     c.TenantID,
		ConfigID:     c.ID,
		Status:       status,
		ErrorMessage: errorMessage,
		Metadata:     metadata,
	}
	if err := s.logSvc.Append(ctx, entry); err != nil {
		obsmetrics.Scheduler().IncAuditWriteError()
		log.Error("scheduler.audit.write_failed", zap.Error(err))
	}
}
