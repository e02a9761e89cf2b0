package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries the constant labels stamped on every metric.
type Config struct {
	ServiceName string
	Environment string
}

// Pass trigger sources. The manual trigger runs the identical pass, the
// label only records who asked for it.
const (
	PassTriggerCadence = "cadence"
	PassTriggerStartup = "startup"
	PassTriggerManual  = "manual"
)

// Per-config outcomes of one scheduling pass.
const (
	ConfigOutcomeGenerated = "generated"
	ConfigOutcomeFailed    = "failed"
	ConfigOutcomeDeferred  = "weekend_deferred"
	ConfigOutcomeInvalid   = "invalid_config"
)

// SchedulerMetrics captures generation scheduler health signals.
type SchedulerMetrics struct {
	passRuns         *prometheus.CounterVec
	passSkipped      *prometheus.CounterVec
	passDuration     prometheus.Observer
	selectionErrors  prometheus.Counter
	configsDue       prometheus.Counter
	configOutcomes   *prometheus.CounterVec
	auditWriteErrors prometheus.Counter
	dateUpdateErrors prometheus.Counter
	runLoopLag       prometheus.Observer
}

var (
	schedulerMetricsOnce sync.Once
	schedulerMetrics     *SchedulerMetrics
)

// Scheduler returns the singleton scheduler metrics registry.
func Scheduler() *SchedulerMetrics {
	return SchedulerWithConfig(Config{})
}

// SchedulerWithConfig returns the singleton scheduler metrics registry using config labels.
func SchedulerWithConfig(cfg Config) *SchedulerMetrics {
	schedulerMetricsOnce.Do(func() {
		schedulerMetrics = newSchedulerMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return schedulerMetrics
}

// ResetSchedulerMetricsForTest resets the scheduler metrics singleton for tests.
func ResetSchedulerMetricsForTest() {
	schedulerMetricsOnce = sync.Once{}
	schedulerMetrics = nil
}

func newSchedulerMetrics(registerer prometheus.Registerer, cfg Config) *SchedulerMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "rebill"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	passRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "rebill_scheduler_pass_runs_total",
		Help:        "Scheduling passes started, by trigger source.",
		ConstLabels: constLabels,
	}, []string{"trigger"})
	passSkipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "rebill_scheduler_pass_skipped_total",
		Help:        "Triggers rejected because a pass was already running.",
		ConstLabels: constLabels,
	}, []string{"trigger"})
	passDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "rebill_scheduler_pass_duration_seconds",
		Help:        "Full scheduling pass latency.",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300, 600, 1800},
		ConstLabels: constLabels,
	})
	selectionErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "rebill_scheduler_selection_errors_total",
		Help:        "Passes aborted because the candidate load failed.",
		ConstLabels: constLabels,
	})
	configsDue := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "rebill_scheduler_configs_due_total",
		Help:        "Configurations selected as due across all passes.",
		ConstLabels: constLabels,
	})
	configOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "rebill_scheduler_config_outcomes_total",
		Help:        "Per-config processing outcomes.",
		ConstLabels: constLabels,
	}, []string{"outcome"})
	auditWriteErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "rebill_scheduler_audit_write_errors_total",
		Help:        "Generation log appends that failed and were swallowed.",
		ConstLabels: constLabels,
	})
	dateUpdateErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "rebill_scheduler_date_update_errors_total",
		Help:        "next_generation_date persistence failures.",
		ConstLabels: constLabels,
	})
	runLoopLag := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "rebill_scheduler_run_loop_lag_seconds",
		Help:        "Delay between the scheduled top-of-hour tick and the actual pass start.",
		Buckets:     []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		ConstLabels: constLabels,
	})

	registerer.MustRegister(
		passRuns,
		passSkipped,
		passDuration,
		selectionErrors,
		configsDue,
		configOutcomes,
		auditWriteErrors,
		dateUpdateErrors,
		runLoopLag,
	)

	return &SchedulerMetrics{
		passRuns:         passRuns,
		passSkipped:      passSkipped,
		passDuration:     passDuration,
		selectionErrors:  selectionErrors,
		configsDue:       configsDue,
		configOutcomes:   configOutcomes,
		auditWriteErrors: auditWriteErrors,
		dateUpdateErrors: dateUpdateErrors,
		runLoopLag:       runLoopLag,
	}
}

func (m *SchedulerMetrics) IncPassRun(trigger string) {
	if m == nil {
		return
	}
	m.passRuns.WithLabelValues(trigger).Inc()
}

func (m *SchedulerMetrics) IncPassSkipped(trigger string) {
	if m == nil {
		return
	}
	m.passSkipped.WithLabelValues(trigger).Inc()
}

func (m *SchedulerMetrics) ObservePassDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.passDuration.Observe(d.Seconds())
}

func (m *SchedulerMetrics) IncSelectionError() {
	if m == nil {
		return
	}
	m.selectionErrors.Inc()
}

func (m *SchedulerMetrics) AddConfigsDue(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.configsDue.Add(float64(count))
}

func (m *SchedulerMetrics) IncConfigOutcome(outcome string) {
	if m == nil {
		return
	}
	m.configOutcomes.WithLabelValues(outcome).Inc()
}

func (m *SchedulerMetrics) IncAuditWriteError() {
	if m == nil {
		return
	}
	m.auditWriteErrors.Inc()
}

func (m *SchedulerMetrics) IncDateUpdateError() {
	if m == nil {
		return
	}
	m.dateUpdateErrors.Inc()
}

func (m *SchedulerMetrics) ObserveRunLoopLag(d time.Duration) {
	if m == nil || d < 0 {
		return
	}
	m.runLoopLag.Observe(d.Seconds())
}
