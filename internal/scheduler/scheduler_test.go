package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/rebill/internal/clock"
	gendomain "github.com/smallbiznis/rebill/internal/generation/domain"
	configdomain "github.com/smallbiznis/rebill/internal/generationconfig/domain"
	configrepo "github.com/smallbiznis/rebill/internal/generationconfig/repository"
	logdomain "github.com/smallbiznis/rebill/internal/generationlog/domain"
	logrepo "github.com/smallbiznis/rebill/internal/generationlog/repository"
	logservice "github.com/smallbiznis/rebill/internal/generationlog/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockInvoker struct {
	calls []gendomain.GenerateOptions
	fn    func(tenantID snowflake.ID, opts gendomain.GenerateOptions) (*gendomain.Result, error)
}

func (m *mockInvoker) Generate(ctx context.Context, tenantID snowflake.ID, tenantName string, opts gendomain.GenerateOptions) (*gendomain.Result, error) {
	m.calls = append(m.calls, opts)
	if m.fn != nil {
		return m.fn(tenantID, opts)
	}
	return &gendomain.Result{InvoiceID: 1, InvoiceNumber: "INV-TEST"}, nil
}

// flakyConfigRepo wraps the real repository so individual calls can be
// forced to fail while the rest of the behavior stays live.
type flakyConfigRepo struct {
	configdomain.Repository
	loadErr   error
	updateErr map[snowflake.ID]error
}

func (r *flakyConfigRepo) LoadActiveDueCandidates(ctx context.Context) ([]configdomain.DueCandidate, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return r.Repository.LoadActiveDueCandidates(ctx)
}

func (r *flakyConfigRepo) UpdateNextGenerationDate(ctx context.Context, configID snowflake.ID, next time.Time) error {
	if err, ok := r.updateErr[configID]; ok {
		return err
	}
	return r.Repository.UpdateNextGenerationDate(ctx, configID, next)
}

type failingLogService struct {
	appendErr error
}

func (s *failingLogService) Append(ctx context.Context, entry *logdomain.GenerationLog) error {
	return s.appendErr
}

func (s *failingLogService) List(ctx context.Context, filter logdomain.ListFilter) ([]logdomain.GenerationLog, error) {
	return nil, nil
}

type schedulerFixture struct {
	db      *gorm.DB
	sched   *Scheduler
	invoker *mockInvoker
	clock   *clock.FakeClock
	repo    configdomain.Repository
	logSvc  logdomain.Service
	node    *snowflake.Node
}

func newFixture(t *testing.T, now time.Time) *schedulerFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE tenants (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE generation_configs (
			id INTEGER PRIMARY KEY,
			tenant_id INTEGER NOT NULL,
			frequency TEXT NOT NULL,
			next_generation_date DATETIME,
			timezone TEXT NOT NULL DEFAULT 'UTC',
			generate_on_weekend BOOLEAN NOT NULL DEFAULT FALSE,
			auto_send BOOLEAN NOT NULL DEFAULT FALSE,
			billing_contact_email TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE generation_logs (
			id INTEGER PRIMARY KEY,
			tenant_id INTEGER NOT NULL,
			config_id INTEGER NOT NULL,
			status TEXT NOT NULL,
			error_message TEXT,
			metadata TEXT,
			created_at DATETIME
		)`,
	} {
		require.NoError(t, db.Exec(stmt).Error)
	}

	node, err := snowflake.NewNode(9)
	require.NoError(t, err)

	repo := configrepo.Provide(db)
	logSvc := logservice.New(logservice.Params{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  logrepo.Provide(db),
	})
	invoker := &mockInvoker{}
	fakeClock := clock.NewFakeClock(now)

	sched, err := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		ConfigRepo: repo,
		Invoker:    invoker,
		LogSvc:     logSvc,
		GenID:      node,
		Clock:      fakeClock,
	})
	require.NoError(t, err)

	return &schedulerFixture{
		db:      db,
		sched:   sched,
		invoker: invoker,
		clock:   fakeClock,
		repo:    repo,
		logSvc:  logSvc,
		node:    node,
	}
}

func (f *schedulerFixture) insertTenant(t *testing.T, id int64, name, status string) {
	t.Helper()
	require.NoError(t, f.db.Exec(
		`INSERT INTO tenants (id, name, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, status, time.Now().UTC(), time.Now().UTC(),
	).Error)
}

func (f *schedulerFixture) insertConfig(t *testing.T, cfg configdomain.GenerationConfig) {
	t.Helper()
	require.NoError(t, f.db.Exec(
		`INSERT INTO generation_configs (
			id, tenant_id, frequency, next_generation_date, timezone,
			generate_on_weekend, auto_send, billing_contact_email, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cfg.ID, cfg.TenantID, cfg.Frequency, cfg.NextGenerationDate, cfg.Timezone,
		cfg.GenerateOnWeekend, cfg.AutoSend, cfg.BillingContactEmail, cfg.IsActive,
		time.Now().UTC(), time.Now().UTC(),
	).Error)
}

func (f *schedulerFixture) nextDate(t *testing.T, configID int64) time.Time {
	t.Helper()
	var stored time.Time
	row := f.db.Raw(
		`SELECT next_generation_date FROM generation_configs WHERE id = ?`, configID,
	).Row()
	require.NoError(t, row.Scan(&stored))
	return stored.UTC()
}

func assertSameInstant(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, got.Equal(want), "got %v want %v", got, want)
}

func (f *schedulerFixture) logEntries(t *testing.T, configID int64) []logdomain.GenerationLog {
	t.Helper()
	entries, err := f.logSvc.List(context.Background(), logdomain.ListFilter{ConfigID: snowflake.ID(configID)})
	require.NoError(t, err)
	return entries
}

func storedDate(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestRunPassGeneratesAndAdvancesMonthly(t *testing.T) {
	// March 1, 2024 is a Friday; 12:00 UTC is past midnight in New York.
	f := newFixture(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	f.insertTenant(t, 100, "Acme", "active")
	f.insertConfig(t, configdomain.GenerationConfig{
		ID:                 1,
		TenantID:           100,
		Frequency:          configdomain.FrequencyMonthly,
		NextGenerationDate: storedDate(2024, 3, 1),
		Timezone:           "America/New_York",
		IsActive:           true,
	})

	require.NoError(t, f.sched.TriggerManualCheck(context.Background()))

	require.Len(t, f.invoker.calls, 1)
	assert.Equal(t, snowflake.ID(1), f.invoker.calls[0].ConfigID)

	next := f.nextDate(t, 1)
	assertSameInstant(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), next)

	entries := f.logEntries(t, 1)
	require.Len(t, entries, 1)
	assert.Equal(t, logdomain.StatusCompleted, entries[0].Status)
	assert.Empty(t, entries[0].ErrorMessage)
}

func TestRunPassFailureStillAdvances(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	f.insertTenant(t, 100, "Acme", "active")
	f.insertConfig(t, configdomain.GenerationConfig{
		ID:                 1,
		TenantID:           100,
		Frequency:          configdomain.FrequencyMonthly,
		NextGenerationDate: storedDate(2024, 3, 1),
		Timezone:           "America/New_York",
		IsActive:           true,
	})
	f.invoker.fn = func(snowflake.ID, gendomain.GenerateOptions) (*gendomain.Result, error) {
		return nil, errors.New("billing engine unavailable")
	}

	require.NoError(t, f.sched.TriggerManualCheck(context.Background()))

	// The schedule moves on so one bad cycle cannot wedge the tenant.
	assertSameInstant(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), f.nextDate(t, 1))

	entries := f.logEntries(t, 1)
	require.Len(t, entries, 1)
	assert.Equal(t, logdomain.StatusFailed, entries[0].Status)
	assert.Contains(t, entries[0].ErrorMessage, "billing engine unavailable")
}

func TestRunPassWeekendDeferral(t *testing.T) {
	// June 1, 2024 is a Saturday.
	f := newFixture(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	f.insertTenant(t, 100, "Acme", "active")
	f.insertConfig(t, configdomain.GenerationConfig{
		ID:                 1,
		TenantID:           100,
		Frequency:          configdomain.FrequencyMonthly,
		NextGenerationDate: storedDate(2024, 6, 1),
		Timezone:           "UTC",
		IsActive:           true,
	})

	require.NoError(t, f.sched.TriggerManualCheck(context.Background()))

	// No generation, no audit entry; the date slides to Monday June 3.
	assert.Empty(t, f.invoker.calls)
	assert.Empty(t, f.logEntries(t, 1))
	assertSameInstant(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), f.nextDate(t, 1))
}

func TestRunPassWeekendGenerationWhenAllowed(t *testing.T) {
	f := newFixture(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	f.insertTenant(t, 100, "Acme", "active")
	f.insertConfig(t, configdomain.GenerationConfig{
		ID:                 1,
		TenantID:           100,
		Frequency:          configdomain.FrequencyMonthly,
		NextGenerationDate: storedDate(2024, 6, 1),
		Timezone:           "UTC",
		GenerateOnWeekend:  true,
		IsActive:           true,
	})

	require.NoError(t, f.sched.TriggerManualCheck(context.Background()))

	require.Len(t, f.invoker.calls, 1)
	assertSameInstant(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), f.nextDate(t, 1))
}

func TestRunPassFailureIsolation(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	f.insertTenant(t, 100, "Acme", "active")
	f.insertTenant(t, 200, "Globex", "active")
	f.insertConfig(t, configdomain.GenerationConfig{
		ID:                 1,
		TenantID:           100,
		Frequency:          configdomain.FrequencyMonthly,
		NextGenerationDate: storedDate(2024, 3, 1),
		Timezone:           "UTC",
		IsActive:           true,
	})
	f.insertConfig(t, configdomain.GenerationConfig{
		ID:                 2,
		TenantID:           200,
		Frequency:          configdomain.FrequencyMonthly,
		NextGenerationDate: storedDate(2024, 3, 1),
		Timezone:           "UTC",
		IsActive:           true,
	})
	f.invoker.fn = func(tenantID snowflake.ID, opts gendomain.GenerateOptions) (*gendomain.Result, error) {
		if tenantID == 100 {
			return nil, errors.New("tenant 100 exploded")
		}
		return &gendomain.Result{InvoiceID: 2, InvoiceNumber: "INV-200"}, nil
	}

	require.NoError(t, f.sched.TriggerManualCheck(context.Background()))

	require.Len(t, f.invoker.calls, 2)

	entriesA := f.logEntries(t, 1)
	require.Len(t, entriesA, 1)
	assert.Equal(t, logdomain.StatusFailed, entriesA[0].Status)

	entriesB := f.logEntries(t, 2)
	require.Len(t, entriesB, 1)
	assert.Equal(t, logdomain.StatusCompleted, entriesB[0].Status)

	assertSameInstant(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), f.nextDate(t, 1))
	assertSameInstant(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), f.nextDate(t, 2))
}

func TestRunPassInvalidFrequencyIsSkippedWithoutSideEffects(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	f.insertTenant(t, 100, "Acme", "active")
	f.insertConfig(t, configdomain.GenerationConfig{
		ID:                 1,
		TenantID:           100,
		Frequency:          configdomain.Frequency("weekly"),
		NextGenerationDate: storedDate(2024, 3, 1),
		Timezone:           "UTC",
		IsActive:           true,
	})

	require.NoError(t, f.sched.TriggerManualCheck(context.Background()))

	// Never generate on a config that could not advance afterwards.
	assert.Empty(t, f.invoker.calls)
	assert.Empty(t, f.logEntries(t, 1))
	assertSameInstant(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), f.nextDate(t, 1))
}

func TestRunPassSkipsInactiveAndSuspended(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	f.insertTenant(t, 100, "Acme", "suspended")
	f.insertTenant(t, 200, "Globex", "active")
	f.insertConfig(t, configdomain.GenerationConfig{
		ID:                 1,
		TenantID:           100,
		Frequency:          configdomain.FrequencyMonthly,
		NextGenerationDate: storedDate(2024, 3, 1),
		Timezone:           "UTC",
		IsActive:           true,
	})
	f.insertConfig(t, configdomain.GenerationConfig{
		ID:                 2,
		TenantID:           200,
		Frequency:          configdomain.FrequencyMonthly,
		NextGenerationDate: storedDate(2024, 3, 1),
		Timezone:           "UTC",
		IsActive:           false,
	})

	require.NoError(t, f.sched.TriggerManualCheck(context.Background()))

	assert.Empty(t, f.invoker.calls)
}

func TestRunPassNotDueInTenantTimezone(t *testing.T) {
	// 04:00 UTC March 1 is still Feb 29 in Los Angeles.
	f := newFixture(t, time.Date(2024, 3, 1, 4, 0, 0, 0, time.UTC))

	f.insertTenant(t, 100, "Acme", "active")
	f.insertConfig(t, configdomain.GenerationConfig{
		ID:                 1,
		TenantID:           100,
		Frequency:          configdomain.FrequencyMonthly,
		NextGenerationDate: storedDate(2024, 3, 1),
		Timezone:           "America/Los_Angeles",
		IsActive:           true,
	})

	require.NoError(t, f.sched.TriggerManualCheck(context.Background()))
	assert.Empty(t, f.invoker.calls)

	// Once LA crosses midnight the same pass logic picks it up.
	f.clock.Set(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, f.sched.TriggerManualCheck(context.Background()))
	require.Len(t, f.invoker.calls, 1)
}

func TestRunPassCatchUpDoesNotSkipCycles(t *testing.T) {
	// Scheduler wakes up in May with a schedule from March. Only the
	// overdue cycle fires; the next date advances by one period at a time.
	f := newFixture(t, time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC))

	f.insertTenant(t, 100, "Acme", "active")
	f.insertConfig(t, configdomain.GenerationConfig{
		ID:                 1,
		TenantID:           100,
		Frequency:          configdomain.FrequencyMonthly,
		NextGenerationDate: storedDate(2024, 3, 1),
		Timezone:           "UTC",
		IsActive:           true,
	})

	require.NoError(t, f.sched.TriggerManualCheck(context.Background()))
	require.Len(t, f.invoker.calls, 1)
	assertSameInstant(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), f.nextDate(t, 1))

	// A second pass catches the next overdue cycle.
	require.NoError(t, f.sched.TriggerManualCheck(context.Background()))
	require.Len(t, f.invoker.calls, 2)
	assertSameInstant(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), f.nextDate(t, 1))
}

func TestRunPassBadTimezoneDoesNotAbortOthers(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	f.insertTenant(t, 100, "Acme", "active")
	f.insertTenant(t, 200, "Globex", "active")
	f.insertConfig(t, configdomain.GenerationConfig{
		ID:                 1,
		TenantID:           100,
		Frequency:          configdomain.FrequencyMonthly,
		NextGenerationDate: storedDate(2024, 3, 1),
		Timezone:           "Mars/Olympus_Mons",
		IsActive:           true,
	})
	f.insertConfig(t, configdomain.GenerationConfig{
		ID:                 2,
		TenantID:           200,
		Frequency:          configdomain.FrequencyMonthly,
		NextGenerationDate: storedDate(2024, 3, 1),
		Timezone:           "UTC",
		IsActive:           true,
	})

	require.NoError(t, f.sched.TriggerManualCheck(context.Background()))

	// The broken config is skipped untouched; the healthy one proceeds.
	require.Len(t, f.invoker.calls, 1)
	assert.Equal(t, snowflake.ID(2), f.invoker.calls[0].ConfigID)
	assertSameInstant(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), f.nextDate(t, 1))
	assertSameInstant(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), f.nextDate(t, 2))
}

func TestRunPassWeekdayScheduleGeneratesDuringWeekendProcessing(t *testing.T) {
	// May 31, 2024 is a Friday. The pass runs on Saturday June 1 after a
	// day of downtime; deferral keys off the scheduled date, so the
	// overdue Friday invoice still generates.
	f := newFixture(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	f.insertTenant(t, 100, "Acme", "active")
	f.insertConfig(t, configdomain.GenerationConfig{
		ID:                 1,
		TenantID:           100,
		Frequency:          configdomain.FrequencyMonthly,
		NextGenerationDate: storedDate(2024, 5, 31),
		Timezone:           "UTC",
		IsActive:           true,
	})

	require.NoError(t, f.sched.TriggerManualCheck(context.Background()))

	require.Len(t, f.invoker.calls, 1)
	entries := f.logEntries(t, 1)
	require.Len(t, entries, 1)
	assert.Equal(t, logdomain.StatusCompleted, entries[0].Status)
	// May 31 + 1 month clamps to June 30.
	assertSameInstant(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), f.nextDate(t, 1))
}

func TestRunPassSelectionFailureAbortsPass(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	f.insertTenant(t, 100, "Acme", "active")
	f.insertConfig(t, configdomain.GenerationConfig{
		ID:                 1,
		TenantID:           100,
		Frequency:          configdomain.FrequencyMonthly,
		NextGenerationDate: storedDate(2024, 3, 1),
		Timezone:           "UTC",
		IsActive:           true,
	})

	loadErr := errors.New("database unreachable")
	sched, err := New(Params{
		DB:         f.db,
		Log:        zap.NewNop(),
		ConfigRepo: &flakyConfigRepo{Repository: f.repo, loadErr: loadErr},
		Invoker:    f.invoker,
		LogSvc:     f.logSvc,
		GenID:      f.node,
		Clock:      f.clock,
	})
	require.NoError(t, err)

	require.ErrorIs(t, sched.TriggerManualCheck(context.Background()), loadErr)

	// No config was touched; the next trigger retries from scratch.
	assert.Empty(t, f.invoker.calls)
	assert.Empty(t, f.logEntries(t, 1))
	assertSameInstant(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), f.nextDate(t, 1))
}

func TestRunPassDateUpdateFailureKeepsPriorDate(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	f.insertTenant(t, 100, "Acme", "active")
	f.insertTenant(t, 200, "Globex", "active")
	f.insertConfig(t, configdomain.GenerationConfig{
		ID:                 1,
		TenantID:           100,
		Frequency:          configdomain.FrequencyMonthly,
		NextGenerationDate: storedDate(2024, 3, 1),
		Timezone:           "UTC",
		IsActive:           true,
	})
	f.insertConfig(t, configdomain.GenerationConfig{
		ID:                 2,
		TenantID:           200,
		Frequency:          configdomain.FrequencyMonthly,
		NextGenerationDate: storedDate(2024, 3, 1),
		Timezone:           "UTC",
		IsActive:           true,
	})

	flaky := &flakyConfigRepo{
		Repository: f.repo,
		updateErr:  map[snowflake.ID]error{1: errors.New("connection reset")},
	}
	sched, err := New(Params{
		DB:         f.db,
		Log:        zap.NewNop(),
		ConfigRepo: flaky,
		Invoker:    f.invoker,
		LogSvc:     f.logSvc,
		GenID:      f.node,
		Clock:      f.clock,
	})
	require.NoError(t, err)

	require.NoError(t, sched.TriggerManualCheck(context.Background()))

	// Both configs generated and logged; the failed date write leaves the
	// prior date in place without aborting the pass.
	require.Len(t, f.invoker.calls, 2)
	require.Len(t, f.logEntries(t, 1), 1)
	require.Len(t, f.logEntries(t, 2), 1)
	assertSameInstant(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), f.nextDate(t, 1))
	assertSameInstant(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), f.nextDate(t, 2))

	// Once the write path recovers, the stale date makes the config due
	// again so the cycle retries at least once.
	delete(flaky.updateErr, 1)
	f.clock.Advance(time.Hour)
	require.NoError(t, sched.TriggerManualCheck(context.Background()))

	require.Len(t, f.invoker.calls, 3)
	assertSameInstant(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), f.nextDate(t, 1))
}

func TestRunPassAuditWriteFailureDoesNotAbort(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	f.insertTenant(t, 100, "Acme", "active")
	f.insertTenant(t, 200, "Globex", "active")
	f.insertConfig(t, configdomain.GenerationConfig{
		ID:                 1,
		TenantID:           100,
		Frequency:          configdomain.FrequencyMonthly,
		NextGenerationDate: storedDate(2024, 3, 1),
		Timezone:           "UTC",
		IsActive:           true,
	})
	f.insertConfig(t, configdomain.GenerationConfig{
		ID:                 2,
		TenantID:           200,
		Frequency:          configdomain.FrequencyMonthly,
		NextGenerationDate: storedDate(2024, 3, 1),
		Timezone:           "UTC",
		IsActive:           true,
	})

	sched, err := New(Params{
		DB:         f.db,
		Log:        zap.NewNop(),
		ConfigRepo: f.repo,
		Invoker:    f.invoker,
		LogSvc:     &failingLogService{appendErr: errors.New("log store offline")},
		GenID:      f.node,
		Clock:      f.clock,
	})
	require.NoError(t, err)

	require.NoError(t, sched.TriggerManualCheck(context.Background()))

	// The audit trail is best effort; generation and date advancement
	// proceed for every config.
	require.Len(t, f.invoker.calls, 2)
	assertSameInstant(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), f.nextDate(t, 1))
	assertSameInstant(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), f.nextDate(t, 2))
}

func TestTriggerManualCheckSingleFlight(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	require.True(t, f.sched.passMu.TryLock())
	defer f.sched.passMu.Unlock()

	err := f.sched.TriggerManualCheck(context.Background())
	require.ErrorIs(t, err, ErrPassInProgress)
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	_, err := New(Params{})
	require.ErrorIs(t, err, ErrInvalidConfig)
}
