package seed

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSeedDB(t *testing.T) *gorm.DB {
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
	} {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}

func TestEnsureDemoTenantStoresWallClockDate(t *testing.T) {
	db := newSeedDB(t)
	require.NoError(t, EnsureDemoTenant(db))

	var stored time.Time
	row := db.Raw(`SELECT next_generation_date FROM generation_configs`).Row()
	require.NoError(t, row.Scan(&stored))
	stored = stored.UTC()

	// Wall-clock convention: midnight on the first with a UTC stamp, not
	// the instant conversion of New York midnight (04:00/05:00 UTC).
	assert.Equal(t, 1, stored.Day())
	assert.Equal(t, 0, stored.Hour())
	assert.Equal(t, 0, stored.Minute())
}

func TestEnsureDemoTenantIsIdempotent(t *testing.T) {
	db := newSeedDB(t)
	require.NoError(t, EnsureDemoTenant(db))
	require.NoError(t, EnsureDemoTenant(db))

	var tenants, configs int64
	row := db.Raw(`SELECT COUNT(*) FROM tenants`).Row()
	require.NoError(t, row.Scan(&tenants))
	row = db.Raw(`SELECT COUNT(*) FROM generation_configs`).Row()
	require.NoError(t, row.Scan(&configs))

	assert.EqualValues(t, 1, tenants)
	assert.EqualValues(t, 1, configs)
}
