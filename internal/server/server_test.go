package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/rebill/internal/config"
	configrepo "github.com/smallbiznis/rebill/internal/generationconfig/repository"
	logrepo "github.com/smallbiznis/rebill/internal/generationlog/repository"
	logservice "github.com/smallbiznis/rebill/internal/generationlog/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := NewServer(ServerParams{
		Gin:        engine,
		Cfg:        config.Config{Environment: "test"},
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		ConfigRepo: configrepo.Provide(db),
		LogSvc: logservice.New(logservice.Params{
			Log:   zap.NewNop(),
			GenID: node,
			Repo:  logrepo.Provide(db),
		}),
	})

	return srv, db
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)
	return rec
}

func TestCreateGenerationConfig(t *testing.T) {
	srv, db := newTestServer(t)
	require.NoError(t, db.Exec(
		`INSERT INTO tenants (id, name, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		100, "Acme", "active", time.Now().UTC(), time.Now().UTC(),
	).Error)

	rec := doJSON(t, srv, http.MethodPost, "/v1/generation-configs", gin.H{
		"tenant_id":            "100",
		"frequency":            "monthly",
		"next_generation_date": "2024-03-01",
		"timezone":             "America/New_York",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID        string `json:"id"`
		Frequency string `json:"frequency"`
		Timezone  string `json:"timezone"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "monthly", created.Frequency)
	assert.Equal(t, "America/New_York", created.Timezone)

	get := doJSON(t, srv, http.MethodGet, "/v1/generation-configs/"+created.ID, nil)
	require.Equal(t, http.StatusOK, get.Code)
}

func TestCreateGenerationConfigRejectsUnknownFrequency(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/v1/generation-configs", gin.H{
		"tenant_id":            "100",
		"frequency":            "weekly",
		"next_generation_date": "2024-03-01",
		"timezone":             "UTC",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid frequency")
}

func TestCreateGenerationConfigRejectsBadTimezone(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/v1/generation-configs", gin.H{
		"tenant_id":            "100",
		"frequency":            "monthly",
		"next_generation_date": "2024-03-01",
		"timezone":             "Mars/Olympus_Mons",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateGenerationConfig(t *testing.T) {
	srv, db := newTestServer(t)
	require.NoError(t, db.Exec(
		`INSERT INTO generation_configs (
			id, tenant_id, frequency, next_generation_date, timezone,
			generate_on_weekend, auto_send, billing_contact_email, is_active, created_at, updated_at
		) VALUES (1, 100, 'monthly', ?, 'UTC', FALSE, FALSE, '', TRUE, ?, ?)`,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Now().UTC(), time.Now().UTC(),
	).Error)

	rec := doJSON(t, srv, http.MethodPatch, "/v1/generation-configs/1", gin.H{
		"frequency":           "quarterly",
		"generate_on_weekend": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated struct {
		Frequency         string `json:"frequency"`
		GenerateOnWeekend bool   `json:"generate_on_weekend"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "quarterly", updated.Frequency)
	assert.True(t, updated.GenerateOnWeekend)
}

func TestGetGenerationConfigNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/v1/generation-configs/999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListGenerationLogsFiltersStatus(t *testing.T) {
	srv, db := newTestServer(t)
	now := time.Now().UTC()
	require.NoError(t, db.Exec(
		`INSERT INTO generation_logs (id, tenant_id, config_id, status, error_message, metadata, created_at)
		 VALUES (1, 100, 1, 'completed', '', '{}', ?), (2, 100, 1, 'failed', 'boom', '{}', ?)`,
		now, now,
	).Error)

	rec := doJSON(t, srv, http.MethodGet, "/v1/generation-logs?status=failed", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		GenerationLogs []struct {
			Status       string `json:"status"`
			ErrorMessage string `json:"error_message"`
		} `json:"generation_logs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.GenerationLogs, 1)
	assert.Equal(t, "failed", resp.GenerationLogs[0].Status)

	bad := doJSON(t, srv, http.MethodGet, "/v1/generation-logs?status=bogus", nil)
	require.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestSchedulerRunOnceWithoutScheduler(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/v1/scheduler/run-once", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
