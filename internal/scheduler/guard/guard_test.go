package guard

import (
	"testing"
	"time"

	configdomain "github.com/smallbiznis/rebill/internal/generationconfig/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCandidate() configdomain.DueCandidate {
	return configdomain.DueCandidate{
		ID:                 1,
		TenantID:           100,
		Frequency:          configdomain.FrequencyMonthly,
		NextGenerationDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Timezone:           "America/New_York",
	}
}

func TestEnsureConfigSchedulable(t *testing.T) {
	require.NoError(t, EnsureConfigSchedulable(validCandidate()))

	c := validCandidate()
	c.Frequency = "weekly"
	assert.ErrorIs(t, EnsureConfigSchedulable(c), ErrInvalidFrequency)

	c = validCandidate()
	c.Timezone = "   "
	assert.ErrorIs(t, EnsureConfigSchedulable(c), ErrMissingTimezone)

	c = validCandidate()
	c.NextGenerationDate = time.Time{}
	assert.ErrorIs(t, EnsureConfigSchedulable(c), ErrMissingSchedule)
}

func TestResolveLocation(t *testing.T) {
	loc, err := ResolveLocation(validCandidate())
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())

	c := validCandidate()
	c.Timezone = "Mars/Olympus_Mons"
	_, err = ResolveLocation(c)
	assert.ErrorIs(t, err, ErrInvalidTimezone)
}
