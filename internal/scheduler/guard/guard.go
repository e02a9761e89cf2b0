package guard

import (
	"errors"
	"strings"
	"time"

	configdomain "github.com/smallbiznis/rebill/internal/generationconfig/domain"
)

var (
	ErrConfigNotActive   = errors.New("generation_config_not_active")
	ErrMissingSchedule   = errors.New("generation_config_missing_schedule")
	ErrMissingTimezone   = errors.New("generation_config_missing_timezone")
	ErrInvalidTimezone   = errors.New("generation_config_invalid_timezone")
	ErrInvalidFrequency  = configdomain.ErrInvalidFrequency
	ErrScheduleNotPinned = errors.New("generation_config_schedule_not_pinned")
)

// EnsureConfigSchedulable validates a candidate before any side effect.
// Frequency is checked here, ahead of generation, so a config that could
// never advance is skipped instead of billing the tenant on every pass.
func EnsureConfigSchedulable(c configdomain.DueCandidate) error {
	if _, err := configdomain.ParseFrequency(string(c.Frequency)); err != nil {
		return ErrInvalidFrequency
	}
	if strings.TrimSpace(c.Timezone) == "" {
		return ErrMissingTimezone
	}
	if c.NextGenerationDate.IsZero() {
		return ErrMissingSchedule
	}
	return nil
}

// ResolveLocation loads the candidate's IANA timezone.
func ResolveLocation(c configdomain.DueCandidate) (*time.Location, error) {
	loc, err := time.LoadLocation(strings.TrimSpace(c.Timezone))
	if err != nil {
		return nil, ErrInvalidTimezone
	}
	return loc, nil
}
