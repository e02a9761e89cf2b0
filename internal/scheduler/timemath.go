package scheduler

import (
	"time"

	configdomain "github.com/smallbiznis/rebill/internal/generationconfig/domain"
)

// Scheduled dates are stored as UTC timestamps whose wall-clock fields are
// the tenant-local date. ScheduledInLocation rebuilds the tenant-local
// instant from the stored value, so "the 1st at midnight" means midnight in
// the tenant's own timezone regardless of server location.
func ScheduledInLocation(stored time.Time, loc *time.Location) time.Time {
	u := stored.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), u.Hour(), u.Minute(), u.Second(), 0, loc)
}

// ToStoredUTC is the inverse of ScheduledInLocation: it keeps the local
// wall-clock fields and stamps them UTC for storage.
func ToStoredUTC(local time.Time) time.Time {
	return time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), local.Second(), 0, time.UTC)
}

// IsDue reports whether the scheduled local instant has been reached at
// now, both evaluated in the tenant's location.
func IsDue(now time.Time, scheduledLocal time.Time) bool {
	return !now.In(scheduledLocal.Location()).Before(scheduledLocal)
}

// NextDueDate advances a scheduled local date by one recurrence period.
// Overflowing days clamp to the last day of the target month, so a config
// scheduled for Jan 31 bills on the last day of February instead of
// drifting into early March the way naive normalization would.
func NextDueDate(freq configdomain.Frequency, scheduledLocal time.Time) (time.Time, error) {
	switch freq {
	case configdomain.FrequencyMonthly:
		return addMonthsClamped(scheduledLocal, 1), nil
	case configdomain.FrequencyQuarterly:
		return addMonthsClamped(scheduledLocal, 3), nil
	case configdomain.FrequencyYearly:
		return addMonthsClamped(scheduledLocal, 12), nil
	default:
		return time.Time{}, configdomain.ErrInvalidFrequency
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), 0, t.Location())
	if last := lastDayOfMonth(firstOfTarget); day > last {
		day = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, t.Hour(), t.Minute(), t.Second(), 0, t.Location())
}

func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// NextBusinessDay returns the next Monday-Friday date at the same local
// wall-clock time. A weekday input is returned unchanged.
func NextBusinessDay(t time.Time) time.Time {
	for IsWeekend(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}
