package models

import "time"

// Recurrence resolution. Candidate firing instants are the cross product of
// the recurrence dates (start date advanced per recurrence type and interval,
// bounded by the end date when present) and the configured time-of-day slots.
// All computation is in UTC and side-effect free, so concurrent evaluation of
// many schedules needs no shared state.

// NextOccurrence returns the earliest candidate firing instant strictly after
// the given instant, or false when the recurrence is exhausted.
func (s *Schedule) NextOccurrence(after time.Time) (time.Time, bool) {
	after = after.UTC()

	for k := s.dateIndexNear(after); ; k++ {
		date, ok := s.dateAt(k)
		if !ok {
			return time.Time{}, false
		}

		best, found := time.Time{}, false

		for _, slot := range s.TimeSlots {
			candidate := time.Date(date.Year(), date.Month(), date.Day(), slot.Hour, slot.Minute, 0, 0, time.UTC)
			if !candidate.After(after) {
				continue
			}

			if !found || candidate.Before(best) {
				best, found = candidate, true
			}
		}

		if found {
			return best, true
		}
	}
}

// dateAt returns the k-th recurrence date (midnight UTC), or false when it
// falls past the end date.
func (s *Schedule) dateAt(k int) (time.Time, bool) {
	start := dateOnly(s.StartDate)

	var date time.Time

	switch s.Recurrence {
	case RecurrenceWeekly:
		// The interval acts as a week multiplier.
		date = start.AddDate(0, 0, k*7*s.IntervalDays)
	case RecurrenceMonthly:
		// The interval acts as a month multiplier.
		date = addMonthsClamped(start, k*s.IntervalDays)
	default: // daily and custom advance by the explicit interval in days
		date = start.AddDate(0, 0, k*s.IntervalDays)
	}

	if s.EndDate != nil && date.After(dateOnly(*s.EndDate)) {
		return time.Time{}, false
	}

	return date, true
}

// dateIndexNear estimates a lower bound for the recurrence date index near
// the given instant, so resolution does not walk every date since the start.
func (s *Schedule) dateIndexNear(at time.Time) int {
	start := dateOnly(s.StartDate)
	if !at.After(start) {
		return 0
	}

	var k int

	switch s.Recurrence {
	case RecurrenceWeekly:
		days := int(at.Sub(start).Hours() / 24)
		k = days/(7*s.IntervalDays) - 1
	case RecurrenceMonthly:
		months := (at.Year()-start.Year())*12 + int(at.Month()) - int(start.Month())
		k = months/s.IntervalDays - 1
	default:
		days := int(at.Sub(start).Hours() / 24)
		k = days/s.IntervalDays - 1
	}

	if k < 0 {
		return 0
	}

	return k
}

// addMonthsClamped advances a date by whole months, clamping the day-of-month
// to the last valid day of the target month. Go's AddDate normalizes overflow
// (Jan 31 plus one month becomes Mar 3), which is not what a monthly
// recurrence wants.
func addMonthsClamped(date time.Time, months int) time.Time {
	year, month, day := date.Date()

	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, time.UTC)

	last := target.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}

	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, time.UTC)
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
