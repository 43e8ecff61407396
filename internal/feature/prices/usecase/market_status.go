package usecase

import (
	"time"

	"metals_backend/internal/feature/prices/domain/entity"
)

// LME ring trading hours, Monday to Friday in UTC.
const (
	marketOpenHour  = 1
	marketCloseHour = 19
)

// MarketStatusAt evaluates the fixed trading-hours rule (Mon-Fri,
// 01:00-19:00 UTC) at the given instant.
func MarketStatusAt(now time.Time) entity.MarketStatus {
	now = now.UTC()

	if isWeekend(now) {
		next := nextMondayOpen(now)
		return entity.MarketStatus{
			IsOpen:   false,
			Message:  "Market closed - Weekend",
			NextOpen: &next,
		}
	}

	switch {
	case now.Hour() < marketOpenHour:
		next := atHour(now, marketOpenHour)
		return entity.MarketStatus{
			IsOpen:   false,
			Message:  "Market closed - Pre-market",
			NextOpen: &next,
		}
	case now.Hour() >= marketCloseHour:
		next := atHour(now.AddDate(0, 0, 1), marketOpenHour)
		if isWeekend(next) {
			next = nextMondayOpen(next)
		}
		return entity.MarketStatus{
			IsOpen:   false,
			Message:  "Market closed - After hours",
			NextOpen: &next,
		}
	default:
		closeAt := atHour(now, marketCloseHour)
		return entity.MarketStatus{
			IsOpen:    true,
			Message:   "Market open",
			NextClose: &closeAt,
		}
	}
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

func nextMondayOpen(t time.Time) time.Time {
	daysUntilMonday := (int(time.Monday) - int(t.Weekday()) + 7) % 7
	if daysUntilMonday == 0 {
		daysUntilMonday = 7
	}
	return atHour(t.AddDate(0, 0, daysUntilMonday), marketOpenHour)
}

func atHour(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, time.UTC)
}
