package series

import (
	"fmt"
	"time"

	"github.com/lox/rainview/internal/models"
)

// Buckets are anchored to calendar boundaries in UTC so that series from
// different stations line up:
//
//	Y    January 1
//	Q    January, April, July, October 1
//	M    the 1st of the month
//	W    ISO week, Monday 00:00
//	24H  the calendar day
func bucketStart(t time.Time, freq models.Frequency) (time.Time, error) {
	y, m, d := t.Date()
	switch freq {
	case models.Yearly:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC), nil
	case models.Quarterly:
		qm := time.Month((int(m)-1)/3*3 + 1)
		return time.Date(y, qm, 1, 0, 0, 0, 0, time.UTC), nil
	case models.Monthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC), nil
	case models.Weekly:
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, time.UTC), nil
	case models.Daily:
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("%w: unsupported frequency %q", models.ErrInvalidArgument, string(freq))
}

func nextBucket(start time.Time, freq models.Frequency) time.Time {
	switch freq {
	case models.Yearly:
		return start.AddDate(1, 0, 0)
	case models.Quarterly:
		return start.AddDate(0, 3, 0)
	case models.Monthly:
		return start.AddDate(0, 1, 0)
	case models.Weekly:
		return start.AddDate(0, 0, 7)
	default:
		return start.AddDate(0, 0, 1)
	}
}
