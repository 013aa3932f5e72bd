package series

import (
	"time"

	"github.com/lox/rainview/internal/models"
)

// YearRange is an inclusive range of calendar years. A zero bound is unbounded.
type YearRange struct {
	Start int
	End   int
}

// Contains reports whether t falls on or after Jan 1 of Start and before Jan 1 of End+1.
func (yr YearRange) Contains(t time.Time) bool {
	if yr.Start != 0 && t.Before(time.Date(yr.Start, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		return false
	}
	if yr.End != 0 && !t.Before(time.Date(yr.End+1, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		return false
	}
	return true
}

// FilterRange returns the points whose bucket start lies inside yr. The input is not modified.
func FilterRange(s models.ResampledSeries, yr YearRange) models.ResampledSeries {
	out := s
	out.Points = make([]models.Point, 0, len(s.Points))
	for _, p := range s.Points {
		if yr.Contains(p.Time) {
			out.Points = append(out.Points, p)
		}
	}
	return out
}
