package series

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lox/rainview/internal/models"
)

type JoinedRow struct {
	Time   time.Time
	Values []sql.NullFloat64
}

// Joined is an outer join of several series on bucket start; column i of every
// row belongs to StationIDs[i].
type Joined struct {
	StationIDs []string
	Rows       []JoinedRow
}

// OuterJoin merges series by sorted bucket time. Keys absent from a series are missing.
// Each input must already be ordered by time, as Resample produces it.
func OuterJoin(series ...models.ResampledSeries) Joined {
	j := Joined{StationIDs: make([]string, len(series))}
	for i, s := range series {
		j.StationIDs[i] = s.StationID
	}

	pos := make([]int, len(series))
	for {
		var next time.Time
		found := false
		for i, s := range series {
			if pos[i] >= len(s.Points) {
				continue
			}
			t := s.Points[pos[i]].Time
			if !found || t.Before(next) {
				next = t
				found = true
			}
		}
		if !found {
			return j
		}

		row := JoinedRow{Time: next, Values: make([]sql.NullFloat64, len(series))}
		for i, s := range series {
			if pos[i] < len(s.Points) && s.Points[pos[i]].Time.Equal(next) {
				row.Values[i] = s.Points[pos[i]].Value
				pos[i]++
			}
		}
		j.Rows = append(j.Rows, row)
	}
}

// YearSpan returns the earliest and latest bucket years across all series.
func YearSpan(series ...models.ResampledSeries) (int, int, error) {
	first, last := 0, 0
	found := false
	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		lo := s.Points[0].Time.Year()
		hi := s.Points[len(s.Points)-1].Time.Year()
		if !found || lo < first {
			first = lo
		}
		if !found || hi > last {
			last = hi
		}
		found = true
	}
	if !found {
		return 0, 0, fmt.Errorf("%w: no buckets to span", models.ErrInsufficientData)
	}
	return first, last, nil
}
