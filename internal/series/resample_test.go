package series

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/lox/rainview/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dailySeries builds one sample per day in [from, to] using value(day).
func dailySeries(from, to time.Time, value func(time.Time) sql.NullFloat64) models.RawSeries {
	raw := models.RawSeries{StationID: "TEST"}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		raw.Samples = append(raw.Samples, models.Sample{Date: d, Rainfall: value(d)})
	}
	return raw
}

func constant(v float64) func(time.Time) sql.NullFloat64 {
	return func(time.Time) sql.NullFloat64 { return models.Value(v) }
}

func newResampler(t *testing.T) *Resampler {
	t.Helper()
	r, err := NewResampler(DefaultConfig())
	if err != nil {
		t.Fatalf("NewResampler: %v", err)
	}
	return r
}

func TestResample_YearlyTotal(t *testing.T) {
	r := newResampler(t)
	raw := dailySeries(date(2001, 1, 1), date(2003, 12, 31), constant(1))

	got, err := r.Resample(raw, models.Yearly, models.Total)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if len(got.Points) != 3 {
		t.Fatalf("len(Points) = %d, want 3", len(got.Points))
	}
	for i, p := range got.Points {
		if !p.Time.Equal(date(2001+i, 1, 1)) {
			t.Errorf("Points[%d].Time = %v, want Jan 1 %d", i, p.Time, 2001+i)
		}
		if !p.Value.Valid || p.Value.Float64 != 365 {
			t.Errorf("Points[%d].Value = %+v, want 365", i, p.Value)
		}
	}
}

func TestResample_SparseBucketIsMissing(t *testing.T) {
	r := newResampler(t)
	raw := dailySeries(date(2001, 1, 1), date(2001, 12, 31), func(d time.Time) sql.NullFloat64 {
		if d.YearDay() <= 100 {
			return models.Value(50)
		}
		return models.Missing
	})

	for _, summary := range []models.Summary{models.Total, models.Max} {
		got, err := r.Resample(raw, models.Yearly, summary)
		if err != nil {
			t.Fatalf("Resample(%v): %v", summary, err)
		}
		if len(got.Points) != 1 {
			t.Fatalf("len(Points) = %d, want 1", len(got.Points))
		}
		if got.Points[0].Value.Valid {
			t.Errorf("%v: bucket with 100/365 days = %v, want missing", summary, got.Points[0].Value.Float64)
		}
	}
}

func TestResample_Threshold(t *testing.T) {
	r := newResampler(t)

	// θ×7 = 6.3, so 7 present days pass and 6 do not.
	week := func(present int) models.RawSeries {
		start := date(2024, 1, 1) // Monday
		return dailySeries(start, start.AddDate(0, 0, 6), func(d time.Time) sql.NullFloat64 {
			if int(d.Sub(start).Hours()/24) < present {
				return models.Value(2)
			}
			return models.Missing
		})
	}

	tests := []struct {
		present int
		valid   bool
	}{
		{7, true},
		{6, false},
		{0, false},
	}
	for _, tt := range tests {
		got, err := r.Resample(week(tt.present), models.Weekly, models.Total)
		if err != nil {
			t.Fatalf("Resample: %v", err)
		}
		if len(got.Points) != 1 {
			t.Fatalf("len(Points) = %d, want 1", len(got.Points))
		}
		if got.Points[0].Value.Valid != tt.valid {
			t.Errorf("present=%d: valid = %v, want %v", tt.present, got.Points[0].Value.Valid, tt.valid)
		}
	}
}

func TestResample_MonthlyMax(t *testing.T) {
	r := newResampler(t)
	raw := dailySeries(date(2020, 1, 1), date(2020, 2, 29), func(d time.Time) sql.NullFloat64 {
		return models.Value(float64(d.Day()))
	})

	got, err := r.Resample(raw, models.Monthly, models.Max)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if len(got.Points) != 2 {
		t.Fatalf("len(Points) = %d, want 2", len(got.Points))
	}
	if got.Points[0].Value.Float64 != 31 {
		t.Errorf("January max = %v, want 31", got.Points[0].Value.Float64)
	}
	if !got.Points[1].Time.Equal(date(2020, 2, 1)) || got.Points[1].Value.Float64 != 29 {
		t.Errorf("February = %+v, want 29 at Feb 1", got.Points[1])
	}
}

func TestResample_CalendarAnchoring(t *testing.T) {
	r := newResampler(t)
	// Starts mid-quarter and mid-week.
	raw := dailySeries(date(2021, 5, 13), date(2021, 8, 2), constant(1))

	tests := []struct {
		freq      models.Frequency
		wantFirst time.Time
		wantLast  time.Time
	}{
		{models.Yearly, date(2021, 1, 1), date(2021, 1, 1)},
		{models.Quarterly, date(2021, 4, 1), date(2021, 7, 1)},
		{models.Monthly, date(2021, 5, 1), date(2021, 8, 1)},
		{models.Weekly, date(2021, 5, 10), date(2021, 8, 2)},
		{models.Daily, date(2021, 5, 13), date(2021, 8, 2)},
	}
	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			got, err := r.Resample(raw, tt.freq, models.Total)
			if err != nil {
				t.Fatalf("Resample: %v", err)
			}
			first, last := got.Points[0].Time, got.Points[len(got.Points)-1].Time
			if !first.Equal(tt.wantFirst) {
				t.Errorf("first bucket = %v, want %v", first, tt.wantFirst)
			}
			if !last.Equal(tt.wantLast) {
				t.Errorf("last bucket = %v, want %v", last, tt.wantLast)
			}
			for i := 1; i < len(got.Points); i++ {
				if want := nextBucket(got.Points[i-1].Time, tt.freq); !got.Points[i].Time.Equal(want) {
					t.Fatalf("Points[%d].Time = %v, want %v", i, got.Points[i].Time, want)
				}
			}
		})
	}
}

func TestResample_GapsEmitMissingBuckets(t *testing.T) {
	r := newResampler(t)
	// Data for 2001 and 2004 only; 2002 and 2003 have no samples at all.
	raw := dailySeries(date(2001, 1, 1), date(2001, 12, 31), constant(1))
	tail := dailySeries(date(2004, 1, 1), date(2004, 12, 31), constant(2))
	raw.Samples = append(raw.Samples, tail.Samples...)

	got, err := r.Resample(raw, models.Yearly, models.Total)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if len(got.Points) != 4 {
		t.Fatalf("len(Points) = %d, want 4", len(got.Points))
	}
	wantValid := []bool{true, false, false, true}
	for i, p := range got.Points {
		if p.Value.Valid != wantValid[i] {
			t.Errorf("Points[%d] valid = %v, want %v", i, p.Value.Valid, wantValid[i])
		}
	}
	if got.Points[3].Value.Float64 != 732 {
		t.Errorf("2004 total = %v, want 732", got.Points[3].Value.Float64)
	}
}

func TestResample_MissingIsNotZero(t *testing.T) {
	r := newResampler(t)
	raw := dailySeries(date(2022, 6, 1), date(2022, 6, 3), func(d time.Time) sql.NullFloat64 {
		if d.Day() == 2 {
			return models.Missing
		}
		return models.Value(0)
	})

	got, err := r.Resample(raw, models.Daily, models.Total)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if !got.Points[0].Value.Valid || got.Points[0].Value.Float64 != 0 {
		t.Errorf("dry day = %+v, want valid 0", got.Points[0].Value)
	}
	if got.Points[1].Value.Valid {
		t.Errorf("missing day = %+v, want missing", got.Points[1].Value)
	}
}

func TestResample_InvalidArguments(t *testing.T) {
	r := newResampler(t)
	raw := dailySeries(date(2022, 1, 1), date(2022, 1, 10), constant(1))

	if _, err := r.Resample(raw, models.Yearly, models.Summary(9)); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("bad summary err = %v, want ErrInvalidArgument", err)
	}
	if _, err := r.Resample(raw, models.Frequency("H"), models.Total); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("bad frequency err = %v, want ErrInvalidArgument", err)
	}

	unordered := models.RawSeries{StationID: "X", Samples: []models.Sample{{Date: date(2022, 1, 2)}, {Date: date(2022, 1, 1)}}}
	if _, err := r.Resample(unordered, models.Yearly, models.Total); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("unordered series err = %v, want ErrInvalidArgument", err)
	}
}

func TestResample_DailyRejectsSameDayReadings(t *testing.T) {
	r := newResampler(t)
	raw := models.RawSeries{StationID: "X", Samples: []models.Sample{
		{Date: date(2000, 1, 1), Rainfall: models.Value(5)},
		{Date: date(2000, 1, 1).Add(12 * time.Hour), Rainfall: models.Value(7)},
	}}
	if got, err := r.Resample(raw, models.Daily, models.Total); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("Resample = %+v, %v; want ErrInvalidArgument", got.Points, err)
	}

	raw.Samples[1].Date = date(2000, 1, 2).Add(6 * time.Hour)
	got, err := r.Resample(raw, models.Daily, models.Total)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if len(got.Points) != 2 || got.Points[0].Value.Float64 != 5 || got.Points[1].Value.Float64 != 7 {
		t.Errorf("Points = %+v, want 5 then 7", got.Points)
	}
}

func TestResample_Empty(t *testing.T) {
	r := newResampler(t)
	got, err := r.Resample(models.RawSeries{StationID: "EMPTY"}, models.Monthly, models.Total)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if len(got.Points) != 0 {
		t.Errorf("len(Points) = %d, want 0", len(got.Points))
	}
}

func TestResample_DoesNotMutateInput(t *testing.T) {
	r := newResampler(t)
	raw := dailySeries(date(2010, 1, 1), date(2010, 3, 31), constant(3))
	before := append([]models.Sample(nil), raw.Samples...)

	if _, err := r.Resample(raw, models.Monthly, models.Max); err != nil {
		t.Fatalf("Resample: %v", err)
	}
	for i := range before {
		if before[i] != raw.Samples[i] {
			t.Fatalf("sample %d changed: %+v -> %+v", i, before[i], raw.Samples[i])
		}
	}
}

func TestNewResampler_InvalidConfig(t *testing.T) {
	for _, th := range []float64{0, -0.1, 1.5} {
		cfg := DefaultConfig()
		cfg.SufficiencyThreshold = th
		if _, err := NewResampler(cfg); !errors.Is(err, models.ErrInvalidArgument) {
			t.Errorf("threshold %v err = %v, want ErrInvalidArgument", th, err)
		}
	}
}

func TestFilterRange(t *testing.T) {
	r := newResampler(t)
	raw := dailySeries(date(1990, 1, 1), date(1999, 12, 31), constant(1))
	yearly, err := r.Resample(raw, models.Yearly, models.Total)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}

	tests := []struct {
		name string
		yr   YearRange
		want int
	}{
		{"unbounded", YearRange{}, 10},
		{"start only", YearRange{Start: 1995}, 5},
		{"end only", YearRange{End: 1991}, 2},
		{"inclusive both", YearRange{Start: 1992, End: 1994}, 3},
		{"single year", YearRange{Start: 1999, End: 1999}, 1},
		{"outside", YearRange{Start: 2005, End: 2010}, 0},
		{"reversed", YearRange{Start: 1996, End: 1993}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterRange(yearly, tt.yr)
			if len(got.Points) != tt.want {
				t.Errorf("len(Points) = %d, want %d", len(got.Points), tt.want)
			}
		})
	}

	monthly, err := r.Resample(raw, models.Monthly, models.Total)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	got := FilterRange(monthly, YearRange{Start: 1993, End: 1993})
	if len(got.Points) != 12 {
		t.Fatalf("monthly 1993 = %d points, want 12", len(got.Points))
	}
	if !got.Points[11].Time.Equal(date(1993, 12, 1)) {
		t.Errorf("last point = %v, want 1993-12-01", got.Points[11].Time)
	}
}
