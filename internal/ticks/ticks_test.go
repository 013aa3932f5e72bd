package ticks

import (
	"math"
	"reflect"
	"testing"
)

func TestAuto(t *testing.T) {
	tests := []struct {
		name       string
		lo, hi     float64
		maxTicks   int
		insideOnly bool
		want       []float64
	}{
		{"percent range", 0, 97, 10, false, []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90}},
		{"year range inside", 1901, 2017, 10, true, []float64{1920, 1940, 1960, 1980, 2000}},
		{"year range", 1901, 2017, 10, false, []float64{1900, 1920, 1940, 1960, 1980, 2000}},
		{"few ticks", 0, 97, 3, false, []float64{0, 50}},
		{"reversed", 97, 0, 10, false, []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90}},
		{"degenerate", 1950, 1950, 10, false, []float64{1950}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Auto(tt.lo, tt.hi, tt.maxTicks, tt.insideOnly)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Auto(%v, %v, %d, %v) = %v, want %v", tt.lo, tt.hi, tt.maxTicks, tt.insideOnly, got, tt.want)
			}
		})
	}
}

func TestAuto_NeverExceedsMax(t *testing.T) {
	for _, hi := range []float64{3, 17, 42, 97, 150, 999, 1234} {
		for max := 2; max <= 12; max++ {
			got := Auto(0, hi, max, false)
			if len(got) > max {
				t.Errorf("Auto(0, %v, %d) produced %d ticks: %v", hi, max, len(got), got)
			}
			for i := 1; i < len(got); i++ {
				if got[i] <= got[i-1] {
					t.Fatalf("Auto(0, %v, %d) not ascending: %v", hi, max, got)
				}
			}
		}
	}
}

func TestAuto_InvalidInput(t *testing.T) {
	if got := Auto(math.NaN(), 1, 10, false); got != nil {
		t.Errorf("NaN range = %v, want nil", got)
	}
	if got := Auto(0, math.Inf(1), 10, false); got != nil {
		t.Errorf("infinite range = %v, want nil", got)
	}
}

func TestLabels(t *testing.T) {
	got := Labels([]float64{1920, 1940.0000000001, -10})
	want := []string{"1920", "1940", "-10"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Labels = %v, want %v", got, want)
	}
}
