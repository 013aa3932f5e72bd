package ingest

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/lox/rainview/internal/models"
)

const (
	FlagSentinel      = "sentinel"
	FlagNegative      = "negative"
	FlagNotANumber    = "not_a_number"
	FlagImplausible   = "implausible_daily_total"
	sentinelValue     = -9999
	maxPlausibleDaily = 2000.0 // mm; above any recorded 24h rainfall
)

// CleanSeries maps sentinel, negative and non-numeric readings to missing and
// counts what was changed by flag. The input is not modified.
func CleanSeries(raw models.RawSeries) (models.RawSeries, map[string]int) {
	flags := make(map[string]int)
	out := models.RawSeries{StationID: raw.StationID, Samples: make([]models.Sample, len(raw.Samples))}

	for i, smp := range raw.Samples {
		out.Samples[i] = smp
		if flag := ValidateSample(smp); flag != "" {
			flags[flag]++
			if flag != FlagImplausible {
				out.Samples[i].Rainfall = models.Missing
			}
		}
	}
	return out, flags
}

// ValidateSample returns the quality flag for a sample, or "" when it is fine or
// already missing. Implausible totals are flagged but kept.
func ValidateSample(smp models.Sample) string {
	if !smp.Rainfall.Valid {
		return ""
	}
	v := smp.Rainfall.Float64
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return FlagNotANumber
	case v == sentinelValue:
		return FlagSentinel
	case v < 0:
		return FlagNegative
	case v > maxPlausibleDaily:
		return FlagImplausible
	}
	return ""
}

// CatalogStats returns the record length in years (samples / 360, as the
// station catalog has always reported it) and the share of missing samples.
func CatalogStats(raw models.RawSeries) (lengthYears, missingFraction float64) {
	n := len(raw.Samples)
	if n == 0 {
		return 0, 0
	}
	missing := 0
	for _, smp := range raw.Samples {
		if !smp.Rainfall.Valid {
			missing++
		}
	}
	return float64(n) / 360, float64(missing) / float64(n)
}

func FlagsToJSON(flags map[string]int) string {
	if len(flags) == 0 {
		return ""
	}
	keys := make([]string, 0, len(flags))
	for k := range flags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := make([]struct {
		Flag  string `json:"flag"`
		Count int    `json:"count"`
	}, len(keys))
	for i, k := range keys {
		ordered[i].Flag = k
		ordered[i].Count = flags[k]
	}
	b, _ := json.Marshal(ordered)
	return string(b)
}
