package series

import (
	"fmt"
	"math"
	"time"

	"github.com/lox/rainview/internal/models"
)

const (
	DefaultSufficiencyThreshold = 0.9
)

// DefaultEpoch is the origin for elapsed-day trend regression. It only offsets the
// fitted intercept; slope and significance do not depend on it.
var DefaultEpoch = time.Date(1800, time.January, 1, 0, 0, 0, 0, time.UTC)

// Config holds the constants shared by the resampler and trend fitter.
type Config struct {
	// SufficiencyThreshold is the share of a bucket's expected daily samples that
	// must be present (strictly more than) for the bucket to be aggregated.
	SufficiencyThreshold float64
	Epoch                time.Time
}

func DefaultConfig() Config {
	return Config{
		SufficiencyThreshold: DefaultSufficiencyThreshold,
		Epoch:                DefaultEpoch,
	}
}

func (c Config) Validate() error {
	if math.IsNaN(c.SufficiencyThreshold) || c.SufficiencyThreshold <= 0 || c.SufficiencyThreshold > 1 {
		return fmt.Errorf("%w: sufficiency threshold %v outside (0, 1]", models.ErrInvalidArgument, c.SufficiencyThreshold)
	}
	if c.Epoch.IsZero() {
		return fmt.Errorf("%w: epoch not set", models.ErrInvalidArgument)
	}
	return nil
}
