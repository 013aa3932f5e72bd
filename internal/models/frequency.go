package models

import (
	"fmt"
	"strings"
)

type Frequency string

const (
	Yearly    Frequency = "Y"
	Monthly   Frequency = "M"
	Weekly    Frequency = "W"
	Quarterly Frequency = "Q"
	Daily     Frequency = "24H"
)

var Frequencies = []Frequency{Yearly, Monthly, Weekly, Quarterly, Daily}

// ParseFrequency accepts the frequency codes plus the pandas-style aliases YE, ME and WE.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Y", "YE", "A":
		return Yearly, nil
	case "M", "ME":
		return Monthly, nil
	case "W", "WE":
		return Weekly, nil
	case "Q", "QE":
		return Quarterly, nil
	case "24H", "D":
		return Daily, nil
	}
	return "", fmt.Errorf("%w: unsupported frequency %q", ErrInvalidArgument, s)
}

// ExpectedDays is the nominal number of daily samples in one bucket.
func (f Frequency) ExpectedDays() (float64, error) {
	switch f {
	case Yearly:
		return 365, nil
	case Monthly:
		return 30, nil
	case Weekly:
		return 7, nil
	case Quarterly:
		return 365.0 / 4, nil
	case Daily:
		return 1, nil
	}
	return 0, fmt.Errorf("%w: unsupported frequency %q", ErrInvalidArgument, string(f))
}

type Summary int

const (
	Total Summary = iota + 1
	Max
)

func ParseSummary(s string) (Summary, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TOTAL", "SUM":
		return Total, nil
	case "MAX":
		return Max, nil
	}
	return 0, fmt.Errorf("%w: unsupported summary %q", ErrInvalidArgument, s)
}

func (s Summary) String() string {
	switch s {
	case Total:
		return "TOTAL"
	case Max:
		return "MAX"
	}
	return fmt.Sprintf("Summary(%d)", int(s))
}
