package models

import "errors"

var (
	// ErrNotFound reports an unknown station or a station without stored series.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument reports an unsupported frequency, summary or malformed input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInsufficientData reports a trend fit over fewer than two usable points.
	ErrInsufficientData = errors.New("insufficient data")
)
