package services

import "fmt"

// ConfigError reports an unusable buffer capacity. It is returned at
// construction time and is not recoverable by the buffer.
type ConfigError struct {
	Capacity int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rolling buffer: capacity must be positive, got %d", e.Capacity)
}

// InsufficientDataError is returned by the trend fitter while fewer than two
// points exist. Callers treat it as "no trend yet", not as a failure.
type InsufficientDataError struct {
	Field  string
	Points int
}

func (e *InsufficientDataError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("trend: need at least %d points, have %d", MinTrendPoints, e.Points)
	}
	return fmt.Sprintf("trend %s: need at least %d points, have %d", e.Field, MinTrendPoints, e.Points)
}
