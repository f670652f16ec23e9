package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned at call time when no OpenWeather API key
	// is configured. The server still starts without one.
	ErrMissingAPIKey = errors.New("OPENWEATHER_API_KEY not set; put it into .env and restart the server")

	ErrInvalidDateFormat = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvalidDateRange  = errors.New("start_date must be <= end_date")
)

// ProviderError reports a non-success response from an upstream provider,
// carrying the status code and the body text verbatim.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s failed: %d %s", e.Provider, e.StatusCode, e.Body)
}
