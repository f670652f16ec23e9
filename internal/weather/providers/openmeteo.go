package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/avelko/weather-records/internal/weather"
)

// OpenMeteoClient fetches daily historical temperatures from the
// Open-Meteo archive API. No API key is required.
type OpenMeteoClient struct {
	timeout time.Duration
	httpCfg httpConfig
	circuit *gobreaker.CircuitBreaker

	archiveURL string
}

func NewOpenMeteoClient(client *http.Client, timeout time.Duration) *OpenMeteoClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenMeteoClient{
		timeout: timeout,
		httpCfg: httpConfig{
			client: client,
		},
		circuit:    cb,
		archiveURL: "https://archive-api.open-meteo.com/v1/archive",
	}
}

// DailyTemperatures queries daily max/min/mean temperature over the range,
// UTC-normalized. Dates must be YYYY-MM-DD; the caller validates them.
func (c *OpenMeteoClient) DailyTemperatures(ctx context.Context, lat, lon float64, startDate, endDate string) (json.RawMessage, error) {
	values := url.Values{}
	values.Set("latitude", formatFloat(lat))
	values.Set("longitude", formatFloat(lon))
	values.Set("start_date", startDate)
	values.Set("end_date", endDate)
	values.Set("daily", "temperature_2m_max,temperature_2m_min,temperature_2m_mean")
	values.Set("timezone", "UTC")

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", c.archiveURL, values.Encode()), nil)
	if err != nil {
		return nil, err
	}

	body, err := doRequest(ctx, c.httpCfg, c.circuit, "historical archive", req)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

var _ weather.ArchiveProvider = (*OpenMeteoClient)(nil)
