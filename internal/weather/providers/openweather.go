package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/avelko/weather-records/internal/location"
	"github.com/avelko/weather-records/internal/weather"
)

// OpenWeatherClient talks to the OpenWeather geocoding, current weather and
// 5 day / 3 hour forecast APIs. Every call requires an API key; a missing
// key is reported per call so the server can start without one.
type OpenWeatherClient struct {
	apiKey  string
	timeout time.Duration
	httpCfg httpConfig
	circuit *gobreaker.CircuitBreaker

	geocodeURL  string
	reverseURL  string
	currentURL  string
	forecastURL string
}

func NewOpenWeatherClient(client *http.Client, apiKey string, timeout time.Duration, limiter *rate.Limiter) *OpenWeatherClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenWeatherClient{
		apiKey:  apiKey,
		timeout: timeout,
		httpCfg: httpConfig{
			client:  client,
			limiter: limiter,
		},
		circuit:     cb,
		geocodeURL:  "http://api.openweathermap.org/geo/1.0/direct",
		reverseURL:  "http://api.openweathermap.org/geo/1.0/reverse",
		currentURL:  "https://api.openweathermap.org/data/2.5/weather",
		forecastURL: "https://api.openweathermap.org/data/2.5/forecast",
	}
}

// Forward geocodes a free-text query, returning at most limit matches.
func (c *OpenWeatherClient) Forward(ctx context.Context, query string, limit int) ([]location.Match, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "geocoding", c.geocodeURL, values)
	if err != nil {
		return nil, err
	}

	var matches []location.Match
	if err := json.Unmarshal(body, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// Reverse geocodes a coordinate pair, returning at most one match.
func (c *OpenWeatherClient) Reverse(ctx context.Context, lat, lon float64) ([]location.Match, error) {
	values := url.Values{}
	values.Set("lat", formatFloat(lat))
	values.Set("lon", formatFloat(lon))
	values.Set("limit", "1")

	body, err := c.get(ctx, "reverse geocoding", c.reverseURL, values)
	if err != nil {
		return nil, err
	}

	var matches []location.Match
	if err := json.Unmarshal(body, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// Current fetches current conditions in metric units. The payload is
// returned as received.
func (c *OpenWeatherClient) Current(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	body, err := c.get(ctx, "current weather", c.currentURL, coordValues(lat, lon))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// Forecast fetches the 5-day forecast in metric units. The payload is
// returned as received.
func (c *OpenWeatherClient) Forecast(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	body, err := c.get(ctx, "forecast", c.forecastURL, coordValues(lat, lon))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *OpenWeatherClient) get(ctx context.Context, name, baseURL string, values url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, weather.ErrMissingAPIKey
	}
	values.Set("appid", c.apiKey)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", baseURL, values.Encode()), nil)
	if err != nil {
		return nil, err
	}
	return doRequest(ctx, c.httpCfg, c.circuit, name, req)
}

func coordValues(lat, lon float64) url.Values {
	values := url.Values{}
	values.Set("lat", formatFloat(lat))
	values.Set("lon", formatFloat(lon))
	values.Set("units", "metric")
	return values
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var (
	_ location.Geocoder          = (*OpenWeatherClient)(nil)
	_ weather.ConditionsProvider = (*OpenWeatherClient)(nil)
)
