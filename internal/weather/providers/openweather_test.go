package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/avelko/weather-records/internal/weather"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*OpenWeatherClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewOpenWeatherClient(srv.Client(), "test-key", 5*time.Second, rate.NewLimiter(rate.Inf, 1))
	c.geocodeURL = srv.URL + "/geo/1.0/direct"
	c.reverseURL = srv.URL + "/geo/1.0/reverse"
	c.currentURL = srv.URL + "/data/2.5/weather"
	c.forecastURL = srv.URL + "/data/2.5/forecast"
	return c, srv
}

func TestForwardDecodesMatches(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "Paris" || q.Get("limit") != "1" || q.Get("appid") != "test-key" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"name":"Paris","state":"Ile-de-France","country":"FR","lat":48.8566,"lon":2.3522}]`))
	})

	matches, err := c.Forward(context.Background(), "Paris", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 || matches[0].Name != "Paris" || matches[0].Lat != 48.8566 {
		t.Fatalf("unexpected matches: %+v", matches)
	}
}

func TestCurrentReturnsPayloadVerbatim(t *testing.T) {
	const payload = `{"main":{"temp":12.5},"weather":[{"main":"Clouds"}]}`
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("units") != "metric" {
			t.Errorf("expected metric units, got %s", r.URL.RawQuery)
		}
		w.Write([]byte(payload))
	})

	body, err := c.Current(context.Background(), 48.8566, 2.3522)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != payload {
		t.Fatalf("payload altered: %s", body)
	}
}

func TestMissingAPIKey(t *testing.T) {
	c := NewOpenWeatherClient(http.DefaultClient, "", time.Second, nil)

	_, err := c.Current(context.Background(), 0, 0)
	if !errors.Is(err, weather.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

// A non-success upstream status surfaces as a ProviderError carrying the
// status code and body text.
func TestUpstreamFailureWrapsStatusAndBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
	})

	_, err := c.Forecast(context.Background(), 0, 0)
	var provErr *weather.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", provErr.StatusCode)
	}
	if provErr.Body != `{"cod":401,"message":"Invalid API key"}` {
		t.Fatalf("body not preserved: %q", provErr.Body)
	}
}

func TestOpenMeteoArchiveQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("start_date") != "2024-01-01" || q.Get("end_date") != "2024-01-03" {
			t.Errorf("unexpected range: %s", r.URL.RawQuery)
		}
		if q.Get("daily") != "temperature_2m_max,temperature_2m_min,temperature_2m_mean" {
			t.Errorf("unexpected daily parameter: %s", q.Get("daily"))
		}
		if q.Get("timezone") != "UTC" {
			t.Errorf("expected UTC timezone, got %s", q.Get("timezone"))
		}
		w.Write([]byte(`{"daily":{"time":["2024-01-01"]}}`))
	}))
	defer srv.Close()

	c := NewOpenMeteoClient(srv.Client(), 5*time.Second)
	c.archiveURL = srv.URL

	body, err := c.DailyTemperatures(context.Background(), 48.8566, 2.3522, "2024-01-01", "2024-01-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"daily":{"time":["2024-01-01"]}}` {
		t.Fatalf("payload altered: %s", body)
	}
}
