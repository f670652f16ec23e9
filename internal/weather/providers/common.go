package providers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/avelko/weather-records/internal/weather"
)

// httpConfig bundles the shared HTTP client and the outbound rate limiter.
// The limiter may be nil when a client has no quota to respect.
type httpConfig struct {
	client  *http.Client
	limiter *rate.Limiter
}

// doRequest issues a single attempt through the circuit breaker. Upstream
// failures are never retried; a non-2xx response is returned as a
// *weather.ProviderError carrying the status code and body text.
func doRequest(ctx context.Context, cfg httpConfig, cb *gobreaker.CircuitBreaker, providerName string, req *http.Request) ([]byte, error) {
	if cfg.limiter != nil {
		if err := cfg.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &weather.ProviderError{
				Provider:   providerName,
				StatusCode: resp.StatusCode,
				Body:       strings.TrimSpace(string(body)),
			}
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}
