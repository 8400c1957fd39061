package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-rider/internal/weather"
)

var (
	errBadRequest   = errors.New("bad request")
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// newBreaker returns the circuit breaker shared by every call of one provider.
// Client errors (rejected request, unknown city, bad key) do not count as failures.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, errBadRequest) ||
				errors.Is(err, weather.ErrCityNotFound) ||
				errors.Is(err, weather.ErrInvalidAPIKey)
		},
	})
}

// doRequest executes a single GET through the circuit breaker and maps
// upstream status codes to the weather package's sentinel errors.
// On success the caller owns the response body.
func doRequest(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	rawURL string,
) (*http.Response, error) {
	if client == nil {
		return nil, errNoHTTPClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusBadRequest:
			return nil, errBadRequest
		case resp.StatusCode == http.StatusNotFound:
			return nil, weather.ErrCityNotFound
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, weather.ErrInvalidAPIKey
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, errRateLimited
		case resp.StatusCode >= 500:
			return nil, errServerError
		default:
			return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
		}
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w: %v", weather.ErrProviderUnavailable, errCircuitOpen, err)
		}
		if errors.Is(err, weather.ErrCityNotFound) || errors.Is(err, weather.ErrInvalidAPIKey) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", weather.ErrProviderUnavailable, err)
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

// parseLocalTime parses Open-Meteo's "2006-01-02T15:04" timestamps in the
// location's own timezone.
func parseLocalTime(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02T15:04", s, loc)
}
