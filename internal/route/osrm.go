package route

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-rider/internal/weather"
)

// DefaultOSRMBaseURL is the public OSRM demo server.
const DefaultOSRMBaseURL = "https://router.project-osrm.org"

var errNoRoute = errors.New("osrm returned no route")

// OSRMClient queries the OSRM HTTP route service.
type OSRMClient struct {
	httpClient *http.Client
	baseURL    string
	circuit    *gobreaker.CircuitBreaker
}

func NewOSRMClient(client *http.Client, baseURL string) *OSRMClient {
	if baseURL == "" {
		baseURL = DefaultOSRMBaseURL
	}
	return &OSRMClient{
		httpClient: client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "osrm",
			MaxRequests: 1,
			Interval:    1 * time.Minute,
			Timeout:     1 * time.Minute,
		}),
	}
}

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"` // metres
		Duration float64 `json:"duration"` // seconds
	} `json:"routes"`
}

func (c *OSRMClient) Route(ctx context.Context, from, to weather.Location) (Route, error) {
	if !from.HasCoords() || !to.HasCoords() {
		return Route{}, ErrMissingCoordinates
	}

	// OSRM wants lon,lat order.
	u := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		c.baseURL, *from.Lon, *from.Lat, *to.Lon, *to.Lat)

	result, err := c.circuit.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch: %w", err)
		}
		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		// OSRM answers 400 with a JSON code for "NoRoute" and friends.
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
			return nil, fmt.Errorf("osrm returned status %d", resp.StatusCode)
		}

		var apiResp osrmResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return apiResp, nil
	})
	if err != nil {
		return Route{}, err
	}

	apiResp := result.(osrmResponse)
	if apiResp.Code != "Ok" || len(apiResp.Routes) == 0 {
		return Route{}, fmt.Errorf("%w: %s %s", errNoRoute, apiResp.Code, apiResp.Message)
	}

	best := apiResp.Routes[0]
	return Route{
		From:        from,
		To:          to,
		DistanceKm:  best.Distance / 1000,
		DurationMin: best.Duration / 60,
		Source:      "osrm",
	}, nil
}
