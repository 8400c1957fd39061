package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/i474232898/weather-rider/internal/weather"
)

// API Docs: https://open-meteo.com/en/docs/geocoding-api
const openMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

// OpenMeteo resolves place names with the free Open-Meteo geocoding API.
type OpenMeteo struct {
	httpClient *http.Client
	baseURL    string
}

func NewOpenMeteo(client *http.Client) *OpenMeteo {
	return &OpenMeteo{
		httpClient: client,
		baseURL:    openMeteoGeocodingURL,
	}
}

func (g *OpenMeteo) Name() string {
	return "openmeteo-geocoding"
}

type openMeteoSearchResponse struct {
	Results []struct {
		Name        string  `json:"name"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		Country     string  `json:"country"`
		CountryCode string  `json:"country_code"`
		Admin1      string  `json:"admin1"`
	} `json:"results"`
}

func (g *OpenMeteo) Resolve(ctx context.Context, loc weather.Location) (weather.Location, error) {
	u, err := url.Parse(g.baseURL)
	if err != nil {
		return weather.Location{}, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("name", loc.City)
	q.Set("count", "1")
	q.Set("language", "en")
	q.Set("format", "json")
	if len(loc.Country) == 2 {
		q.Set("countryCode", strings.ToUpper(loc.Country))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return weather.Location{}, err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return weather.Location{}, fmt.Errorf("%w: geocoding request failed: %w", weather.ErrProviderUnavailable, err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return weather.Location{}, fmt.Errorf("%w: geocoding returned status %d: %s",
			weather.ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	var apiResp openMeteoSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return weather.Location{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(apiResp.Results) == 0 {
		return weather.Location{}, fmt.Errorf("%w: %s", weather.ErrCityNotFound, loc.City)
	}

	r := apiResp.Results[0]
	resolved := loc
	resolved.Lat = &r.Latitude
	resolved.Lon = &r.Longitude
	if resolved.Country == "" {
		resolved.Country = r.CountryCode
	}
	resolved.Name = r.Name
	if r.CountryCode != "" {
		resolved.Name = r.Name + ", " + r.CountryCode
	}
	return resolved, nil
}
