package geocode

import (
	"context"
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-rider/internal/weather"
)

// Google resolves place names with the Google Geocoding API.
// The kelvins/geocoder package keeps the key in a package variable, so only
// one key can be active per process.
type Google struct{}

func NewGoogle(apiKey string) *Google {
	geocoder.ApiKey = apiKey
	return &Google{}
}

func (g *Google) Name() string {
	return "google-geocoding"
}

func (g *Google) Resolve(ctx context.Context, loc weather.Location) (weather.Location, error) {
	if err := ctx.Err(); err != nil {
		return weather.Location{}, err
	}

	address := geocoder.Address{
		City:    loc.City,
		Country: loc.Country,
	}

	point, err := geocoder.Geocoding(address)
	if err != nil {
		return weather.Location{}, fmt.Errorf("%w: google geocoding: %w", weather.ErrProviderUnavailable, err)
	}
	if point.Latitude == 0 && point.Longitude == 0 {
		return weather.Location{}, fmt.Errorf("%w: %s", weather.ErrCityNotFound, loc.City)
	}

	resolved := loc
	lat, lon := point.Latitude, point.Longitude
	resolved.Lat, resolved.Lon = &lat, &lon
	return resolved, nil
}
