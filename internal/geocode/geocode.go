package geocode

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/i474232898/weather-rider/internal/weather"
)

// ErrEmptyQuery is returned for a blank location query.
var ErrEmptyQuery = errors.New("please enter a city name")

// ErrInvalidCoordinates is returned for a "lat,lon" pair outside the valid range.
var ErrInvalidCoordinates = errors.New("coordinates out of range")

// Geocoder turns a free-text place name into a location with coordinates.
type Geocoder interface {
	Name() string
	Resolve(ctx context.Context, loc weather.Location) (weather.Location, error)
}

// ParseQuery interprets user input. "lat,lon" pairs become coordinate locations,
// "City, CC" is split into city and country, anything else is a bare city name.
func ParseQuery(q string) (weather.Location, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return weather.Location{}, ErrEmptyQuery
	}

	parts := strings.SplitN(q, ",", 2)
	if len(parts) == 2 {
		a := strings.TrimSpace(parts[0])
		b := strings.TrimSpace(parts[1])

		lat, errLat := strconv.ParseFloat(a, 64)
		lon, errLon := strconv.ParseFloat(b, 64)
		if errLat == nil && errLon == nil {
			if !finite(lat) || !finite(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
				return weather.Location{}, fmt.Errorf("%w: %s", ErrInvalidCoordinates, q)
			}
			return weather.NewCoordLocation(lat, lon), nil
		}

		return weather.Location{City: a, Country: b}, nil
	}

	return weather.Location{City: q}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Chain tries each geocoder in order and returns the first match.
type Chain []Geocoder

func (c Chain) Name() string {
	names := make([]string, 0, len(c))
	for _, g := range c {
		names = append(names, g.Name())
	}
	return strings.Join(names, ",")
}

// Resolve returns loc unchanged when it already has coordinates.
func (c Chain) Resolve(ctx context.Context, loc weather.Location) (weather.Location, error) {
	if loc.HasCoords() {
		return loc, nil
	}
	if loc.City == "" {
		return weather.Location{}, ErrEmptyQuery
	}
	if len(c) == 0 {
		return weather.Location{}, fmt.Errorf("no geocoder configured")
	}

	var lastErr error
	for _, g := range c {
		resolved, err := g.Resolve(ctx, loc)
		if err == nil {
			return resolved, nil
		}
		log.Printf("geocoder %s failed for %s: %v", g.Name(), loc.DisplayName(), err)
		lastErr = err
	}
	return weather.Location{}, lastErr
}
