package weather

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCityNotFound is returned when a provider or geocoder does not know the location.
	ErrCityNotFound = errors.New("city not found")
	// ErrInvalidAPIKey is returned when the upstream rejects our credentials.
	ErrInvalidAPIKey = errors.New("invalid api key")
	// ErrProviderUnavailable wraps any other upstream failure.
	ErrProviderUnavailable = errors.New("weather provider unavailable")
)

// Provider abstracts a weather data source (e.g. OpenWeatherMap, Open-Meteo).
type Provider interface {
	Name() string
	Current(ctx context.Context, loc Location) (Current, error)
	Forecast(ctx context.Context, loc Location) (Report, error)
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
type Store interface {
	SaveSnapshot(loc Location, snapshot Snapshot)
	GetLatest(loc Location) (Snapshot, error)
	GetRange(loc Location, from, to time.Time) ([]Snapshot, error)
}
