package route

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/i474232898/weather-rider/internal/weather"
)

// ErrMissingCoordinates is returned when either end of a route is not geocoded.
var ErrMissingCoordinates = errors.New("route endpoints need coordinates")

// Route is a driving route summary between two locations.
type Route struct {
	From        weather.Location `json:"from"`
	To          weather.Location `json:"to"`
	DistanceKm  float64          `json:"distanceKm"`
	DurationMin float64          `json:"durationMin"`
	// Estimated is true when the routing API failed and the haversine fallback was used.
	Estimated bool   `json:"estimated"`
	Source    string `json:"source"`
}

// Router computes a driving route between two located points.
type Router interface {
	Route(ctx context.Context, from, to weather.Location) (Route, error)
}

// Estimate returns a straight-line route at a constant average speed.
func Estimate(from, to weather.Location, speedKmh float64) (Route, error) {
	if !from.HasCoords() || !to.HasCoords() {
		return Route{}, ErrMissingCoordinates
	}
	if speedKmh <= 0 {
		speedKmh = DefaultSpeedKmh
	}

	km := Haversine(*from.Lat, *from.Lon, *to.Lat, *to.Lon)
	return Route{
		From:        from,
		To:          to,
		DistanceKm:  km,
		DurationMin: km / speedKmh * 60,
		Estimated:   true,
		Source:      "haversine",
	}, nil
}

// Planner asks the routing API first and falls back to Estimate on any failure.
type Planner struct {
	router   Router
	speedKmh float64
}

// NewPlanner creates a Planner. router may be nil to always estimate.
func NewPlanner(router Router, fallbackSpeedKmh float64) *Planner {
	return &Planner{
		router:   router,
		speedKmh: fallbackSpeedKmh,
	}
}

func (p *Planner) Plan(ctx context.Context, from, to weather.Location) (Route, error) {
	if !from.HasCoords() || !to.HasCoords() {
		return Route{}, ErrMissingCoordinates
	}

	if p.router != nil {
		r, err := p.router.Route(ctx, from, to)
		if err == nil {
			return r, nil
		}
		if ctx.Err() != nil {
			return Route{}, fmt.Errorf("route: %w", ctx.Err())
		}
		log.Printf("routing failed for %s -> %s, using haversine estimate: %v",
			from.DisplayName(), to.DisplayName(), err)
	}

	return Estimate(from, to, p.speedKmh)
}
