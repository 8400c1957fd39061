package ride

import (
	"time"

	"github.com/i474232898/weather-rider/internal/route"
	"github.com/i474232898/weather-rider/internal/weather"
)

// DefaultSteps is the number of checkpoints in a simulated ride.
const DefaultSteps = 5

// Checkpoint is one point of the simulated ride progress.
type Checkpoint struct {
	Progress   float64              `json:"progress"` // 0..1
	At         time.Time            `json:"at"`
	DistanceKm float64              `json:"distanceKm"`
	Weather    *weather.HourlyPoint `json:"weather,omitempty"`
}

// Timeline simulates the ride: steps checkpoints spread evenly from departure
// to arrival, each paired with the forecast hour nearest to it. The first half of
// the ride uses the origin forecast, the second half the destination forecast
// when one is available. Without a route only the departure checkpoint is returned.
func Timeline(origin, destination []weather.HourlyPoint, r *route.Route, depart time.Time, steps int) []Checkpoint {
	if steps <= 0 {
		steps = DefaultSteps
	}
	if r == nil || steps == 1 {
		return []Checkpoint{checkpoint(origin, 0, depart, 0)}
	}

	total := time.Duration(r.DurationMin * float64(time.Minute))
	out := make([]Checkpoint, 0, steps)
	for i := 0; i < steps; i++ {
		progress := float64(i) / float64(steps-1)
		at := depart.Add(time.Duration(progress * float64(total)))

		series := origin
		if progress > 0.5 && len(destination) > 0 {
			series = destination
		}
		out = append(out, checkpoint(series, progress, at, progress*r.DistanceKm))
	}
	return out
}

func checkpoint(series []weather.HourlyPoint, progress float64, at time.Time, km float64) Checkpoint {
	cp := Checkpoint{
		Progress:   progress,
		At:         at,
		DistanceKm: km,
	}
	if p, ok := weather.Nearest(series, at); ok {
		cp.Weather = &p
	}
	return cp
}
