package weather

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// MSToKmh converts metres per second to kilometres per hour.
func MSToKmh(ms float64) float64 {
	return ms * 3.6
}

// KmhToMS converts kilometres per hour to metres per second.
func KmhToMS(kmh float64) float64 {
	return kmh / 3.6
}

// CToF converts Celsius to Fahrenheit.
func CToF(c float64) float64 {
	return c*9/5 + 32
}

// FormatTemp renders a rounded Celsius temperature, e.g. "21°C".
func FormatTemp(c float64) string {
	r := math.Round(c)
	if r == 0 {
		// avoid "-0°C"
		r = 0
	}
	return fmt.Sprintf("%d°C", int(r))
}

// FormatTempF renders a Celsius temperature as rounded Fahrenheit, e.g. "70°F".
func FormatTempF(c float64) string {
	r := math.Round(CToF(c))
	if r == 0 {
		r = 0
	}
	return fmt.Sprintf("%d°F", int(r))
}

// FormatWind renders a wind speed given in m/s as km/h with one decimal.
func FormatWind(ms float64) string {
	return fmt.Sprintf("%.1f km/h", MSToKmh(ms))
}

// NextHours returns up to n points starting at the forecast step containing from.
// A step runs until the next point, the last one for an hour. Steps are taken
// from the series itself, so zones with half-hour offsets keep their current hour.
// The input must be sorted by time.
func NextHours(points []HourlyPoint, from time.Time, n int) []HourlyPoint {
	if n <= 0 || len(points) == 0 {
		return []HourlyPoint{}
	}

	i := sort.Search(len(points), func(i int) bool {
		return points[i].Time.After(from)
	})
	if i > 0 {
		step := time.Hour
		if i < len(points) {
			step = points[i].Time.Sub(points[i-1].Time)
		}
		if from.Sub(points[i-1].Time) < step {
			i--
		}
	}

	end := i + n
	if end > len(points) {
		end = len(points)
	}

	out := make([]HourlyPoint, end-i)
	copy(out, points[i:end])
	return out
}

// Nearest returns the hourly point closest to t. ok is false for an empty slice.
func Nearest(points []HourlyPoint, t time.Time) (HourlyPoint, bool) {
	if len(points) == 0 {
		return HourlyPoint{}, false
	}

	best := points[0]
	bestDiff := absDuration(points[0].Time.Sub(t))
	for _, p := range points[1:] {
		if d := absDuration(p.Time.Sub(t)); d < bestDiff {
			best = p
			bestDiff = d
		}
	}
	return best, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
