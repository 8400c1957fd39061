package weather

import (
	"fmt"
	"strings"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// CodeKind tells which numbering scheme a raw condition code belongs to.
type CodeKind string

const (
	// CodeOWM is an OpenWeather condition id (200-804).
	CodeOWM CodeKind = "owm"
	// CodeWMO is a WMO weather interpretation code as returned by Open-Meteo.
	CodeWMO CodeKind = "wmo"
)

// Location represents a place the rider starts from or heads to.
// Either City or both coordinates must be set.
type Location struct {
	City    string   `json:"city,omitempty"`
	Country string   `json:"country,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`

	// Name is the display name resolved by a geocoder or provider.
	Name string `json:"name,omitempty"`
}

// NewCoordLocation builds a Location from a coordinate pair.
func NewCoordLocation(lat, lon float64) Location {
	return Location{Lat: &lat, Lon: &lon}
}

// HasCoords reports whether both latitude and longitude are known.
func (l Location) HasCoords() bool {
	return l.Lat != nil && l.Lon != nil
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	if l.City != "" {
		return strings.ToLower(l.City) + ":" + strings.ToLower(l.Country)
	}
	if l.HasCoords() {
		return fmt.Sprintf("%.4f,%.4f", *l.Lat, *l.Lon)
	}
	return ""
}

// DisplayName returns the best human readable label for the location.
func (l Location) DisplayName() string {
	switch {
	case l.Name != "":
		return l.Name
	case l.City != "" && l.Country != "":
		return l.City + ", " + l.Country
	case l.City != "":
		return l.City
	case l.HasCoords():
		return fmt.Sprintf("%.3f, %.3f", *l.Lat, *l.Lon)
	}
	return "Unknown location"
}

// Current is the normalized current-conditions reading.
type Current struct {
	Location     Location  `json:"location"`
	Timestamp    time.Time `json:"timestamp"` // always UTC
	TemperatureC float64   `json:"temperatureC"`
	FeelsLikeC   float64   `json:"feelsLikeC"`
	HumidityPct  float64   `json:"humidityPercent"`
	WindSpeedMS  float64   `json:"windSpeedMs"`
	PressureHpa  float64   `json:"pressureHpa"`
	PrecipMm     float64   `json:"precipMm"`
	Condition    Condition `json:"condition"`
	Code         int       `json:"code"`
	CodeKind     CodeKind  `json:"codeKind"`
	Description  string    `json:"description"`
	Icon         string    `json:"icon"`
}

// HourlyPoint is a single step of an hourly (or 3-hourly) forecast.
type HourlyPoint struct {
	Time          time.Time `json:"time"`
	TemperatureC  float64   `json:"temperatureC"`
	PrecipProbPct float64   `json:"precipProbabilityPercent"`
	PrecipMm      float64   `json:"precipMm"`
	WindSpeedMS   float64   `json:"windSpeedMs"`
	Code          int       `json:"code"`
	CodeKind      CodeKind  `json:"codeKind"`
}

// Condition returns the normalized condition of the hourly point.
func (h HourlyPoint) Condition() Condition {
	return ConditionOf(h.CodeKind, h.Code)
}

// DailyPoint summarizes one forecast day.
type DailyPoint struct {
	Date          time.Time `json:"date"`
	MinC          float64   `json:"minC"`
	MaxC          float64   `json:"maxC"`
	PrecipProbPct float64   `json:"precipProbabilityPercent"`
	Code          int       `json:"code"`
	CodeKind      CodeKind  `json:"codeKind"`
}

// Report bundles everything a provider knows about a location.
// Hourly and Daily are ordered by time ascending.
type Report struct {
	Location  Location      `json:"location"`
	Current   Current       `json:"current"`
	Hourly    []HourlyPoint `json:"hourly"`
	Daily     []DailyPoint  `json:"daily"`
	Provider  string        `json:"provider"`
	FetchedAt time.Time     `json:"fetchedAt"`

	// UTCOffsetSeconds is the location's offset from UTC, used for local display.
	UTCOffsetSeconds int `json:"utcOffsetSeconds"`
}

// Zone returns a fixed zone for the report's UTC offset.
func (r Report) Zone() *time.Location {
	if r.UTCOffsetSeconds == 0 {
		return time.UTC
	}
	return time.FixedZone("", r.UTCOffsetSeconds)
}

// Snapshot is a stored current reading used for history queries.
type Snapshot struct {
	Location  Location  `json:"location"`
	Timestamp time.Time `json:"timestamp"` // always UTC
	Current   Current   `json:"current"`
	Provider  string    `json:"provider"`
}
