package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-rider/internal/weather"
)

// API Docs: https://open-meteo.com/en/docs
var (
	openMeteoCurrentVars = []string{
		"temperature_2m",
		"apparent_temperature",
		"relative_humidity_2m",
		"wind_speed_10m",
		"surface_pressure",
		"precipitation",
		"weather_code",
	}
	openMeteoHourlyVars = []string{
		"temperature_2m",
		"precipitation_probability",
		"precipitation",
		"wind_speed_10m",
		"weather_code",
	}
	openMeteoDailyVars = []string{
		"weather_code",
		"temperature_2m_max",
		"temperature_2m_min",
		"precipitation_probability_max",
	}
)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// It needs coordinates; resolve city names with a geocoder first.
type OpenMeteoProvider struct {
	name         string
	baseURL      string
	forecastDays int
	client       *http.Client
	circuit      *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:         "openmeteo",
		baseURL:      "https://api.open-meteo.com/v1/forecast",
		forecastDays: 7,
		client:       client,
		circuit:      newBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	UTCOffset int     `json:"utc_offset_seconds"`
	Current   struct {
		Time                string  `json:"time"`
		Temperature         float64 `json:"temperature_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		RelativeHumidity    float64 `json:"relative_humidity_2m"`
		WindSpeed           float64 `json:"wind_speed_10m"`
		SurfacePressure     float64 `json:"surface_pressure"`
		Precipitation       float64 `json:"precipitation"`
		WeatherCode         int     `json:"weather_code"`
	} `json:"current"`
	Hourly struct {
		Time                     []string  `json:"time"`
		Temperature              []float64 `json:"temperature_2m"`
		PrecipitationProbability []float64 `json:"precipitation_probability"`
		Precipitation            []float64 `json:"precipitation"`
		WindSpeed                []float64 `json:"wind_speed_10m"`
		WeatherCode              []int     `json:"weather_code"`
	} `json:"hourly"`
	Daily struct {
		Time                        []string  `json:"time"`
		WeatherCode                 []int     `json:"weather_code"`
		TemperatureMax              []float64 `json:"temperature_2m_max"`
		TemperatureMin              []float64 `json:"temperature_2m_min"`
		PrecipitationProbabilityMax []float64 `json:"precipitation_probability_max"`
	} `json:"daily"`
}

func (p *OpenMeteoProvider) fetch(ctx context.Context, loc weather.Location, withForecast bool) (openMeteoPayload, error) {
	if !loc.HasCoords() {
		return openMeteoPayload{}, fmt.Errorf("openmeteo requires latitude and longitude")
	}

	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", *loc.Lat))
	values.Set("longitude", fmt.Sprintf("%f", *loc.Lon))
	values.Set("current", strings.Join(openMeteoCurrentVars, ","))
	if withForecast {
		values.Set("hourly", strings.Join(openMeteoHourlyVars, ","))
		values.Set("daily", strings.Join(openMeteoDailyVars, ","))
		values.Set("forecast_days", strconv.Itoa(p.forecastDays))
	}
	values.Set("timezone", "auto")
	values.Set("wind_speed_unit", "ms")
	values.Set("temperature_unit", "celsius")

	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
	resp, err := doRequest(ctx, p.client, p.circuit, u)
	if err != nil {
		return openMeteoPayload{}, err
	}
	defer resp.Body.Close()

	var payload openMeteoPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return openMeteoPayload{}, fmt.Errorf("decode openmeteo response: %w", err)
	}
	return payload, nil
}

func (p *OpenMeteoProvider) Current(ctx context.Context, loc weather.Location) (weather.Current, error) {
	payload, err := p.fetch(ctx, loc, false)
	if err != nil {
		return weather.Current{}, err
	}
	return p.mapCurrent(loc, payload, timezoneOf(payload.Timezone, payload.UTCOffset)), nil
}

func (p *OpenMeteoProvider) Forecast(ctx context.Context, loc weather.Location) (weather.Report, error) {
	payload, err := p.fetch(ctx, loc, true)
	if err != nil {
		return weather.Report{}, err
	}

	tz := timezoneOf(payload.Timezone, payload.UTCOffset)
	cur := p.mapCurrent(loc, payload, tz)

	h := payload.Hourly
	hourly := make([]weather.HourlyPoint, 0, len(h.Time))
	for i, ts := range h.Time {
		t, err := parseLocalTime(ts, tz)
		if err != nil {
			log.Printf("WARN: openmeteo: skipping hourly time %q: %v", ts, err)
			continue
		}
		hourly = append(hourly, weather.HourlyPoint{
			Time:          t.UTC(),
			TemperatureC:  floatAt(h.Temperature, i),
			PrecipProbPct: floatAt(h.PrecipitationProbability, i),
			PrecipMm:      floatAt(h.Precipitation, i),
			WindSpeedMS:   floatAt(h.WindSpeed, i),
			Code:          intAt(h.WeatherCode, i),
			CodeKind:      weather.CodeWMO,
		})
	}

	d := payload.Daily
	daily := make([]weather.DailyPoint, 0, len(d.Time))
	for i, ds := range d.Time {
		date, err := time.ParseInLocation("2006-01-02", ds, tz)
		if err != nil {
			log.Printf("WARN: openmeteo: skipping daily date %q: %v", ds, err)
			continue
		}
		daily = append(daily, weather.DailyPoint{
			Date:          date,
			MinC:          floatAt(d.TemperatureMin, i),
			MaxC:          floatAt(d.TemperatureMax, i),
			PrecipProbPct: floatAt(d.PrecipitationProbabilityMax, i),
			Code:          intAt(d.WeatherCode, i),
			CodeKind:      weather.CodeWMO,
		})
	}

	return weather.Report{
		Location:  cur.Location,
		Current:   cur,
		Hourly:    hourly,
		Daily:     daily,
		Provider:  p.name,
		FetchedAt: time.Now().UTC(),

		UTCOffsetSeconds: payload.UTCOffset,
	}, nil
}

func (p *OpenMeteoProvider) mapCurrent(loc weather.Location, payload openMeteoPayload, tz *time.Location) weather.Current {
	c := payload.Current

	ts, err := parseLocalTime(c.Time, tz)
	if err != nil {
		ts = time.Now()
	}

	icon, desc := weather.WMO(c.WeatherCode)

	return weather.Current{
		Location:     loc,
		Timestamp:    ts.UTC(),
		TemperatureC: c.Temperature,
		FeelsLikeC:   c.ApparentTemperature,
		HumidityPct:  c.RelativeHumidity,
		WindSpeedMS:  c.WindSpeed,
		PressureHpa:  c.SurfacePressure,
		PrecipMm:     c.Precipitation,
		Condition:    weather.ConditionFromWMO(c.WeatherCode),
		Code:         c.WeatherCode,
		CodeKind:     weather.CodeWMO,
		Description:  desc,
		Icon:         icon,
	}
}

// timezoneOf loads the IANA zone Open-Meteo reports. Without tzdata on the
// host it falls back to the fixed offset from the same response.
func timezoneOf(name string, offsetSeconds int) *time.Location {
	fixed := time.FixedZone(name, offsetSeconds)
	if name == "" {
		return fixed
	}
	tz, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("WARN: openmeteo: unknown timezone %s, using offset %ds: %v", name, offsetSeconds, err)
		return fixed
	}
	return tz
}

// Open-Meteo returns parallel arrays that may be shorter than the time axis
// when a variable is unavailable for a model.
func floatAt(xs []float64, i int) float64 {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}

func intAt(xs []int, i int) int {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}
