package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-rider/internal/weather"
)

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5",
		client:  client,
		circuit: newBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owmCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmCurrentPayload struct {
	Dt    int64  `json:"dt"`
	Name  string `json:"name"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneH   float64 `json:"1h"`
		ThreeH float64 `json:"3h"`
	} `json:"rain"`
	Weather []owmCondition `json:"weather"`
}

type owmForecastPayload struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Pop  float64 `json:"pop"`
		Rain struct {
			ThreeH float64 `json:"3h"`
		} `json:"rain"`
		Weather []owmCondition `json:"weather"`
	} `json:"list"`
	City struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		Timezone int    `json:"timezone"`
		Coord    struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
	} `json:"city"`
}

func (p *OpenWeatherProvider) query(loc weather.Location) (url.Values, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured: %w", weather.ErrInvalidAPIKey)
	}

	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	switch {
	case loc.HasCoords():
		values.Set("lat", fmt.Sprintf("%f", *loc.Lat))
		values.Set("lon", fmt.Sprintf("%f", *loc.Lon))
	case loc.City != "":
		// city,country
		q := loc.City
		if loc.Country != "" {
			q = fmt.Sprintf("%s,%s", loc.City, loc.Country)
		}
		values.Set("q", q)
	default:
		return nil, fmt.Errorf("openweather requires a city or coordinates")
	}
	return values, nil
}

func (p *OpenWeatherProvider) get(ctx context.Context, path string, values url.Values, out interface{}) error {
	u := fmt.Sprintf("%s/%s?%s", p.baseURL, path, values.Encode())
	resp, err := doRequest(ctx, p.client, p.circuit, u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode openweather %s: %w", path, err)
	}
	return nil
}

func (p *OpenWeatherProvider) Current(ctx context.Context, loc weather.Location) (weather.Current, error) {
	values, err := p.query(loc)
	if err != nil {
		return weather.Current{}, err
	}

	var payload owmCurrentPayload
	if err := p.get(ctx, "weather", values, &payload); err != nil {
		return weather.Current{}, err
	}

	return p.mapCurrent(loc, payload), nil
}

func (p *OpenWeatherProvider) mapCurrent(loc weather.Location, payload owmCurrentPayload) weather.Current {
	ts := time.Unix(payload.Dt, 0).UTC()
	if payload.Dt == 0 {
		ts = time.Now().UTC()
	}

	precip := payload.Rain.OneH
	if precip == 0 {
		precip = payload.Rain.ThreeH
	}

	var cond owmCondition
	if len(payload.Weather) > 0 {
		cond = payload.Weather[0]
	}

	resolved := loc
	if payload.Name != "" {
		resolved.Name = payload.Name
		if payload.Sys.Country != "" {
			resolved.Name = payload.Name + ", " + payload.Sys.Country
		}
	}
	if !resolved.HasCoords() && (payload.Coord.Lat != 0 || payload.Coord.Lon != 0) {
		lat, lon := payload.Coord.Lat, payload.Coord.Lon
		resolved.Lat, resolved.Lon = &lat, &lon
	}

	desc := cond.Description
	if desc == "" {
		desc = "-"
	}

	return weather.Current{
		Location:     resolved,
		Timestamp:    ts,
		TemperatureC: payload.Main.Temp,
		FeelsLikeC:   payload.Main.FeelsLike,
		HumidityPct:  payload.Main.Humidity,
		WindSpeedMS:  payload.Wind.Speed,
		PressureHpa:  payload.Main.Pressure,
		PrecipMm:     precip,
		Condition:    weather.ConditionFromOWM(cond.ID),
		Code:         cond.ID,
		CodeKind:     weather.CodeOWM,
		Description:  desc,
		Icon:         weather.Icon(weather.CodeOWM, cond.ID),
	}
}

// Forecast fetches current conditions and the 5 day / 3 hour forecast concurrently.
// The 3-hour steps are used as hourly points and folded into daily summaries
// using the city's UTC offset.
func (p *OpenWeatherProvider) Forecast(ctx context.Context, loc weather.Location) (weather.Report, error) {
	values, err := p.query(loc)
	if err != nil {
		return weather.Report{}, err
	}

	var (
		wg          sync.WaitGroup
		current     owmCurrentPayload
		forecast    owmForecastPayload
		currentErr  error
		forecastErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		currentErr = p.get(ctx, "weather", values, &current)
	}()
	go func() {
		defer wg.Done()
		forecastErr = p.get(ctx, "forecast", values, &forecast)
	}()
	wg.Wait()

	if currentErr != nil {
		return weather.Report{}, currentErr
	}
	if forecastErr != nil {
		return weather.Report{}, forecastErr
	}

	cur := p.mapCurrent(loc, current)

	hourly := make([]weather.HourlyPoint, 0, len(forecast.List))
	for _, item := range forecast.List {
		code := 0
		if len(item.Weather) > 0 {
			code = item.Weather[0].ID
		}
		hourly = append(hourly, weather.HourlyPoint{
			Time:          time.Unix(item.Dt, 0).UTC(),
			TemperatureC:  item.Main.Temp,
			PrecipProbPct: item.Pop * 100,
			PrecipMm:      item.Rain.ThreeH,
			WindSpeedMS:   item.Wind.Speed,
			Code:          code,
			CodeKind:      weather.CodeOWM,
		})
	}

	zone := time.FixedZone(forecast.City.Name, forecast.City.Timezone)

	return weather.Report{
		Location:  cur.Location,
		Current:   cur,
		Hourly:    hourly,
		Daily:     weather.AggregateDaily(hourly, zone),
		Provider:  p.name,
		FetchedAt: time.Now().UTC(),

		UTCOffsetSeconds: forecast.City.Timezone,
	}, nil
}
