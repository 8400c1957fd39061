package web

import (
	"fmt"
	"html/template"
	"math"

	"github.com/i474232898/weather-rider/internal/chart"
	"github.com/i474232898/weather-rider/internal/ride"
	"github.com/i474232898/weather-rider/internal/weather"
)

const (
	chartWidth  = 480
	chartHeight = 140
)

// Query is the search form state.
type Query struct {
	From string
	To   string
}

// Card is the current-conditions card.
type Card struct {
	City        string
	Date        string
	Temp        string
	TempF       string
	Description string
	Icon        string
	FeelsLike   string
	Humidity    string
	Wind        string
	Pressure    string
}

type HourRow struct {
	Time string
	Icon string
	Temp string
	Rain string
	Wind string
}

type DayRow struct {
	Day  string
	Icon string
	Min  string
	Max  string
	Rain string
}

type CheckpointRow struct {
	Progress string
	Time     string
	Distance string
	Icon     string
	Temp     string
	Rain     string
}

// Page is the view model of the index template.
type Page struct {
	Query    Query
	Error    string
	// Gradient comes from a fixed table, never from user input.
	Gradient template.CSS

	HasPlan    bool
	Card       Card
	Hours      []HourRow
	Days       []DayRow
	TempChart  template.HTML
	RainChart  template.HTML
	Gear       []string
	Advisories []ride.Advisory
	Packing    []string
	Timeline   []CheckpointRow
	Route      string
	Warnings   []string
}

// NewPage builds the view model. plan may be nil when only the form or an
// error is shown.
func NewPage(q Query, plan *ride.Plan, errMsg string) Page {
	p := Page{
		Query:    q,
		Error:    errMsg,
		Gradient: template.CSS(weather.DefaultGradient),
	}
	if plan == nil {
		return p
	}

	p.HasPlan = true
	p.Gradient = template.CSS(plan.Gradient)
	p.Gear = plan.Gear
	p.Advisories = plan.Advisories
	p.Packing = plan.Packing
	p.Warnings = plan.Warnings

	zone := plan.Report.Zone()
	cur := plan.Report.Current
	p.Card = Card{
		City:        plan.From.DisplayName(),
		Date:        localTime(cur.Timestamp, zone).Format(DateLayout),
		Temp:        weather.FormatTemp(cur.TemperatureC),
		TempF:       weather.FormatTempF(cur.TemperatureC),
		Description: cur.Description,
		Icon:        cur.Icon,
		FeelsLike:   weather.FormatTemp(cur.FeelsLikeC),
		Humidity:    fmt.Sprintf("%.0f%%", cur.HumidityPct),
		Wind:        weather.FormatWind(cur.WindSpeedMS),
		Pressure:    fmt.Sprintf("%.0f hPa", cur.PressureHpa),
	}

	temps := chart.Series{Class: "chart-temp", Format: func(v float64) string { return fmt.Sprintf("%.0f°", v) }}
	rain := chart.Series{Class: "chart-rain", Format: func(v float64) string { return fmt.Sprintf("%.0f%%", v) }}
	for _, h := range plan.NextHours {
		label := localTime(h.Time, zone).Format("15:04")
		p.Hours = append(p.Hours, HourRow{
			Time: label,
			Icon: weather.Icon(h.CodeKind, h.Code),
			Temp: weather.FormatTemp(h.TemperatureC),
			Rain: fmt.Sprintf("%.0f%%", h.PrecipProbPct),
			Wind: weather.FormatWind(h.WindSpeedMS),
		})
		temps.Labels = append(temps.Labels, label)
		temps.Values = append(temps.Values, h.TemperatureC)
		rain.Labels = append(rain.Labels, label)
		rain.Values = append(rain.Values, h.PrecipProbPct)
	}
	p.TempChart = chart.Line(temps, chartWidth, chartHeight)
	p.RainChart = chart.Bars(rain, chartWidth, chartHeight)

	for _, d := range plan.Report.Daily {
		p.Days = append(p.Days, DayRow{
			Day:  d.Date.Format("Mon 2 Jan"),
			Icon: weather.Icon(d.CodeKind, d.Code),
			Min:  weather.FormatTemp(d.MinC),
			Max:  weather.FormatTemp(d.MaxC),
			Rain: fmt.Sprintf("%.0f%%", d.PrecipProbPct),
		})
	}

	for _, c := range plan.Timeline {
		row := CheckpointRow{
			Progress: fmt.Sprintf("%.0f%%", math.Round(c.Progress*100)),
			Time:     localTime(c.At, zone).Format("15:04"),
			Distance: fmt.Sprintf("%.1f km", c.DistanceKm),
			Icon:     "-",
			Temp:     "-",
			Rain:     "-",
		}
		if c.Weather != nil {
			row.Icon = weather.Icon(c.Weather.CodeKind, c.Weather.Code)
			row.Temp = weather.FormatTemp(c.Weather.TemperatureC)
			row.Rain = fmt.Sprintf("%.0f%%", c.Weather.PrecipProbPct)
		}
		p.Timeline = append(p.Timeline, row)
	}

	if plan.Route != nil && plan.To != nil {
		r := plan.Route
		p.Route = fmt.Sprintf("%s → %s: %.1f km, about %s", plan.From.DisplayName(), plan.To.DisplayName(),
			r.DistanceKm, formatDuration(r.DurationMin))
		if r.Estimated {
			p.Route += " (straight-line estimate)"
		}
	}

	return p
}

func formatDuration(minutes float64) string {
	m := int(math.Round(minutes))
	if m < 60 {
		return fmt.Sprintf("%d min", m)
	}
	return fmt.Sprintf("%dh %02dmin", m/60, m%60)
}
