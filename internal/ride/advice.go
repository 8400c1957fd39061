package ride

import (
	"fmt"
	"math"

	"github.com/i474232898/weather-rider/internal/route"
	"github.com/i474232898/weather-rider/internal/weather"
)

// Level is the severity of an advisory.
type Level string

const (
	LevelInfo   Level = "info"
	LevelWarn   Level = "warn"
	LevelDanger Level = "danger"
)

// Advisory is a single piece of rider-facing advice.
type Advisory struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Thresholds tunes the advisory heuristics.
type Thresholds struct {
	RainProbPct    float64 `yaml:"rain_prob_pct" json:"rainProbPct"`
	WindMS         float64 `yaml:"wind_ms" json:"windMs"`
	WindKmh        float64 `yaml:"wind_kmh" json:"windKmh,omitempty"` // used when WindMS is unset
	HeatC          float64 `yaml:"heat_c" json:"heatC"`
	LookaheadHours int     `yaml:"lookahead_hours" json:"lookaheadHours"`

	// FreezeC is nil when unset, so an explicit 0°C is kept.
	FreezeC *float64 `yaml:"freeze_c" json:"freezeC"`
}

// DefaultThresholds returns the stock advisory thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RainProbPct:    30,
		WindMS:         10,
		FreezeC:        Celsius(2),
		HeatC:          32,
		LookaheadHours: 6,
	}
}

// Celsius returns a pointer for the optional FreezeC threshold.
func Celsius(c float64) *float64 {
	return &c
}

// withDefaults fills unset fields from DefaultThresholds.
func (t Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()
	if t.RainProbPct <= 0 {
		t.RainProbPct = d.RainProbPct
	}
	if t.WindMS <= 0 && t.WindKmh > 0 {
		t.WindMS = weather.KmhToMS(t.WindKmh)
	}
	if t.WindMS <= 0 {
		t.WindMS = d.WindMS
	}
	if t.FreezeC == nil {
		t.FreezeC = d.FreezeC
	}
	if t.HeatC <= 0 {
		t.HeatC = d.HeatC
	}
	if t.LookaheadHours <= 0 {
		t.LookaheadHours = d.LookaheadHours
	}
	return t
}

// outlook condenses the current reading and the next hours into extremes.
type outlook struct {
	minC, maxC  float64
	maxRainProb float64
	maxWindMS   float64
	wet         bool
	storm, mist bool
	snow, sunny bool
}

func outlookOf(cur weather.Current, next []weather.HourlyPoint) outlook {
	o := outlook{
		minC:      math.Min(cur.TemperatureC, cur.FeelsLikeC),
		maxC:      math.Max(cur.TemperatureC, cur.FeelsLikeC),
		maxWindMS: cur.WindSpeedMS,
		wet:       cur.PrecipMm > 0,
	}
	o.mark(cur.Condition)

	for _, h := range next {
		o.minC = math.Min(o.minC, h.TemperatureC)
		o.maxC = math.Max(o.maxC, h.TemperatureC)
		o.maxRainProb = math.Max(o.maxRainProb, h.PrecipProbPct)
		o.maxWindMS = math.Max(o.maxWindMS, h.WindSpeedMS)
		if h.PrecipMm > 0 {
			o.wet = true
		}
		o.mark(h.Condition())
	}
	return o
}

func (o *outlook) mark(c weather.Condition) {
	switch c {
	case weather.ConditionStorm:
		o.storm = true
		o.wet = true
	case weather.ConditionRain:
		o.wet = true
	case weather.ConditionMist:
		o.mist = true
	case weather.ConditionSnow:
		o.snow = true
	case weather.ConditionClear:
		o.sunny = true
	}
}

// Advisories derives threshold-based warnings for the ride.
// next holds the hourly points covering the ride window; r may be nil.
func Advisories(cur weather.Current, next []weather.HourlyPoint, r *route.Route, th Thresholds) []Advisory {
	th = th.withDefaults()
	o := outlookOf(cur, next)

	var out []Advisory

	if o.storm {
		out = append(out, Advisory{LevelDanger, "Thunderstorms forecast: consider postponing the ride."})
	}
	if o.minC < *th.FreezeC {
		out = append(out, Advisory{LevelDanger, fmt.Sprintf(
			"Near-freezing temperatures (down to %s): watch for ice on bridges and shaded roads.",
			weather.FormatTemp(o.minC))})
	}
	if o.maxRainProb > th.RainProbPct {
		out = append(out, Advisory{LevelWarn, fmt.Sprintf(
			"Rain likely (%.0f%%): expect wet road surfaces and longer braking distances.", o.maxRainProb)})
	} else if o.wet {
		out = append(out, Advisory{LevelWarn, "Precipitation reported: road surfaces may be wet."})
	}
	if o.snow {
		out = append(out, Advisory{LevelDanger, "Snow expected: roads may be slippery."})
	}
	if o.maxWindMS > th.WindMS {
		out = append(out, Advisory{LevelWarn, fmt.Sprintf(
			"Strong wind (%s): expect gusts on open and exposed sections.", weather.FormatWind(o.maxWindMS))})
	}
	if o.maxC > th.HeatC {
		out = append(out, Advisory{LevelWarn, fmt.Sprintf(
			"High temperatures (up to %s): take breaks and drink regularly.", weather.FormatTemp(o.maxC))})
	}
	if o.mist {
		out = append(out, Advisory{LevelWarn, "Reduced visibility: ride with lights on."})
	}
	if r != nil && r.Estimated {
		out = append(out, Advisory{LevelInfo, "Routing service unavailable: distance and time are straight-line estimates."})
	}

	if len(out) == 0 || (len(out) == 1 && out[0].Level == LevelInfo) {
		out = append(out, Advisory{LevelInfo, "Conditions look good for riding."})
	}
	return out
}

// Gear suggests clothing and equipment for the conditions.
func Gear(cur weather.Current, next []weather.HourlyPoint, th Thresholds) []string {
	th = th.withDefaults()
	o := outlookOf(cur, next)
	feels := cur.FeelsLikeC

	var gear []string
	switch {
	case feels <= 0:
		gear = append(gear, "Thermal base layer", "Insulated gloves", "Neck warmer")
	case feels <= 10:
		gear = append(gear, "Insulated jacket", "Full-finger gloves")
	case feels <= 18:
		gear = append(gear, "Light jacket or long sleeves")
	case feels < 28:
		gear = append(gear, "Breathable jersey")
	default:
		gear = append(gear, "Vented jacket", "Cooling vest", "Water bottle")
	}

	if o.wet || o.maxRainProb > th.RainProbPct {
		gear = append(gear, "Waterproof shell", "Overshoes")
	}
	if o.maxWindMS > th.WindMS {
		gear = append(gear, "Windproof layer")
	}
	if o.mist {
		gear = append(gear, "High-visibility vest")
	}
	if o.sunny && o.maxC > 15 {
		gear = append(gear, "Sunglasses")
	}
	return gear
}

// PackingList suggests what to bring based on weather extremes and ride length.
func PackingList(cur weather.Current, next []weather.HourlyPoint, daily []weather.DailyPoint, r *route.Route, th Thresholds) []string {
	th = th.withDefaults()
	o := outlookOf(cur, next)
	if len(daily) > 0 {
		o.minC = math.Min(o.minC, daily[0].MinC)
		o.maxC = math.Max(o.maxC, daily[0].MaxC)
	}

	items := []string{"Phone", "ID and payment card"}

	minutes := 0.0
	if r != nil {
		minutes = r.DurationMin
	}

	if minutes > 60 || o.maxC > th.HeatC {
		items = append(items, "Water bottle")
	}
	if minutes > 120 {
		items = append(items, "Snacks")
	}
	if minutes > 180 {
		items = append(items, "Power bank")
	}
	if o.wet || o.maxRainProb > th.RainProbPct {
		items = append(items, "Rain cover for bags")
	}
	if o.minC < 10 {
		items = append(items, "Spare gloves")
	}
	if o.maxC-o.minC >= 10 {
		items = append(items, "Extra layer for temperature swings")
	}
	if o.sunny && o.maxC > 20 {
		items = append(items, "Sunscreen")
	}
	if o.mist {
		items = append(items, "Spare light batteries")
	}
	return items
}
