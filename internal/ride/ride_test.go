package ride

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/weather-rider/internal/route"
	"github.com/i474232898/weather-rider/internal/weather"
)

var base = time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)

func series(n int, f func(i int) weather.HourlyPoint) []weather.HourlyPoint {
	out := make([]weather.HourlyPoint, n)
	for i := range out {
		p := f(i)
		p.Time = base.Add(time.Duration(i) * time.Hour)
		p.CodeKind = weather.CodeWMO
		out[i] = p
	}
	return out
}

func mild() weather.Current {
	return weather.Current{
		TemperatureC: 20,
		FeelsLikeC:   20,
		WindSpeedMS:  3,
		Condition:    weather.ConditionCloudy,
		Code:         3,
		CodeKind:     weather.CodeWMO,
	}
}

func hasText(advs []Advisory, sub string) bool {
	for _, a := range advs {
		if strings.Contains(a.Text, sub) {
			return true
		}
	}
	return false
}

func contains(items []string, want string) bool {
	for _, it := range items {
		if it == want {
			return true
		}
	}
	return false
}

func TestAdvisories(t *testing.T) {
	tests := []struct {
		name  string
		cur   func() weather.Current
		next  []weather.HourlyPoint
		route *route.Route
		want  []string
		level Level
	}{
		{
			name: "good conditions",
			cur:  mild,
			next: series(3, func(int) weather.HourlyPoint { return weather.HourlyPoint{TemperatureC: 20, Code: 3} }),
			want: []string{"Conditions look good"},
		},
		{
			name: "rain above threshold",
			cur:  mild,
			next: series(3, func(i int) weather.HourlyPoint {
				return weather.HourlyPoint{TemperatureC: 18, PrecipProbPct: float64(20 * i), Code: 3}
			}),
			want: []string{"Rain likely (40%)", "wet road surfaces"},
		},
		{
			name: "rain exactly at threshold is quiet",
			cur:  mild,
			next: series(1, func(int) weather.HourlyPoint { return weather.HourlyPoint{TemperatureC: 20, PrecipProbPct: 30, Code: 3} }),
			want: []string{"Conditions look good"},
		},
		{
			name: "freezing and windy",
			cur: func() weather.Current {
				c := mild()
				c.TemperatureC, c.FeelsLikeC, c.WindSpeedMS = 1, -3, 12
				return c
			},
			want: []string{"Near-freezing temperatures (down to -3°C)", "Strong wind (43.2 km/h)"},
		},
		{
			name: "storm",
			cur:  mild,
			next: series(2, func(i int) weather.HourlyPoint { return weather.HourlyPoint{TemperatureC: 22, Code: 95} }),
			want: []string{"Thunderstorms forecast"},
		},
		{
			name: "snow",
			cur:  mild,
			next: series(2, func(int) weather.HourlyPoint { return weather.HourlyPoint{TemperatureC: 3, Code: 71} }),
			want: []string{"Snow expected"},
		},
		{
			name: "fog",
			cur:  mild,
			next: series(2, func(int) weather.HourlyPoint { return weather.HourlyPoint{TemperatureC: 12, Code: 45} }),
			want: []string{"Reduced visibility"},
		},
		{
			name: "heat",
			cur:  mild,
			next: series(3, func(int) weather.HourlyPoint { return weather.HourlyPoint{TemperatureC: 34, Code: 0} }),
			want: []string{"High temperatures (up to 34°C)"},
		},
		{
			name:  "estimated route",
			cur:   mild,
			route: &route.Route{Estimated: true},
			want:  []string{"straight-line estimates", "Conditions look good"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Advisories(tt.cur(), tt.next, tt.route, Thresholds{})
			for _, w := range tt.want {
				if !hasText(got, w) {
					t.Errorf("expected advisory containing %q, got %+v", w, got)
				}
			}
		})
	}
}

func TestAdvisoriesCustomThreshold(t *testing.T) {
	next := series(1, func(int) weather.HourlyPoint { return weather.HourlyPoint{TemperatureC: 20, PrecipProbPct: 25, Code: 3} })
	got := Advisories(mild(), next, nil, Thresholds{RainProbPct: 20})
	if !hasText(got, "Rain likely (25%)") {
		t.Errorf("expected custom rain threshold to trigger, got %+v", got)
	}
}

func TestAdvisoriesQuietBranches(t *testing.T) {
	next := series(3, func(int) weather.HourlyPoint { return weather.HourlyPoint{TemperatureC: 20, Code: 3} })
	got := Advisories(mild(), next, nil, Thresholds{})
	for _, unwanted := range []string{"Snow expected", "Reduced visibility", "High temperatures", "Near-freezing"} {
		if hasText(got, unwanted) {
			t.Errorf("did not expect %q in %+v", unwanted, got)
		}
	}
}

func TestThresholdDefaults(t *testing.T) {
	cur := mild()
	cur.TemperatureC, cur.FeelsLikeC = 1, 1

	if got := Advisories(cur, nil, nil, Thresholds{}); !hasText(got, "Near-freezing") {
		t.Errorf("expected the default 2°C freeze threshold to trigger, got %+v", got)
	}
	if got := Advisories(cur, nil, nil, Thresholds{FreezeC: Celsius(0)}); hasText(got, "Near-freezing") {
		t.Errorf("an explicit 0°C freeze threshold should be kept, got %+v", got)
	}

	th := Thresholds{WindKmh: 18}.withDefaults()
	if th.WindMS != 5 {
		t.Errorf("expected 18 km/h to become 5 m/s, got %v", th.WindMS)
	}
	if th := (Thresholds{WindMS: 7, WindKmh: 18}).withDefaults(); th.WindMS != 7 {
		t.Errorf("WindMS should win over WindKmh, got %v", th.WindMS)
	}
}

func TestGear(t *testing.T) {
	tests := []struct {
		name  string
		feels float64
		wind  float64
		prob  float64
		want  []string
	}{
		{name: "freezing", feels: -2, want: []string{"Thermal base layer", "Insulated gloves"}},
		{name: "cool", feels: 8, want: []string{"Insulated jacket"}},
		{name: "mild", feels: 15, want: []string{"Light jacket or long sleeves"}},
		{name: "warm", feels: 24, want: []string{"Breathable jersey"}},
		{name: "hot", feels: 31, want: []string{"Vented jacket", "Water bottle"}},
		{name: "rainy", feels: 15, prob: 80, want: []string{"Waterproof shell"}},
		{name: "windy", feels: 15, wind: 14, want: []string{"Windproof layer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := mild()
			cur.FeelsLikeC = tt.feels
			cur.TemperatureC = tt.feels
			cur.WindSpeedMS = tt.wind
			next := series(2, func(int) weather.HourlyPoint {
				return weather.HourlyPoint{TemperatureC: tt.feels, PrecipProbPct: tt.prob, Code: 3}
			})
			got := Gear(cur, next, Thresholds{})
			for _, w := range tt.want {
				if !contains(got, w) {
					t.Errorf("expected %q in %v", w, got)
				}
			}
		})
	}
}

func TestPackingList(t *testing.T) {
	cur := mild()
	long := &route.Route{DurationMin: 200}

	got := PackingList(cur, nil, []weather.DailyPoint{{MinC: 5, MaxC: 21}}, long, Thresholds{})
	for _, w := range []string{"Phone", "Water bottle", "Snacks", "Power bank", "Spare gloves", "Extra layer for temperature swings"} {
		if !contains(got, w) {
			t.Errorf("expected %q in %v", w, got)
		}
	}

	short := PackingList(cur, nil, nil, &route.Route{DurationMin: 20}, Thresholds{})
	if contains(short, "Water bottle") || contains(short, "Snacks") {
		t.Errorf("short ride should not need water or snacks: %v", short)
	}
}

func TestTimeline(t *testing.T) {
	origin := series(6, func(i int) weather.HourlyPoint { return weather.HourlyPoint{TemperatureC: float64(i)} })
	dest := series(6, func(i int) weather.HourlyPoint { return weather.HourlyPoint{TemperatureC: float64(100 + i)} })
	r := &route.Route{DistanceKm: 120, DurationMin: 240}

	got := Timeline(origin, dest, r, base, 5)
	if len(got) != 5 {
		t.Fatalf("expected 5 checkpoints, got %d", len(got))
	}
	if got[0].Progress != 0 || got[4].Progress != 1 {
		t.Errorf("expected progress from 0 to 1, got %v..%v", got[0].Progress, got[4].Progress)
	}
	if got[2].DistanceKm != 60 || !got[2].At.Equal(base.Add(2*time.Hour)) {
		t.Errorf("unexpected midpoint %+v", got[2])
	}
	if got[0].Weather == nil || got[0].Weather.TemperatureC != 0 {
		t.Errorf("expected origin weather at departure, got %+v", got[0].Weather)
	}
	if got[4].Weather == nil || got[4].Weather.TemperatureC != 104 {
		t.Errorf("expected destination weather at arrival, got %+v", got[4].Weather)
	}

	single := Timeline(origin, nil, nil, base, 0)
	if len(single) != 1 || single[0].Progress != 0 {
		t.Errorf("expected a single departure checkpoint without route, got %+v", single)
	}
}

type fakeResolver struct{}

func (fakeResolver) Resolve(ctx context.Context, loc weather.Location) (weather.Location, error) {
	if loc.HasCoords() {
		return loc, nil
	}
	switch loc.City {
	case "Nairobi":
		lat, lon := -1.28, 36.82
		loc.Lat, loc.Lon = &lat, &lon
		return loc, nil
	case "Nakuru":
		lat, lon := -0.30, 36.07
		loc.Lat, loc.Lon = &lat, &lon
		return loc, nil
	}
	return weather.Location{}, weather.ErrCityNotFound
}

type fakeReporter struct {
	failFor string
}

func (f fakeReporter) Report(ctx context.Context, loc weather.Location) (weather.Report, error) {
	if loc.City == f.failFor {
		return weather.Report{}, errors.New("boom")
	}
	cur := mild()
	cur.Location = loc
	return weather.Report{
		Location: loc,
		Current:  cur,
		Hourly: series(24, func(i int) weather.HourlyPoint {
			return weather.HourlyPoint{TemperatureC: 20, PrecipProbPct: 50, Code: 61}
		}),
	}, nil
}

func TestPlannerBuild(t *testing.T) {
	p := NewPlanner(fakeResolver{}, fakeReporter{}, route.NewPlanner(nil, 50), Thresholds{})

	plan, err := p.Build(context.Background(), Request{From: "Nairobi", To: "Nakuru", Depart: base})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.ID == "" {
		t.Error("expected a plan id")
	}
	if plan.Route == nil || !plan.Route.Estimated {
		t.Fatalf("expected an estimated route, got %+v", plan.Route)
	}
	if plan.DestinationReport == nil {
		t.Error("expected destination weather")
	}
	if len(plan.NextHours) != 12 {
		t.Errorf("expected 12 next hours, got %d", len(plan.NextHours))
	}
	if len(plan.Timeline) != DefaultSteps {
		t.Errorf("expected %d checkpoints, got %d", DefaultSteps, len(plan.Timeline))
	}
	if !hasText(plan.Advisories, "Rain likely (50%)") {
		t.Errorf("expected a rain advisory, got %+v", plan.Advisories)
	}
	if plan.Gradient != weather.Gradient(weather.CodeWMO, 3) {
		t.Errorf("unexpected gradient %q", plan.Gradient)
	}
}

func TestPlannerBuildErrors(t *testing.T) {
	p := NewPlanner(fakeResolver{}, fakeReporter{failFor: "Nakuru"}, route.NewPlanner(nil, 50), Thresholds{})

	if _, err := p.Build(context.Background(), Request{From: "  "}); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
	if _, err := p.Build(context.Background(), Request{From: "Atlantis"}); !errors.Is(err, weather.ErrCityNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	plan, err := p.Build(context.Background(), Request{From: "Nairobi", To: "Nakuru"})
	if err != nil {
		t.Fatalf("destination weather failure should not fail the plan: %v", err)
	}
	if plan.DestinationReport != nil || len(plan.Warnings) != 1 {
		t.Errorf("expected a warning instead of destination weather, got %+v", plan.Warnings)
	}

	if _, err := p.Build(context.Background(), Request{From: "Nakuru"}); err == nil {
		t.Error("expected origin weather failure to fail the plan")
	}
}
