package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-rider/internal/ride"
	"github.com/i474232898/weather-rider/internal/route"
	"github.com/i474232898/weather-rider/internal/store"
	"github.com/i474232898/weather-rider/internal/weather"
	"github.com/i474232898/weather-rider/internal/web"
)

type fakeResolver struct{}

func (fakeResolver) Resolve(ctx context.Context, loc weather.Location) (weather.Location, error) {
	if loc.HasCoords() {
		return loc, nil
	}
	coords := map[string][2]float64{
		"nairobi": {-1.2864, 36.8172},
		"nakuru":  {-0.3031, 36.0800},
	}
	c, ok := coords[strings.ToLower(loc.City)]
	if !ok {
		return weather.Location{}, weather.ErrCityNotFound
	}
	out := weather.Location{City: loc.City, Country: "KE", Name: loc.City + ", KE"}
	out.Lat, out.Lon = &c[0], &c[1]
	return out, nil
}

type fakeProvider struct {
	err error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Current(ctx context.Context, loc weather.Location) (weather.Current, error) {
	if p.err != nil {
		return weather.Current{}, p.err
	}
	return weather.Current{
		Location:     loc,
		Timestamp:    time.Now().UTC(),
		TemperatureC: 21,
		FeelsLikeC:   20,
		WindSpeedMS:  3,
		Code:         800,
		CodeKind:     weather.CodeOWM,
		Description:  "clear sky",
		Condition:    weather.ConditionClear,
	}, nil
}

func (p *fakeProvider) Forecast(ctx context.Context, loc weather.Location) (weather.Report, error) {
	cur, err := p.Current(ctx, loc)
	if err != nil {
		return weather.Report{}, err
	}
	start := time.Now().UTC().Truncate(time.Hour)
	hourly := make([]weather.HourlyPoint, 48)
	for i := range hourly {
		hourly[i] = weather.HourlyPoint{
			Time:          start.Add(time.Duration(i) * time.Hour),
			TemperatureC:  20,
			PrecipProbPct: 10,
			Code:          800,
			CodeKind:      weather.CodeOWM,
		}
	}
	return weather.Report{
		Location: loc,
		Current:  cur,
		Hourly:   hourly,
		Daily:    weather.AggregateDaily(hourly, time.UTC),
		Provider: "fake",
	}, nil
}

func newTestApp(t *testing.T, provider weather.Provider) *fiber.App {
	t.Helper()

	renderer, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	svc := weather.NewService(store.NewMemoryStore(10, time.Hour), provider)
	routes := route.NewPlanner(nil, route.DefaultSpeedKmh)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, Deps{
		Weather:     svc,
		Resolver:    fakeResolver{},
		Routes:      routes,
		Rides:       ride.NewPlanner(fakeResolver{}, svc, routes, ride.DefaultThresholds()),
		Renderer:    renderer,
		Prefs:       web.NewPrefs("0123456789abcdef0123456789abcdef"),
		DefaultCity: "Nairobi",
	})
	return app
}

func get(t *testing.T, app *fiber.App, target string, cookies ...*http.Cookie) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("GET %s: %v", target, err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestAPIStatusCodes(t *testing.T) {
	app := newTestApp(t, &fakeProvider{})

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"health", "/health", http.StatusOK},
		{"current by city", "/api/v1/weather/current?q=Nairobi", http.StatusOK},
		{"current by coords", "/api/v1/weather/current?lat=-1.5&lon=36.9", http.StatusOK},
		{"current missing query", "/api/v1/weather/current", http.StatusBadRequest},
		{"current lat without lon", "/api/v1/weather/current?lat=10", http.StatusBadRequest},
		{"current bad latitude", "/api/v1/weather/current?lat=100&lon=10", http.StatusBadRequest},
		{"current unknown city", "/api/v1/weather/current?q=Atlantis", http.StatusNotFound},
		{"hourly default", "/api/v1/weather/hourly?q=Nairobi", http.StatusOK},
		{"hourly out of range", "/api/v1/weather/hourly?q=Nairobi&hours=49", http.StatusBadRequest},
		{"latest missing country", "/api/v1/weather/latest?city=Nairobi", http.StatusBadRequest},
		{"latest nothing stored", "/api/v1/weather/latest?city=Paris&country=FR", http.StatusNotFound},
		{"history missing range", "/api/v1/weather/history?city=Nairobi&country=KE", http.StatusBadRequest},
		{"route", "/api/v1/route?from=Nairobi&to=Nakuru", http.StatusOK},
		{"route missing to", "/api/v1/route?from=Nairobi", http.StatusBadRequest},
		{"route NaN coordinates", "/api/v1/route?from=NaN,0&to=Nairobi", http.StatusBadRequest},
		{"ride", "/api/v1/ride?from=Nairobi&to=Nakuru", http.StatusOK},
		{"ride missing from", "/api/v1/ride", http.StatusBadRequest},
		{"ride bad depart", "/api/v1/ride?from=Nairobi&depart=tomorrow", http.StatusBadRequest},
		{"ride unknown destination", "/api/v1/ride?from=Nairobi&to=Atlantis", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, app, tt.target)
			if resp.StatusCode != tt.want {
				t.Fatalf("expected status %d, got %d: %s", tt.want, resp.StatusCode, body)
			}
		})
	}
}

func TestProviderErrorsMapToBadGateway(t *testing.T) {
	app := newTestApp(t, &fakeProvider{err: weather.ErrInvalidAPIKey})

	resp, body := get(t, app, "/api/v1/weather/current?q=Nairobi")
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	var payload struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.Error || payload.Message == "" {
		t.Errorf("unexpected payload %+v", payload)
	}
}

func TestCurrentIsRecordedInHistory(t *testing.T) {
	app := newTestApp(t, &fakeProvider{})

	if resp, body := get(t, app, "/api/v1/weather/current?q=Nairobi"); resp.StatusCode != http.StatusOK {
		t.Fatalf("current: %d %s", resp.StatusCode, body)
	}

	resp, body := get(t, app, "/api/v1/weather/latest?city=Nairobi&country=KE")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("latest: %d %s", resp.StatusCode, body)
	}

	from := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	to := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	resp, body = get(t, app, "/api/v1/weather/history?city=Nairobi&country=KE&from="+from+"&to="+to)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history: %d %s", resp.StatusCode, body)
	}
	var payload struct {
		Snapshots []weather.Snapshot `json:"snapshots"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Snapshots) != 1 {
		t.Errorf("expected 1 snapshot, got %d", len(payload.Snapshots))
	}
}

func TestHourlyWindow(t *testing.T) {
	app := newTestApp(t, &fakeProvider{})

	resp, body := get(t, app, "/api/v1/weather/hourly?q=Nairobi&hours=5")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("hourly: %d %s", resp.StatusCode, body)
	}
	var payload struct {
		Hours []weather.HourlyPoint `json:"hours"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Hours) != 5 {
		t.Errorf("expected 5 hours, got %d", len(payload.Hours))
	}
}

func TestRidePlanJSON(t *testing.T) {
	app := newTestApp(t, &fakeProvider{})

	resp, body := get(t, app, "/api/v1/ride?from=Nairobi&to=Nakuru&steps=3")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ride: %d %s", resp.StatusCode, body)
	}
	var plan ride.Plan
	if err := json.Unmarshal([]byte(body), &plan); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if plan.ID == "" || plan.Route == nil || !plan.Route.Estimated {
		t.Errorf("unexpected plan %+v", plan)
	}
	if len(plan.Timeline) != 3 {
		t.Errorf("expected 3 checkpoints, got %d", len(plan.Timeline))
	}
}

func TestPageRemembersLastCity(t *testing.T) {
	app := newTestApp(t, &fakeProvider{})

	// No query and no cookie: default city, nothing remembered.
	resp, body := get(t, app, "/")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Nairobi, KE") {
		t.Fatalf("default page: %d", resp.StatusCode)
	}
	if len(resp.Cookies()) != 0 {
		t.Errorf("default city should not be remembered")
	}

	resp, body = get(t, app, "/?from=Nakuru")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Nakuru, KE") {
		t.Fatalf("search page: %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	cookies := resp.Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected last city cookie, got %d", len(cookies))
	}

	resp, body = get(t, app, "/", cookies[0])
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `value="Nakuru"`) {
		t.Errorf("remembered city not used: %d", resp.StatusCode)
	}
}

func TestPageErrors(t *testing.T) {
	app := newTestApp(t, &fakeProvider{})

	resp, body := get(t, app, "/?from=Atlantis")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "City not found") {
		t.Errorf("error banner missing")
	}
	if len(resp.Cookies()) != 0 {
		t.Errorf("failed search should not be remembered")
	}
}
