package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-rider/internal/geocode"
	"github.com/i474232898/weather-rider/internal/ride"
	"github.com/i474232898/weather-rider/internal/store"
	"github.com/i474232898/weather-rider/internal/weather"
	"github.com/i474232898/weather-rider/internal/web"
)

var validate = validator.New()

const defaultHours = 12

// WeatherService is the part of weather.Service the handlers use.
type WeatherService interface {
	Current(ctx context.Context, loc weather.Location) (weather.Current, error)
	Report(ctx context.Context, loc weather.Location) (weather.Report, error)
	GetLatest(loc weather.Location) (weather.Snapshot, error)
	GetRange(loc weather.Location, from, to time.Time) ([]weather.Snapshot, error)
}

// RidePlanner builds a full ride plan.
type RidePlanner interface {
	Build(ctx context.Context, req ride.Request) (*ride.Plan, error)
}

// Deps are the collaborators of the HTTP handlers.
type Deps struct {
	Weather  WeatherService
	Resolver ride.Resolver
	Routes   ride.RoutePlanner
	Rides    RidePlanner
	Renderer *web.Renderer
	Prefs    *web.Prefs

	// DefaultCity is used by the page when neither the query nor the cookie names a city.
	DefaultCity string
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-rider",
		})
	})

	app.Get("/", d.page)

	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		var q locationQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}
		loc, err := d.resolve(c.UserContext(), q.text())
		if err != nil {
			return err
		}

		cur, err := d.Weather.Current(c.UserContext(), loc)
		if err != nil {
			return err
		}
		return c.JSON(cur)
	})

	v1.Get("/weather/hourly", func(c *fiber.Ctx) error {
		var q hourlyQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}
		hours := q.Hours
		if hours == 0 {
			hours = defaultHours
		}
		loc, err := d.resolve(c.UserContext(), q.text())
		if err != nil {
			return err
		}

		report, err := d.Weather.Report(c.UserContext(), loc)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"location": report.Location,
			"provider": report.Provider,
			"hours":    weather.NextHours(report.Hourly, time.Now(), hours),
			"daily":    report.Daily,
		})
	})

	v1.Get("/weather/latest", func(c *fiber.Ctx) error {
		var q cityQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}

		snapshot, err := d.Weather.GetLatest(q.toLocation())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather data for requested location")
			}
			return err
		}
		return c.JSON(snapshot)
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return err
		}

		loc := req.Location.toLocation()
		snapshots, err := d.Weather.GetRange(loc, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather history for requested range")
			}
			return err
		}

		return c.JSON(fiber.Map{
			"location":  loc,
			"from":      req.From,
			"to":        req.To,
			"snapshots": snapshots,
		})
	})

	v1.Get("/route", func(c *fiber.Ctx) error {
		var q routeQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}
		from, err := d.resolve(c.UserContext(), q.From)
		if err != nil {
			return err
		}
		to, err := d.resolve(c.UserContext(), q.To)
		if err != nil {
			return err
		}

		rt, err := d.Routes.Plan(c.UserContext(), from, to)
		if err != nil {
			return err
		}
		return c.JSON(rt)
	})

	v1.Get("/ride", func(c *fiber.Ctx) error {
		var q rideQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}
		var depart time.Time
		if q.Depart != "" {
			t, err := parseTime(q.Depart)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			depart = t
		}

		plan, err := d.Rides.Build(c.UserContext(), ride.Request{
			From:   q.From,
			To:     q.To,
			Depart: depart,
			Hours:  q.Hours,
			Steps:  q.Steps,
		})
		if err != nil {
			return err
		}
		return c.JSON(plan)
	})
}

// page renders the HTML ride planner. Failures are shown inside the page.
func (d Deps) page(c *fiber.Ctx) error {
	q := web.Query{
		From: strings.TrimSpace(c.Query("from")),
		To:   strings.TrimSpace(c.Query("to")),
	}
	explicit := q.From != ""
	if !explicit {
		q.From = d.Prefs.LastCity(c)
	}
	if q.From == "" {
		q.From = d.DefaultCity
	}

	plan, err := d.Rides.Build(c.UserContext(), ride.Request{From: q.From, To: q.To})
	if err != nil {
		status, msg := pageError(err)
		c.Status(status)
		return d.render(c, web.NewPage(q, nil, msg))
	}

	if explicit {
		if err := d.Prefs.SetLastCity(c, q.From); err != nil {
			return err
		}
	}
	return d.render(c, web.NewPage(q, plan, ""))
}

func (d Deps) render(c *fiber.Ctx, p web.Page) error {
	c.Type("html", "utf-8")
	return d.Renderer.Render(c, p)
}

func (d Deps) resolve(ctx context.Context, text string) (weather.Location, error) {
	loc, err := geocode.ParseQuery(text)
	if err != nil {
		return weather.Location{}, err
	}
	return d.Resolver.Resolve(ctx, loc)
}

// locationQuery identifies a place by free text or by coordinates.
type locationQuery struct {
	Q   string `query:"q" validate:"required_without=Lat"`
	Lat string `query:"lat" validate:"required_without=Q,required_with=Lon,omitempty,latitude"`
	Lon string `query:"lon" validate:"required_with=Lat,omitempty,longitude"`
}

func (l locationQuery) text() string {
	if l.Lat != "" {
		return l.Lat + "," + l.Lon
	}
	return l.Q
}

type hourlyQuery struct {
	Q     string `query:"q" validate:"required_without=Lat"`
	Lat   string `query:"lat" validate:"required_without=Q,required_with=Lon,omitempty,latitude"`
	Lon   string `query:"lon" validate:"required_with=Lat,omitempty,longitude"`
	Hours int    `query:"hours" validate:"omitempty,min=1,max=48"`
}

func (h hourlyQuery) text() string {
	return locationQuery{Q: h.Q, Lat: h.Lat, Lon: h.Lon}.text()
}

type routeQuery struct {
	From string `query:"from" validate:"required"`
	To   string `query:"to" validate:"required"`
}

type rideQuery struct {
	From   string `query:"from" validate:"required"`
	To     string `query:"to"`
	Depart string `query:"depart"`
	Hours  int    `query:"hours" validate:"omitempty,min=1,max=48"`
	Steps  int    `query:"steps" validate:"omitempty,min=1,max=24"`
}

// cityQuery holds query parameters for identifying a stored location.
type cityQuery struct {
	City    string `query:"city" validate:"required"`
	Country string `query:"country" validate:"required"`
}

func (l cityQuery) toLocation() weather.Location {
	return weather.Location{
		City:    l.City,
		Country: l.Country,
	}
}

func bindQuery(c *fiber.Ctx, out interface{}) error {
	if err := c.QueryParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return validate.Struct(out)
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Location cityQuery
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	h.Location = cityQuery{City: c.Query("city"), Country: c.Query("country")}
	if err := validate.Struct(h.Location); err != nil {
		return err
	}

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
