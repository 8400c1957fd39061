package ride

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-rider/internal/geocode"
	"github.com/i474232898/weather-rider/internal/route"
	"github.com/i474232898/weather-rider/internal/weather"
)

// ErrEmptyQuery is returned when no start location is given.
var ErrEmptyQuery = geocode.ErrEmptyQuery

// Reporter returns a full weather report for a location.
type Reporter interface {
	Report(ctx context.Context, loc weather.Location) (weather.Report, error)
}

// Resolver geocodes a location.
type Resolver interface {
	Resolve(ctx context.Context, loc weather.Location) (weather.Location, error)
}

// RoutePlanner computes the route between two located points.
type RoutePlanner interface {
	Plan(ctx context.Context, from, to weather.Location) (route.Route, error)
}

// Request is the input of a ride plan.
type Request struct {
	From   string
	To     string
	Depart time.Time
	// Hours is the size of the "next hours" window; 0 means 12.
	Hours int
	// Steps is the number of timeline checkpoints; 0 means DefaultSteps.
	Steps int
}

// Plan is everything the rider needs before heading out.
type Plan struct {
	ID                string                `json:"id"`
	From              weather.Location      `json:"from"`
	To                *weather.Location     `json:"to,omitempty"`
	Depart            time.Time             `json:"depart"`
	Report            weather.Report        `json:"report"`
	DestinationReport *weather.Report       `json:"destinationReport,omitempty"`
	NextHours         []weather.HourlyPoint `json:"nextHours"`
	Route             *route.Route          `json:"route,omitempty"`
	Gear              []string              `json:"gear"`
	Advisories        []Advisory            `json:"advisories"`
	Packing           []string              `json:"packing"`
	Timeline          []Checkpoint          `json:"timeline"`
	Gradient          string                `json:"gradient"`
	Warnings          []string              `json:"warnings,omitempty"`
}

// Planner builds ride plans.
type Planner struct {
	resolver   Resolver
	reporter   Reporter
	routes     RoutePlanner
	thresholds Thresholds
	now        func() time.Time
}

func NewPlanner(resolver Resolver, reporter Reporter, routes RoutePlanner, th Thresholds) *Planner {
	return &Planner{
		resolver:   resolver,
		reporter:   reporter,
		routes:     routes,
		thresholds: th.withDefaults(),
		now:        time.Now,
	}
}

func (p *Planner) resolve(ctx context.Context, q string) (weather.Location, error) {
	loc, err := geocode.ParseQuery(q)
	if err != nil {
		return weather.Location{}, err
	}
	resolved, err := p.resolver.Resolve(ctx, loc)
	if err != nil {
		return weather.Location{}, fmt.Errorf("resolve %q: %w", q, err)
	}
	return resolved, nil
}

// Build geocodes both ends, fetches the weather at both ends and the route
// concurrently, then derives the advice. Only the origin report is required;
// destination weather and routing failures are reported as warnings.
func (p *Planner) Build(ctx context.Context, req Request) (*Plan, error) {
	if strings.TrimSpace(req.From) == "" {
		return nil, ErrEmptyQuery
	}

	depart := req.Depart
	if depart.IsZero() {
		depart = p.now()
	}
	hours := req.Hours
	if hours <= 0 {
		hours = 12
	}

	from, err := p.resolve(ctx, req.From)
	if err != nil {
		return nil, err
	}

	var to *weather.Location
	if strings.TrimSpace(req.To) != "" {
		dest, err := p.resolve(ctx, req.To)
		if err != nil {
			return nil, err
		}
		to = &dest
	}

	var (
		wg         sync.WaitGroup
		report     weather.Report
		reportErr  error
		destReport weather.Report
		destErr    error
		rt         route.Route
		routeErr   error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		report, reportErr = p.reporter.Report(ctx, from)
	}()

	if to != nil {
		wg.Add(2)
		go func() {
			defer wg.Done()
			destReport, destErr = p.reporter.Report(ctx, *to)
		}()
		go func() {
			defer wg.Done()
			rt, routeErr = p.routes.Plan(ctx, from, *to)
		}()
	}
	wg.Wait()

	if reportErr != nil {
		return nil, reportErr
	}

	plan := &Plan{
		ID:     uuid.New().String(),
		From:   report.Location,
		To:     to,
		Depart: depart,
		Report: report,
	}
	if plan.From.Key() == "" {
		plan.From = from
	}

	if to != nil {
		if destErr != nil {
			log.Printf("destination weather failed for %s: %v", to.DisplayName(), destErr)
			plan.Warnings = append(plan.Warnings, "Destination weather unavailable.")
		} else {
			plan.DestinationReport = &destReport
			dest := destReport.Location
			if dest.Key() != "" {
				plan.To = &dest
			}
		}
		if routeErr != nil {
			log.Printf("route failed for %s -> %s: %v", from.DisplayName(), to.DisplayName(), routeErr)
			plan.Warnings = append(plan.Warnings, "Route unavailable.")
		} else {
			plan.Route = &rt
		}
	}

	plan.NextHours = weather.NextHours(report.Hourly, depart, hours)
	window := p.rideWindow(plan, depart)

	cur := report.Current
	plan.Gear = Gear(cur, window, p.thresholds)
	plan.Advisories = Advisories(cur, window, plan.Route, p.thresholds)
	plan.Packing = PackingList(cur, window, report.Daily, plan.Route, p.thresholds)

	var destHourly []weather.HourlyPoint
	if plan.DestinationReport != nil {
		destHourly = plan.DestinationReport.Hourly
	}
	plan.Timeline = Timeline(report.Hourly, destHourly, plan.Route, depart, req.Steps)
	plan.Gradient = weather.Gradient(cur.CodeKind, cur.Code)

	return plan, nil
}

// rideWindow collects the forecast hours the rider will be out in: the lookahead
// at the origin plus, with a destination, the hours around arrival there.
func (p *Planner) rideWindow(plan *Plan, depart time.Time) []weather.HourlyPoint {
	hours := p.thresholds.LookaheadHours
	if plan.Route != nil {
		if rideHours := int(plan.Route.DurationMin/60) + 1; rideHours > hours {
			hours = rideHours
		}
	}

	window := weather.NextHours(plan.Report.Hourly, depart, hours)
	if plan.DestinationReport != nil && plan.Route != nil {
		arrive := depart.Add(time.Duration(plan.Route.DurationMin * float64(time.Minute)))
		window = append(window, weather.NextHours(plan.DestinationReport.Hourly, arrive, 2)...)
	}
	return window
}
