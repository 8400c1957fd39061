package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-rider/internal/weather"
)

const jobTimeout = 30 * time.Second

// Fetcher refreshes and stores the current conditions of a location.
type Fetcher interface {
	FetchAndStore(ctx context.Context, loc weather.Location) error
}

// Resolver geocodes a watched location before its first fetch.
type Resolver interface {
	Resolve(ctx context.Context, loc weather.Location) (weather.Location, error)
}

// Scheduler periodically fetches weather data for the watched locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	fetcher   Fetcher
	resolver  Resolver
	locations []weather.Location
	interval  time.Duration

	mu       sync.Mutex
	resolved map[string]weather.Location
}

// New creates a new Scheduler. resolver may be nil when every location
// already carries what the provider needs.
func New(locations []weather.Location, interval time.Duration, fetcher Fetcher, resolver Resolver) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		fetcher:   fetcher,
		resolver:  resolver,
		locations: locations,
		interval:  interval,
		resolved:  make(map[string]weather.Location),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		log.Println("scheduler: no locations configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: running weather fetch job")
		s.RunOnce(context.Background())
		log.Println("scheduler: completed weather fetch job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce fetches every watched location concurrently and waits for all of them.
func (s *Scheduler) RunOnce(ctx context.Context) {
	var wg sync.WaitGroup
	for _, loc := range s.locations {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, jobTimeout)
			defer cancel()

			target, err := s.resolve(ctx, loc)
			if err != nil {
				log.Printf("scheduler: resolve failed for %s: %v", loc.DisplayName(), err)
				return
			}
			if err := s.fetcher.FetchAndStore(ctx, target); err != nil {
				log.Printf("scheduler: fetch failed for %s: %v", loc.Key(), err)
			}
		}()
	}
	wg.Wait()
}

// resolve geocodes loc once and reuses the result on later runs.
func (s *Scheduler) resolve(ctx context.Context, loc weather.Location) (weather.Location, error) {
	if s.resolver == nil || loc.HasCoords() {
		return loc, nil
	}

	key := loc.Key()
	s.mu.Lock()
	cached, ok := s.resolved[key]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	resolved, err := s.resolver.Resolve(ctx, loc)
	if err != nil {
		return weather.Location{}, err
	}

	s.mu.Lock()
	s.resolved[key] = resolved
	s.mu.Unlock()
	return resolved, nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
