package weather

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Service orchestrates the configured provider and the snapshot store.
type Service struct {
	store    Store
	provider Provider
}

// NewService creates a new Service.
func NewService(store Store, provider Provider) *Service {
	return &Service{
		store:    store,
		provider: provider,
	}
}

// ProviderName returns the name of the configured provider, or "" when none is set.
func (s *Service) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// Report fetches current conditions plus hourly and daily forecast for loc.
// The current reading is also recorded as a snapshot.
func (s *Service) Report(ctx context.Context, loc Location) (Report, error) {
	if s.provider == nil {
		return Report{}, fmt.Errorf("no weather provider configured")
	}

	log.Printf("DEBUG: Report called for %s via %s", loc.DisplayName(), s.provider.Name())

	report, err := s.provider.Forecast(ctx, loc)
	if err != nil {
		log.Printf("provider %s forecast failed for %s: %v", s.provider.Name(), loc.DisplayName(), err)
		return Report{}, err
	}
	if report.FetchedAt.IsZero() {
		report.FetchedAt = time.Now().UTC()
	}

	s.save(report.Location, report.Current)
	return report, nil
}

// Current fetches only the current conditions for loc.
func (s *Service) Current(ctx context.Context, loc Location) (Current, error) {
	if s.provider == nil {
		return Current{}, fmt.Errorf("no weather provider configured")
	}

	cur, err := s.provider.Current(ctx, loc)
	if err != nil {
		log.Printf("provider %s current failed for %s: %v", s.provider.Name(), loc.DisplayName(), err)
		return Current{}, err
	}

	s.save(cur.Location, cur)
	return cur, nil
}

// FetchAndStore refreshes the current conditions for loc and stores a snapshot.
// It is used by the scheduler for the configured watch list.
func (s *Service) FetchAndStore(ctx context.Context, loc Location) error {
	_, err := s.Current(ctx, loc)
	return err
}

func (s *Service) save(loc Location, cur Current) {
	if s.store == nil {
		return
	}
	if loc.Key() == "" {
		return
	}

	ts := cur.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	s.store.SaveSnapshot(loc, Snapshot{
		Location:  loc,
		Timestamp: ts,
		Current:   cur,
		Provider:  s.ProviderName(),
	})
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(loc Location) (Snapshot, error) {
	return s.store.GetLatest(loc)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(loc Location, from, to time.Time) ([]Snapshot, error) {
	return s.store.GetRange(loc, from, to)
}
