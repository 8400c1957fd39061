package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-rider/internal/weather"
)

var (
	// ErrNotFound is returned when no data is available for a given location.
	ErrNotFound = errors.New("no weather data for location")
)

// SnapshotHistory holds a time-ordered list of current readings for a location.
type SnapshotHistory struct {
	Location  weather.Location
	Snapshots []weather.Snapshot
}

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
// Nothing is persisted; history is lost on restart.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: history
	data map[string]*SnapshotHistory

	// retention configuration
	maxHistory int           // max number of snapshots per location
	maxAge     time.Duration // optional max age for snapshots

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*SnapshotHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveSnapshot records a reading for a location and enforces retention.
// A reading with the same timestamp as the newest one replaces it, since
// providers refresh their observation less often than we poll.
func (s *MemoryStore) SaveSnapshot(loc weather.Location, snapshot weather.Snapshot) {
	key := loc.Key()
	if key == "" {
		return
	}
	snapshot.Timestamp = snapshot.Timestamp.UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &SnapshotHistory{Location: loc}
		s.data[key] = history
	}

	n := len(history.Snapshots)
	switch {
	case n > 0 && history.Snapshots[n-1].Timestamp.Equal(snapshot.Timestamp):
		history.Snapshots[n-1] = snapshot
	case n > 0 && snapshot.Timestamp.Before(history.Snapshots[n-1].Timestamp):
		// Keep the slice ordered when an older reading arrives late.
		i := sort.Search(n, func(i int) bool {
			return !history.Snapshots[i].Timestamp.Before(snapshot.Timestamp)
		})
		if history.Snapshots[i].Timestamp.Equal(snapshot.Timestamp) {
			history.Snapshots[i] = snapshot
			break
		}
		history.Snapshots = append(history.Snapshots, weather.Snapshot{})
		copy(history.Snapshots[i+1:], history.Snapshots[i:])
		history.Snapshots[i] = snapshot
	default:
		history.Snapshots = append(history.Snapshots, snapshot)
	}

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Snapshots) > s.maxHistory {
		over := len(history.Snapshots) - s.maxHistory
		history.Snapshots = history.Snapshots[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Snapshots); i++ {
			if !history.Snapshots[i].Timestamp.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			history.Snapshots = history.Snapshots[i:]
		}
	}
}

// GetLatest returns the most recent snapshot for a location.
func (s *MemoryStore) GetLatest(loc weather.Location) (weather.Snapshot, error) {
	key := loc.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Snapshots) == 0 {
		return weather.Snapshot{}, ErrNotFound
	}
	return history.Snapshots[len(history.Snapshots)-1], nil
}

// GetRange returns all snapshots for a location between from and to (inclusive).
func (s *MemoryStore) GetRange(loc weather.Location, from, to time.Time) ([]weather.Snapshot, error) {
	key := loc.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Snapshots) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.Snapshot
	for _, snap := range history.Snapshots {
		if !snap.Timestamp.Before(from) && !snap.Timestamp.After(to) {
			result = append(result, snap)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
