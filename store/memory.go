package store

import (
	"context"
	"sort"
	"sync"

	"weather-forecast/models"
)

// MemoryFavorites holds saved locations in memory, keyed by name
type MemoryFavorites struct {
	data  map[string]models.Location
	mutex sync.RWMutex
}

// NewMemoryFavorites creates an empty in-memory favorites store
func NewMemoryFavorites() *MemoryFavorites {
	return &MemoryFavorites{
		data: make(map[string]models.Location),
	}
}

// List returns all saved locations sorted by name
func (s *MemoryFavorites) List(ctx context.Context) ([]models.Location, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	locations := make([]models.Location, 0, len(s.data))
	for _, loc := range s.data {
		locations = append(locations, loc)
	}
	sort.Slice(locations, func(i, j int) bool {
		return locations[i].Name < locations[j].Name
	})
	return locations, nil
}

// Add adds or updates a saved location
func (s *MemoryFavorites) Add(ctx context.Context, loc models.Location) error {
	if err := validate(loc); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[loc.Name] = loc
	return nil
}

// Remove deletes a saved location by name
func (s *MemoryFavorites) Remove(ctx context.Context, name string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.data[name]; !exists {
		return ErrNotFound
	}
	delete(s.data, name)
	return nil
}

// Lookup retrieves a saved location by name
func (s *MemoryFavorites) Lookup(ctx context.Context, name string) (models.Location, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	loc, exists := s.data[name]
	if !exists {
		return models.Location{}, ErrNotFound
	}
	return loc, nil
}

var _ Favorites = (*MemoryFavorites)(nil)
