// Package store keeps the user's saved locations.
package store

import (
	"context"
	"errors"

	"weather-forecast/models"
)

// ErrNotFound indicates no saved location has the requested name
var ErrNotFound = errors.New("saved location not found")

// ErrInvalidLocation indicates a location without a name or identifier
var ErrInvalidLocation = errors.New("location needs a name and an identifier")

// Favorites defines operations on the saved location list
type Favorites interface {
	// List returns saved locations sorted by name
	List(ctx context.Context) ([]models.Location, error)

	// Add saves a location, replacing any saved location with the same name
	Add(ctx context.Context, loc models.Location) error

	// Remove deletes the saved location with the given name
	Remove(ctx context.Context, name string) error

	// Lookup finds a saved location by name
	Lookup(ctx context.Context, name string) (models.Location, error)
}

func validate(loc models.Location) error {
	if loc.Name == "" || loc.ID == "" {
		return ErrInvalidLocation
	}
	return nil
}
