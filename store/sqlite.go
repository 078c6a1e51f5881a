package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"weather-forecast/models"
)

// SQLiteFavorites implements Favorites with SQLite
type SQLiteFavorites struct {
	db *sql.DB
}

// NewSQLiteFavorites opens (and if needed creates) a favorites database
func NewSQLiteFavorites(dbPath string) (*SQLiteFavorites, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create table if not exists
	schema := `
	CREATE TABLE IF NOT EXISTS favorites (
		name TEXT PRIMARY KEY,
		location_id TEXT NOT NULL
	);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteFavorites{db: db}, nil
}

// List returns saved locations sorted by name
func (s *SQLiteFavorites) List(ctx context.Context) ([]models.Location, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, location_id FROM favorites ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	locations := []models.Location{}
	for rows.Next() {
		var loc models.Location
		if err := rows.Scan(&loc.Name, &loc.ID); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}

	return locations, nil
}

// Add stores a location, replacing one with the same name
func (s *SQLiteFavorites) Add(ctx context.Context, loc models.Location) error {
	if err := validate(loc); err != nil {
		return err
	}

	query := `
		INSERT INTO favorites (name, location_id) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET location_id = excluded.location_id
	`
	if _, err := s.db.ExecContext(ctx, query, loc.Name, loc.ID); err != nil {
		return fmt.Errorf("failed to save favorite: %w", err)
	}
	return nil
}

// Remove deletes a location by name
func (s *SQLiteFavorites) Remove(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Lookup retrieves a location by name
func (s *SQLiteFavorites) Lookup(ctx context.Context, name string) (models.Location, error) {
	var loc models.Location
	err := s.db.QueryRowContext(ctx, `SELECT name, location_id FROM favorites WHERE name = ?`, name).
		Scan(&loc.Name, &loc.ID)
	if err == sql.ErrNoRows {
		return models.Location{}, ErrNotFound
	}
	if err != nil {
		return models.Location{}, fmt.Errorf("failed to query favorite: %w", err)
	}
	return loc, nil
}

// Close closes the database connection
func (s *SQLiteFavorites) Close() error {
	return s.db.Close()
}

var _ Favorites = (*SQLiteFavorites)(nil)
