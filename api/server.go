package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/rs/zerolog/log"

	"weather-forecast/forecast"
	"weather-forecast/models"
	"weather-forecast/resources"
	"weather-forecast/store"
)

// ForecastGetter retrieves forecasts for a location identifier
type ForecastGetter interface {
	GetForecast(ctx context.Context, locationID string) ([]models.Forecast, error)
}

// CacheStatter reports cache statistics
type CacheStatter interface {
	CacheStats() (hits, misses int)
	Len() int
}

// Server represents the API server
type Server struct {
	forecasts ForecastGetter
	cache     CacheStatter
	places    *resources.Places
	favorites store.Favorites
	clock     clock.Clock
	handler   http.Handler
	server    *http.Server
}

// NewServer creates a new API server. A nil clock uses the system clock.
func NewServer(forecasts ForecastGetter, cache CacheStatter, places *resources.Places, favorites store.Favorites, clk clock.Clock, port int) *Server {
	if clk == nil {
		clk = clock.NewClock()
	}
	mux := http.NewServeMux()

	server := &Server{
		forecasts: forecasts,
		cache:     cache,
		places:    places,
		favorites: favorites,
		clock:     clk,
	}
	server.handler = withRequestID(mux)
	server.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           server.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Forecasts
	mux.HandleFunc("/api/forecast/", server.handleGetForecast)

	// Place picker and saved locations
	mux.HandleFunc("/api/places", server.handleSearchPlaces)
	mux.HandleFunc("/api/favorites", server.handleFavorites)
	mux.HandleFunc("/api/favorites/", server.handleDeleteFavorite)

	// Cache statistics and health check
	mux.HandleFunc("/api/cache/stats", server.handleCacheStats)
	mux.HandleFunc("/api/health", server.handleHealthCheck)

	return server
}

// Handler returns the server's root handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins the API server
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("starting API server")
	return s.server.ListenAndServe()
}

// Shutdown stops the server, waiting for active requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// forecastView is the JSON shape of a single forecast period
type forecastView struct {
	models.Forecast
	TemperatureLabel string `json:"temperatureLabel"`
	HasSymbol        bool   `json:"hasSymbol"`
}

// handleGetForecast handles requests for forecasts by location identifier
func (s *Server) handleGetForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Extract location identifier from URL path, it may contain slashes
	locationID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/forecast/"), "/")
	if locationID == "" {
		writeError(w, http.StatusBadRequest, "Location not specified")
		return
	}

	forecasts, err := s.forecasts.GetForecast(r.Context(), locationID)
	switch {
	case errors.Is(err, forecast.ErrBusy):
		writeError(w, http.StatusConflict, "A forecast for this location is already being fetched")
		return
	case err != nil:
		log.Warn().Err(err).Str("location", locationID).Str("request_id", requestID(r)).Msg("forecast request failed")
		writeError(w, http.StatusBadGateway, "could not show forecast")
		return
	}

	views := make([]forecastView, len(forecasts))
	for i, f := range forecasts {
		views[i] = forecastView{Forecast: f, TemperatureLabel: f.TemperatureLabel(), HasSymbol: f.HasSymbol()}
	}

	response := map[string]interface{}{
		"location":  locationID,
		"forecasts": views,
		"count":     len(views),
		"timestamp": s.clock.Now(),
	}
	if len(forecasts) > 0 {
		response["place"] = forecasts[0].Place
		response["credit"] = forecasts[0].Credit
	}

	writeJSON(w, http.StatusOK, response)
}

// handleSearchPlaces returns built-in places matching the q parameter
func (s *Server) handleSearchPlaces(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	places := s.places.Search(r.URL.Query().Get("q"), limit)
	if places == nil {
		places = []models.Location{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"places": places,
		"count":  len(places),
	})
}

// handleFavorites lists or adds saved locations
func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		favorites, err := s.favorites.List(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("failed to list favorites")
			writeError(w, http.StatusInternalServerError, "Failed to list saved locations")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"favorites": favorites,
			"count":     len(favorites),
		})

	case http.MethodPost:
		var loc models.Location
		if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		loc.Name = strings.TrimSpace(loc.Name)
		loc.ID = strings.Trim(strings.TrimSpace(loc.ID), "/")

		// A known place name can be saved without its identifier
		if loc.ID == "" {
			if place, ok := s.places.Lookup(loc.Name); ok {
				loc = place
			}
		}

		if err := s.favorites.Add(r.Context(), loc); err != nil {
			if errors.Is(err, store.ErrInvalidLocation) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			log.Error().Err(err).Msg("failed to save favorite")
			writeError(w, http.StatusInternalServerError, "Failed to save location")
			return
		}
		writeJSON(w, http.StatusCreated, loc)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleDeleteFavorite removes a saved location by name
func (s *Server) handleDeleteFavorite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/favorites/")
	if name == "" {
		writeError(w, http.StatusBadRequest, "Name not specified")
		return
	}

	err := s.favorites.Remove(r.Context(), name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("No saved location named %q", name))
	case err != nil:
		log.Error().Err(err).Str("name", name).Msg("failed to remove favorite")
		writeError(w, http.StatusInternalServerError, "Failed to remove location")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleCacheStats reports forecast cache statistics
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	hits, misses := s.cache.CacheStats()
	writeJSON(w, http.StatusOK, map[string]int{
		"hits":    hits,
		"misses":  misses,
		"entries": s.cache.Len(),
	})
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": s.clock.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
