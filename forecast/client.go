// Package forecast retrieves a location's forecast, serving it from memory while it
// is fresh and otherwise fetching and parsing the feed document.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/rs/zerolog/log"

	"weather-forecast/cache"
	"weather-forecast/datasource"
	"weather-forecast/models"
	"weather-forecast/parser"
)

var (
	// ErrFetchFailed indicates the feed did not yield a usable document
	ErrFetchFailed = errors.New("failed to fetch forecast")

	// ErrParseFailed indicates the fetched document could not be parsed
	ErrParseFailed = errors.New("failed to parse forecast")

	// ErrBusy indicates a fetch for the same location is already in flight
	ErrBusy = errors.New("forecast request already in progress")
)

// Client orchestrates cache, feed and parser
type Client struct {
	source datasource.DocumentSource
	parser *parser.Parser
	cache  *cache.ForecastCache
	clock  clock.Clock

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewClient creates a forecast client. A nil clock uses the system clock.
func NewClient(source datasource.DocumentSource, p *parser.Parser, c *cache.ForecastCache, clk clock.Clock) *Client {
	if clk == nil {
		clk = clock.NewClock()
	}
	return &Client{
		source:   source,
		parser:   p,
		cache:    c,
		clock:    clk,
		inFlight: make(map[string]struct{}),
	}
}

// Cache returns the cache the client stores results in
func (c *Client) Cache() *cache.ForecastCache {
	return c.cache
}

// GetForecast returns the forecasts for a location as of the client's clock
func (c *Client) GetForecast(ctx context.Context, locationID string) ([]models.Forecast, error) {
	return c.GetForecastAt(ctx, locationID, c.clock.Now())
}

// GetForecastAt returns the cached forecasts for locationID if they are fresh at now,
// otherwise fetches and parses the document and caches the result under now.
// Failures leave the cache untouched and are not retried.
func (c *Client) GetForecastAt(ctx context.Context, locationID string, now time.Time) ([]models.Forecast, error) {
	if forecasts, ok := c.cache.Lookup(locationID, now); ok {
		return forecasts, nil
	}

	if !c.acquire(locationID) {
		log.Debug().Str("location", locationID).Msg("ignoring request, fetch already in flight")
		return nil, ErrBusy
	}
	defer c.release(locationID)

	start := c.clock.Now()
	forecasts, err := c.fetch(ctx, locationID)
	if err != nil {
		log.Warn().
			Err(err).
			Str("location", locationID).
			Str("source", c.source.Name()).
			Msg("could not retrieve forecast")
		return nil, err
	}

	c.cache.Store(locationID, now, forecasts)

	log.Info().
		Str("location", locationID).
		Str("source", c.source.Name()).
		Int("periods", len(forecasts)).
		Dur("duration", c.clock.Since(start)).
		Msg("fetched forecast")

	return forecasts, nil
}

func (c *Client) fetch(ctx context.Context, locationID string) ([]models.Forecast, error) {
	body, err := c.source.FetchDocument(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer body.Close()

	forecasts, err := c.parser.Parse(body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrFetchFailed, ctxErr)
		}
		// Anything but a malformed document means the stream broke mid-read
		if !errors.Is(err, parser.ErrMalformedDocument) {
			return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}

	return forecasts, nil
}

// acquire marks locationID busy, reporting false if it already was
func (c *Client) acquire(locationID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.inFlight[locationID]; busy {
		return false
	}
	c.inFlight[locationID] = struct{}{}
	return true
}

func (c *Client) release(locationID string) {
	c.mu.Lock()
	delete(c.inFlight, locationID)
	c.mu.Unlock()
}
