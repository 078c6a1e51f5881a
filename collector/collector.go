package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/rs/zerolog/log"

	"weather-forecast/models"
)

// Fetcher retrieves forecasts for a location, typically a *forecast.Client
type Fetcher interface {
	GetForecast(ctx context.Context, locationID string) ([]models.Forecast, error)
}

// Result is one refreshed forecast list
type Result struct {
	LocationID string
	Forecasts  []models.Forecast
}

// Refresher keeps forecasts for a fixed set of locations warm by fetching them on a schedule
type Refresher struct {
	fetcher      Fetcher
	clock        clock.Clock
	outputChan   chan Result
	errorChan    chan error
	locations    []string
	interval     time.Duration
	fetchTimeout time.Duration
}

// NewRefresher creates a refresher for the given locations. A nil clock uses the system clock.
func NewRefresher(fetcher Fetcher, locations []string, interval time.Duration, clk clock.Clock) *Refresher {
	if clk == nil {
		clk = clock.NewClock()
	}
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Refresher{
		fetcher:      fetcher,
		clock:        clk,
		outputChan:   make(chan Result, 100), // Buffer size can be configured
		errorChan:    make(chan error, 100),  // Buffer for errors
		locations:    locations,
		interval:     interval,
		fetchTimeout: 30 * time.Second,
	}
}

// SetFetchTimeout changes the timeout for a single refresh
func (r *Refresher) SetFetchTimeout(timeout time.Duration) {
	r.fetchTimeout = timeout
}

// OutputChannel returns the channel that emits refreshed forecasts
func (r *Refresher) OutputChannel() <-chan Result {
	return r.outputChan
}

// ErrorChannel returns the channel that emits errors
func (r *Refresher) ErrorChannel() <-chan error {
	return r.errorChan
}

// Start begins refreshing every location immediately and then on each interval.
// The returned function stops refreshing and waits for in-flight work; the
// channels are closed once everything has stopped.
func (r *Refresher) Start(ctx context.Context) func() {
	refreshCtx, cancelRefresh := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go r.run(refreshCtx, &wg)

	go func() {
		wg.Wait()
		close(r.outputChan)
		close(r.errorChan)
	}()

	return func() {
		cancelRefresh()
		wg.Wait()
	}
}

func (r *Refresher) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	log.Info().
		Dur("interval", r.interval).
		Int("locations", len(r.locations)).
		Msg("starting forecast refresher")

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	r.refreshAll(ctx)

	for {
		select {
		case <-ticker.C():
			r.refreshAll(ctx)
		case <-ctx.Done():
			log.Info().Msg("stopping forecast refresher")
			return
		}
	}
}

// refreshAll fetches every location concurrently and waits for all of them
func (r *Refresher) refreshAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, location := range r.locations {
		wg.Add(1)
		go func(loc string) {
			defer wg.Done()
			r.refreshOnce(ctx, loc)
		}(location)
	}
	wg.Wait()
}

// refreshOnce performs a single fetch for a location
func (r *Refresher) refreshOnce(ctx context.Context, location string) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	forecasts, err := r.fetcher.GetForecast(fetchCtx, location)
	if err != nil {
		select {
		case r.errorChan <- fmt.Errorf("error refreshing %s: %w", location, err):
		default:
			log.Warn().Err(err).Str("location", location).Msg("refresh error dropped, error channel full")
		}
		return
	}

	select {
	case r.outputChan <- Result{LocationID: location, Forecasts: forecasts}:
	case <-ctx.Done():
	}
}
