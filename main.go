package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"weather-forecast/api"
	"weather-forecast/cache"
	"weather-forecast/collector"
	"weather-forecast/datasource"
	"weather-forecast/forecast"
	"weather-forecast/parser"
	"weather-forecast/resources"
	"weather-forecast/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	// Parse command line arguments
	port := flag.Int("port", 8080, "Port to run the server on")
	configFile := flag.String("config", "config.json", "Path to configuration file")
	enableRateLimiting := flag.Bool("rate-limit", true, "Throttle requests to the forecast feed")
	refreshInterval := flag.Duration("refresh", 0, "Refresh interval for kept-warm locations, overrides configuration")
	flag.Parse()

	// Load configuration
	config, err := datasource.LoadConfig(*configFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", *configFile).Msg("failed to load configuration")
	}
	config.ApplyEnv()
	if *refreshInterval > 0 {
		config.Refresh.Interval.Duration = *refreshInterval
	}
	if v := os.Getenv("PORT"); v != "" && !isFlagSet("port") {
		if p, err := strconv.Atoi(v); err == nil {
			*port = p
		}
	}

	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		log.Warn().Str("level", config.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Forecast feed, optionally throttled
	var source datasource.DocumentSource = datasource.NewYrSource(
		config.Feed.BaseURL,
		config.Feed.UserAgent,
		config.Feed.Timeout.Duration,
	)
	if *enableRateLimiting && config.RateLimit.Enabled {
		source = datasource.NewRateLimitedSource(source, config.RateLimit.RPS, config.RateLimit.Burst)
		log.Info().
			Float64("rps", config.RateLimit.RPS).
			Int("burst", config.RateLimit.Burst).
			Msg("applied rate limiting to forecast feed")
	}

	clk := clock.NewClock()
	forecastCache := cache.NewForecastCache(config.CacheFreshness.Duration)
	client := forecast.NewClient(source, parser.New(resources.DefaultSymbols()), forecastCache, clk)

	// Saved locations
	var favorites store.Favorites
	if config.FavoritesDB != "" {
		sqliteFavorites, err := store.NewSQLiteFavorites(config.FavoritesDB)
		if err != nil {
			log.Fatal().Err(err).Str("path", config.FavoritesDB).Msg("failed to open favorites database")
		}
		defer sqliteFavorites.Close()
		favorites = sqliteFavorites
	} else {
		favorites = store.NewMemoryFavorites()
	}

	server := api.NewServer(client, forecastCache, resources.DefaultPlaces(), favorites, clk, *port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Keep configured locations warm
	var stopRefresh func()
	if len(config.Refresh.Locations) > 0 {
		refresher := collector.NewRefresher(client, config.Refresh.Locations, config.Refresh.Interval.Duration, clk)
		refresher.SetFetchTimeout(config.Feed.Timeout.Duration)
		stopRefresh = refresher.Start(ctx)
		go drainRefresher(refresher)
	}

	// Set up channel for graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	// Start the API server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or server failure
	select {
	case sig := <-shutdownChan:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		log.Error().Err(err).Msg("server stopped")
	}

	cancel()
	if stopRefresh != nil {
		stopRefresh()
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	log.Info().Msg("shutdown complete")
}

// drainRefresher logs refresh results until the refresher closes its channels
func drainRefresher(refresher *collector.Refresher) {
	output := refresher.OutputChannel()
	errs := refresher.ErrorChannel()

	for output != nil || errs != nil {
		select {
		case result, ok := <-output:
			if !ok {
				output = nil
				continue
			}
			log.Debug().
				Str("location", result.LocationID).
				Int("periods", len(result.Forecasts)).
				Msg("refreshed forecast")
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Warn().Err(err).Msg("refresh failed")
		}
	}
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
