package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"weather-forecast/cache"
	"weather-forecast/datasource"
	"weather-forecast/forecast"
	"weather-forecast/models"
	"weather-forecast/parser"
	"weather-forecast/resources"
	"weather-forecast/store"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	configFile := flag.String("config", "config.json", "Path to configuration file")
	repeat := flag.Int("repeat", 1, "Number of times to request the forecast, later requests are served from cache")
	list := flag.Bool("list", false, "List known places and exit")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <place name or identifier>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	places := resources.DefaultPlaces()
	if *list {
		for _, place := range places.All() {
			fmt.Printf("%-28s %s\n", place.Name, place.ID)
		}
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	config, err := datasource.LoadConfig(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	config.ApplyEnv()

	location := resolveLocation(strings.Join(flag.Args(), " "), places, config.FavoritesDB)

	source := datasource.NewYrSource(config.Feed.BaseURL, config.Feed.UserAgent, config.Feed.Timeout.Duration)
	forecastCache := cache.NewForecastCache(config.CacheFreshness.Duration)
	client := forecast.NewClient(source, parser.New(resources.DefaultSymbols()), forecastCache, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for i := 0; i < *repeat; i++ {
		forecasts, err := client.GetForecast(ctx, location.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not show forecast: %v\n", err)
			os.Exit(1)
		}
		if i == 0 {
			printForecasts(location, forecasts)
		}
	}

	if *repeat > 1 {
		hits, misses := forecastCache.CacheStats()
		fmt.Printf("\n%d requests: %d cache hits, %d cache misses\n", *repeat, hits, misses)
	}
}

// resolveLocation maps a saved or built-in place name to its location,
// treating anything else as a raw identifier
func resolveLocation(arg string, places *resources.Places, favoritesDB string) models.Location {
	if favoritesDB != "" {
		favorites, err := store.NewSQLiteFavorites(favoritesDB)
		if err != nil {
			log.Warn().Err(err).Msg("could not open saved locations")
		} else {
			defer favorites.Close()
			if loc, err := favorites.Lookup(context.Background(), arg); err == nil {
				return loc
			}
		}
	}

	if loc, ok := places.Lookup(arg); ok {
		return loc
	}
	return models.Location{Name: arg, ID: strings.Trim(arg, "/")}
}

func printForecasts(location models.Location, forecasts []models.Forecast) {
	if len(forecasts) == 0 {
		fmt.Printf("No forecast periods for %s\n", location.Name)
		return
	}

	fmt.Printf("%s\n%s\n\n", forecasts[0].Place, forecasts[0].Credit)
	for _, f := range forecasts {
		fmt.Printf("%s - %s  %-24s %-8s %s\n",
			f.From.Format("Mon 15:04"),
			f.To.Format("15:04"),
			f.Description,
			f.TemperatureLabel(),
			f.WindSpeed,
		)
	}
}
