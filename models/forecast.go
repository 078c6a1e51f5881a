package models

import (
	"time"
)

// NoSymbol marks a forecast whose condition has no icon; show the description instead
const NoSymbol = -1

// Forecast represents a single forecast period parsed from a location's feed
type Forecast struct {
	Place           string    `json:"place"`           // location name from the document header
	Credit          string    `json:"credit"`          // attribution text required by the provider
	From            time.Time `json:"from"`            // start of the period (UTC)
	To              time.Time `json:"to"`              // end of the period (UTC)
	Mid             time.Time `json:"mid"`             // midpoint of From and To
	Symbol          int       `json:"symbol"`          // icon identifier or NoSymbol
	Description     string    `json:"description"`     // condition name, e.g. "Partly cloudy"
	WindSpeed       string    `json:"windSpeed"`       // wind description, e.g. "Light breeze"
	Temperature     string    `json:"temperature"`     // temperature as given by the feed
	TemperatureUnit string    `json:"temperatureUnit"` // e.g. "celsius"
}

// HasSymbol reports whether an icon was resolved for this forecast
func (f Forecast) HasSymbol() bool {
	return f.Symbol != NoSymbol
}

// TemperatureLabel formats the temperature for display, e.g. "5℃" or "41 fahrenheit"
func (f Forecast) TemperatureLabel() string {
	if f.TemperatureUnit == "celsius" {
		return f.Temperature + "℃"
	}
	if f.TemperatureUnit == "" {
		return f.Temperature
	}
	return f.Temperature + " " + f.TemperatureUnit
}

// Midpoint returns the instant halfway between from and to
func Midpoint(from, to time.Time) time.Time {
	return from.Add(to.Sub(from) / 2)
}
