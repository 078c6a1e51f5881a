package models

import (
	"testing"
	"time"
)

func TestForecast_TemperatureLabel(t *testing.T) {
	tests := []struct {
		name string
		f    Forecast
		want string
	}{
		{name: "celsius", f: Forecast{Temperature: "5", TemperatureUnit: "celsius"}, want: "5℃"},
		{name: "negative celsius", f: Forecast{Temperature: "-12", TemperatureUnit: "celsius"}, want: "-12℃"},
		{name: "other unit", f: Forecast{Temperature: "41", TemperatureUnit: "fahrenheit"}, want: "41 fahrenheit"},
		{name: "no unit", f: Forecast{Temperature: "7"}, want: "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.TemperatureLabel(); got != tt.want {
				t.Errorf("TemperatureLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMidpoint(t *testing.T) {
	from := time.Date(2017, 3, 1, 8, 0, 0, 0, time.UTC)
	to := time.Date(2017, 3, 1, 11, 0, 0, 0, time.UTC)

	got := Midpoint(from, to)
	want := time.Date(2017, 3, 1, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Midpoint() = %v, want %v", got, want)
	}

	if got := Midpoint(from, from); !got.Equal(from) {
		t.Errorf("Midpoint of equal instants = %v, want %v", got, from)
	}
}

func TestForecast_HasSymbol(t *testing.T) {
	if (Forecast{Symbol: NoSymbol}).HasSymbol() {
		t.Error("expected NoSymbol forecast to report no symbol")
	}
	if !(Forecast{Symbol: 0x7f010001}).HasSymbol() {
		t.Error("expected resolved symbol to be reported")
	}
}
