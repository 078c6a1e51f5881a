package parser

import "time"

// SunWindow holds the sunrise and sunset of the document being parsed
type SunWindow struct {
	Sunrise time.Time
	Sunset  time.Time
	known   bool
}

// Update records new sunrise and sunset instants
func (w *SunWindow) Update(sunrise, sunset time.Time) {
	w.Sunrise = sunrise.UTC()
	w.Sunset = sunset.UTC()
	w.known = true
}

// Known reports whether a sun element has been seen
func (w *SunWindow) Known() bool {
	return w.known
}

// IsDaytime reports whether t lies between sunrise and sunset, both inclusive.
// Only the time of day is compared: sunrise and sunset are moved onto t's UTC date
// first, so one pair of times covers forecasts spanning several days.
func (w *SunWindow) IsDaytime(t time.Time) bool {
	t = t.UTC()
	rise := onDate(t, w.Sunrise)
	set := onDate(t, w.Sunset)

	if t.Before(rise) {
		return false
	}
	if t.After(set) {
		return false
	}
	return true
}

// onDate returns clock's time of day on day's calendar date
func onDate(day, clock time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), time.UTC)
}
