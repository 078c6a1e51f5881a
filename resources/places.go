package resources

import (
	"sort"
	"strings"
	"sync"

	"weather-forecast/models"
)

// builtinPlaces seeds the place picker. Identifiers follow the feed's
// country/region/municipality/place path scheme.
var builtinPlaces = []models.Location{
	{Name: "Oslo, Norway", ID: "Norway/Oslo/Oslo/Oslo"},
	{Name: "Bergen, Norway", ID: "Norway/Hordaland/Bergen/Bergen"},
	{Name: "Trondheim, Norway", ID: "Norway/Sør-Trøndelag/Trondheim/Trondheim"},
	{Name: "Stavanger, Norway", ID: "Norway/Rogaland/Stavanger/Stavanger"},
	{Name: "Tromsø, Norway", ID: "Norway/Troms/Tromsø/Tromsø"},
	{Name: "Bodø, Norway", ID: "Norway/Nordland/Bodø/Bodø"},
	{Name: "Kristiansand, Norway", ID: "Norway/Vest-Agder/Kristiansand/Kristiansand"},
	{Name: "Longyearbyen, Svalbard", ID: "Norway/Svalbard/Longyearbyen"},
	{Name: "Stockholm, Sweden", ID: "Sweden/Stockholm/Stockholm"},
	{Name: "Copenhagen, Denmark", ID: "Denmark/Capital/Copenhagen"},
	{Name: "Helsinki, Finland", ID: "Finland/Uusimaa/Helsinki"},
	{Name: "Reykjavik, Iceland", ID: "Iceland/Capital/Reykjavik"},
	{Name: "London, United Kingdom", ID: "United_Kingdom/England/London"},
	{Name: "Edinburgh, United Kingdom", ID: "United_Kingdom/Scotland/Edinburgh"},
	{Name: "Berlin, Germany", ID: "Germany/Berlin/Berlin"},
	{Name: "Paris, France", ID: "France/Île-de-France/Paris"},
	{Name: "New York, United States", ID: "United_States/New_York/New_York"},
	{Name: "Tokyo, Japan", ID: "Japan/Tokyo/Tokyo"},
}

// Places is a read-only list of named locations for the place picker
type Places struct {
	byName map[string]models.Location
	sorted []models.Location
}

// NewPlaces builds a place list. Later entries win when two share a name.
func NewPlaces(locations []models.Location) *Places {
	byName := make(map[string]models.Location, len(locations))
	for _, loc := range locations {
		byName[strings.ToLower(loc.Name)] = loc
	}

	sorted := make([]models.Location, 0, len(byName))
	for _, loc := range byName {
		sorted = append(sorted, loc)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	return &Places{byName: byName, sorted: sorted}
}

// All returns every place sorted by name
func (p *Places) All() []models.Location {
	out := make([]models.Location, len(p.sorted))
	copy(out, p.sorted)
	return out
}

// Lookup finds a place by display name, ignoring case
func (p *Places) Lookup(name string) (models.Location, bool) {
	loc, ok := p.byName[strings.ToLower(strings.TrimSpace(name))]
	return loc, ok
}

// Search returns places whose name contains query, ignoring case.
// A limit of zero or less means no limit.
func (p *Places) Search(query string, limit int) []models.Location {
	query = strings.ToLower(strings.TrimSpace(query))

	var results []models.Location
	for _, loc := range p.sorted {
		if query != "" && !strings.Contains(strings.ToLower(loc.Name), query) {
			continue
		}
		results = append(results, loc)
		if limit > 0 && len(results) == limit {
			break
		}
	}
	return results
}

var (
	defaultPlaces     *Places
	defaultPlacesOnce sync.Once
)

// DefaultPlaces returns the process-wide built-in place list
func DefaultPlaces() *Places {
	defaultPlacesOnce.Do(func() {
		defaultPlaces = NewPlaces(builtinPlaces)
	})
	return defaultPlaces
}
