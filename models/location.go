package models

// Location is a named place and its identifier in the feed's addressing scheme,
// e.g. {Name: "Oslo, Norway", ID: "Norway/Oslo/Oslo/Oslo"}
type Location struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}
