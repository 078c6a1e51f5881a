// Package parser turns a location forecast XML document into forecast records.
//
// The document is read as a stream of tokens in a single pass. Three sections
// scope how elements are interpreted: "location" carries the place name, "credit"
// the attribution text and "tabular" the forecast periods. A top-level "sun"
// element supplies the sunrise and sunset used to choose day or night icons.
package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/net/html/charset"

	"weather-forecast/models"
	"weather-forecast/resources"
)

// ErrMalformedDocument is returned when a document does not have the expected shape
var ErrMalformedDocument = errors.New("malformed forecast document")

// TimeLayout is the timestamp format used by the feed. Timestamps carry no offset
// and are interpreted as UTC.
const TimeLayout = "2006-01-02T15:04:05"

const (
	sectionLocation = "location"
	sectionCredit   = "credit"
	sectionTabular  = "tabular"
)

func isSection(name string) bool {
	return name == sectionLocation || name == sectionCredit || name == sectionTabular
}

// Parser converts forecast documents using a symbol table for icon lookup.
// A Parser keeps no state between calls and is safe for concurrent use.
type Parser struct {
	symbols *resources.SymbolTable
}

// New creates a parser resolving icons from symbols
func New(symbols *resources.SymbolTable) *Parser {
	return &Parser{symbols: symbols}
}

// Parse reads a whole document and returns its forecasts in document order.
// Errors in the document wrap ErrMalformedDocument. A failure reading r is
// returned as is. No forecasts are returned with an error.
func (p *Parser) Parse(r io.Reader) ([]models.Forecast, error) {
	src := &streamReader{r: r}
	dec := xml.NewDecoder(src)
	dec.CharsetReader = charset.NewReaderLabel

	st := &parseState{symbols: p.symbols}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			if src.err != nil {
				return nil, fmt.Errorf("read document: %w", src.err)
			}
			if isTruncated(err) {
				// An entry still open here never saw its closing tag and is dropped
				break
			}
			return nil, malformed("read token: %v", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := st.start(dec, t); err != nil {
				if src.err != nil {
					return nil, fmt.Errorf("read document: %w", src.err)
				}
				return nil, err
			}
		case xml.EndElement:
			st.end(t)
		}
	}

	return st.forecasts, nil
}

// streamReader remembers the first error from the underlying stream other than EOF
type streamReader struct {
	r   io.Reader
	err error
}

func (s *streamReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF && s.err == nil {
		s.err = err
	}
	return n, err
}

// isTruncated reports whether the token stream ended with elements still open
func isTruncated(err error) bool {
	var syntaxErr *xml.SyntaxError
	return errors.As(err, &syntaxErr) && syntaxErr.Msg == "unexpected EOF"
}

// parseState is the accumulator threaded through one pass over a document
type parseState struct {
	symbols *resources.SymbolTable

	section string
	depth   int // nesting of the current section inside itself

	sun    SunWindow
	place  string
	credit string

	current   *models.Forecast // period under construction inside a time element
	forecasts []models.Forecast
}

func (st *parseState) start(dec *xml.Decoder, t xml.StartElement) error {
	name := t.Name.Local

	if isSection(name) {
		switch st.section {
		case "":
			st.section = name
			st.depth = 1
		case name:
			st.depth++
		default:
			return malformed("section %q nested inside %q", name, st.section)
		}
		return nil
	}

	switch st.section {
	case "":
		if name == "sun" {
			return st.startSun(t)
		}
	case sectionLocation:
		if name == "name" {
			var text string
			if err := dec.DecodeElement(&text, &t); err != nil {
				return malformed("read place name: %v", err)
			}
			st.place = text
		}
	case sectionCredit:
		if name == "link" {
			st.credit, _ = attr(t, "text")
		}
	case sectionTabular:
		return st.startTabular(t)
	}

	return nil
}

func (st *parseState) end(t xml.EndElement) {
	name := t.Name.Local

	if st.section != "" && name == st.section {
		st.depth--
		if st.depth == 0 {
			st.section = ""
		}
		return
	}

	if st.section == sectionTabular && name == "time" && st.current != nil {
		st.forecasts = append(st.forecasts, *st.current)
		st.current = nil
	}
}

func (st *parseState) startSun(t xml.StartElement) error {
	rise, err := timeAttr(t, "rise")
	if err != nil {
		return err
	}
	set, err := timeAttr(t, "set")
	if err != nil {
		return err
	}
	st.sun.Update(rise, set)
	return nil
}

func (st *parseState) startTabular(t xml.StartElement) error {
	name := t.Name.Local

	if name == "time" {
		if st.current != nil {
			return malformed("time element nested inside another time element")
		}
		from, err := timeAttr(t, "from")
		if err != nil {
			return err
		}
		to, err := timeAttr(t, "to")
		if err != nil {
			return err
		}
		if from.After(to) {
			return malformed("period starts at %s after it ends at %s", from.Format(TimeLayout), to.Format(TimeLayout))
		}

		st.current = &models.Forecast{
			Place:  st.place,
			Credit: st.credit,
			From:   from,
			To:     to,
			Mid:    models.Midpoint(from, to),
			Symbol: models.NoSymbol,
		}
		return nil
	}

	switch name {
	case "symbol", "windSpeed", "temperature":
	default:
		return nil
	}

	if st.current == nil {
		return malformed("%s element outside a time element", name)
	}

	switch name {
	case "symbol":
		code, ok := attr(t, "numberEx")
		if !ok {
			return malformed("symbol element without numberEx attribute")
		}
		st.current.Description, _ = attr(t, "name")

		id, err := st.resolveSymbol(code)
		if err != nil {
			return err
		}
		st.current.Symbol = id
	case "windSpeed":
		st.current.WindSpeed, _ = attr(t, "name")
	case "temperature":
		value, ok := attr(t, "value")
		if !ok {
			return malformed("temperature element without value attribute")
		}
		st.current.Temperature = value
		st.current.TemperatureUnit, _ = attr(t, "unit")
	}

	return nil
}

// resolveSymbol looks the code up as given, then with a day or night suffix chosen
// from the period's midpoint. Unknown codes resolve to models.NoSymbol.
func (st *parseState) resolveSymbol(code string) (int, error) {
	if id, ok := st.symbols.Resolve(code); ok {
		return id, nil
	}

	if !st.sun.Known() {
		return 0, malformed("symbol %q needs sunrise and sunset but no sun element was seen", code)
	}

	suffix := resources.SuffixNight
	if st.sun.IsDaytime(st.current.Mid) {
		suffix = resources.SuffixDay
	}

	if id, ok := st.symbols.Resolve(code + suffix); ok {
		return id, nil
	}
	return models.NoSymbol, nil
}

func attr(t xml.StartElement, name string) (string, bool) {
	for _, a := range t.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func timeAttr(t xml.StartElement, name string) (time.Time, error) {
	value, ok := attr(t, name)
	if !ok {
		return time.Time{}, malformed("%s element without %s attribute", t.Name.Local, name)
	}
	ts, err := time.Parse(TimeLayout, value)
	if err != nil {
		return time.Time{}, malformed("%s@%s: %v", t.Name.Local, name, err)
	}
	return ts, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedDocument, fmt.Sprintf(format, args...))
}
