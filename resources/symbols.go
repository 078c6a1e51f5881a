// Package resources holds the static lookup tables the forecast pipeline needs:
// weather symbol icons and the built-in list of places. Tables are built once and
// are read-only afterwards, so they can be shared between goroutines freely.
package resources

import "sync"

// Symbol code suffixes used by the feed to pick a pictogram variant
const (
	SuffixDay   = "d"
	SuffixNight = "n"
	SuffixMid   = "m" // polar twilight, no day/night variant needed
)

// iconBase is the first identifier handed out to symbol icons
const iconBase = 0x7f010000

// symbolCodes lists every pictogram shipped with the application. The icon identifier
// of a code is derived from its position in this list.
var symbolCodes = []string{
	"1d", "1m", "1n", "2d", "2m", "2n", "3d", "3m", "3n",
	"4", "5d", "5m", "5n", "6d", "6m", "6n", "7d", "7m",
	"7n", "8d", "8m", "8n", "9", "10", "11", "12", "13",
	"14", "15", "20d", "20m", "20n", "21d", "21m", "21n",
	"22", "23", "24d", "24m", "24n", "25d", "25m", "25n",
	"26d", "26m", "26n", "27d", "27m", "27n", "28d", "28m",
	"28n", "29d", "29m", "29n", "30", "31", "32", "33", "34",
	"40d", "40m", "40n", "41d", "41m", "41n", "42d", "42m",
	"42n", "43d", "43m", "43n", "44d", "44m", "44n", "45d",
	"45m", "45n", "46", "47", "48", "49", "50",
}

// SymbolTable maps symbol codes to icon identifiers
type SymbolTable struct {
	icons map[string]int
}

// NewSymbolTable builds a table from parallel lists of codes and icon identifiers.
// Extra entries in the longer list are ignored.
func NewSymbolTable(codes []string, iconIDs []int) *SymbolTable {
	n := len(codes)
	if len(iconIDs) < n {
		n = len(iconIDs)
	}

	icons := make(map[string]int, n)
	for i := 0; i < n; i++ {
		icons[codes[i]] = iconIDs[i]
	}
	return &SymbolTable{icons: icons}
}

// Resolve returns the icon identifier for a symbol code
func (t *SymbolTable) Resolve(code string) (int, bool) {
	id, ok := t.icons[code]
	return id, ok
}

// Len returns the number of known symbol codes
func (t *SymbolTable) Len() int {
	return len(t.icons)
}

var (
	defaultSymbols     *SymbolTable
	defaultSymbolsOnce sync.Once
)

// DefaultSymbols returns the process-wide table of the bundled pictograms
func DefaultSymbols() *SymbolTable {
	defaultSymbolsOnce.Do(func() {
		ids := make([]int, len(symbolCodes))
		for i := range symbolCodes {
			ids[i] = iconBase | (i + 1)
		}
		defaultSymbols = NewSymbolTable(symbolCodes, ids)
	})
	return defaultSymbols
}
