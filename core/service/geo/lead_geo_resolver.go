// Package geo resolves submitted (city, state) pairs against the regional
// service-area reference table.
package geo

import "strings"

// coordinateEntry is one known service-area location. Coordinates are
// ordered [longitude, latitude].
type coordinateEntry struct {
	city   string
	state  string
	lngLat [2]float64
}

// referenceTable is configuration data, not logic: the finite set of
// serviced markets. Extend by appending entries.
var referenceTable = []coordinateEntry{
	{city: "toms river", state: "nj", lngLat: [2]float64{-74.1979, 39.9537}},
	{city: "atlantic city", state: "nj", lngLat: [2]float64{-74.4229, 39.3643}},
	{city: "newark", state: "nj", lngLat: [2]float64{-74.1724, 40.7357}},
	{city: "jersey city", state: "nj", lngLat: [2]float64{-74.074, 40.7282}},
	{city: "trenton", state: "nj", lngLat: [2]float64{-74.7439, 40.2171}},
	{city: "camden", state: "nj", lngLat: [2]float64{-75.1196, 39.9259}},
	{city: "cherry hill", state: "nj", lngLat: [2]float64{-75.0379, 39.9268}},
	{city: "philadelphia", state: "pa", lngLat: [2]float64{-75.1652, 39.9526}},
	{city: "king of prussia", state: "pa", lngLat: [2]float64{-75.3899, 40.1013}},
	{city: "wilmington", state: "de", lngLat: [2]float64{-75.5467, 39.7447}},
}

// Resolver maps (city, state) pairs to coordinates. A miss is a normal
// outcome, never an error.
type Resolver struct {
	table []coordinateEntry
}

// NewResolver creates a resolver over the built-in reference table.
func NewResolver() *Resolver {
	return &Resolver{table: referenceTable}
}

// Resolve returns the [longitude, latitude] pair for a known (city, state)
// and ok=false when the pair is not in the reference set. Inputs are
// trimmed and lower-cased before lookup; no fuzzy matching.
func (r *Resolver) Resolve(city, state string) ([2]float64, bool) {
	normCity := strings.ToLower(strings.TrimSpace(city))
	normState := strings.ToLower(strings.TrimSpace(state))

	for _, entry := range r.table {
		if entry.city == normCity && entry.state == normState {
			return entry.lngLat, true
		}
	}
	return [2]float64{}, false
}
