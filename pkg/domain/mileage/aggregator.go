// Package mileage reduces a year of activities to per-bike mileage.
package mileage

import (
	"github.com/fitglue/bike-miles/pkg/domain/units"
	"github.com/fitglue/bike-miles/pkg/integrations/strava"
)

// UnknownBike is the name reported for a gear id missing from the athlete profile.
const UnknownBike = "Unknown"

// BikeMiles is the total distance ridden on one bike.
type BikeMiles struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Miles float64 `json:"miles"`
}

// Report is the mileage document for one year.
type Report struct {
	Year  int         `json:"year"`
	Miles []BikeMiles `json:"miles"`
}

// NameLookup maps gear id to display name.
func NameLookup(bikes []strava.Gear) map[string]string {
	names := make(map[string]string, len(bikes))
	for _, b := range bikes {
		names[b.ID] = b.Name
	}
	return names
}

// Aggregate sums activity distance per gear id and converts each total to
// miles. Activities without gear are skipped. Records are returned in the
// order their gear id was first seen.
func Aggregate(activities []strava.Activity, names map[string]string) []BikeMiles {
	totals := make(map[string]float64)
	var order []string

	for _, a := range activities {
		id := a.Gear()
		if id == "" {
			continue
		}
		if _, seen := totals[id]; !seen {
			order = append(order, id)
		}
		totals[id] += a.Distance
	}

	result := make([]BikeMiles, 0, len(order))
	for _, id := range order {
		name, ok := names[id]
		if !ok {
			name = UnknownBike
		}
		result = append(result, BikeMiles{
			ID:    id,
			Name:  name,
			Miles: units.MetersToMiles(totals[id]),
		})
	}
	return result
}
