package units

import "strconv"

// MetersPerMile is the international mile in meters.
const MetersPerMile = 1609.344

// MetersToMiles converts a distance in meters to miles, rounded to one decimal place.
func MetersToMiles(meters float64) float64 {
	return RoundTenth(meters / MetersPerMile)
}

// RoundTenth rounds the stored value of v to one decimal place. Exact ties
// go to the even digit; values just below a tie round down.
func RoundTenth(v float64) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return f
}
