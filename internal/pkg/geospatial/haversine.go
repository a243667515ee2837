package geospatial

import "math"

// EarthRadiusMiles is the mean Earth radius used for great-circle distances.
const EarthRadiusMiles = 3959.0

// Haversine calculates the great-circle distance in miles between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push a just past 1 for antipodal points.
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMiles * c
}

// ClampLatitude limits lat to [min, max].
func ClampLatitude(lat, min, max float64) float64 {
	return math.Max(min, math.Min(max, lat))
}

// NormalizeLongitude wraps lon into [0, 360) using a true modulo, so negative
// inputs land in range too.
func NormalizeLongitude(lon float64) float64 {
	m := math.Mod(lon, 360)
	if m < 0 {
		m += 360
	}
	// -1e-15 + 360 rounds to 360.
	if m >= 360 {
		m = 0
	}
	return m
}

// WrapLongitude maps lon into [-180, 180).
func WrapLongitude(lon float64) float64 {
	return NormalizeLongitude(lon+180) - 180
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
