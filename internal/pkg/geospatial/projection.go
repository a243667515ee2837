package geospatial

import "math"

// Project maps a latitude/longitude onto a sphere of the given radius.
//
// phi is the co-latitude and theta is the longitude shifted by 180°. The negated
// x and the +180 shift line the result up with an equirectangular texture whose
// left edge (u=0) is the antimeridian and whose top edge (v=1) is the north pole,
// which is the default UV layout of three.js SphereGeometry. Markers placed with
// Project land on the matching texel of such a map.
func Project(lat, lon, radius float64) (x, y, z float64) {
	phi := toRad(90 - lat)
	theta := toRad(lon + 180)

	x = -radius * math.Sin(phi) * math.Cos(theta)
	y = radius * math.Cos(phi)
	z = radius * math.Sin(phi) * math.Sin(theta)
	return x, y, z
}

// Unproject is the inverse of Project. The radius is taken from the vector's
// length; lon is returned in [-180, 180). At the poles lon is 0 by convention
// since every longitude maps to the same point.
func Unproject(x, y, z float64) (lat, lon float64) {
	r := math.Sqrt(x*x + y*y + z*z)
	if r == 0 {
		return 0, 0
	}

	cosPhi := math.Max(-1, math.Min(1, y/r))
	lat = 90 - toDeg(math.Acos(cosPhi))

	if x == 0 && z == 0 {
		return lat, 0
	}
	lon = WrapLongitude(toDeg(math.Atan2(z, -x)) - 180)
	return lat, lon
}
