package domain

import "math"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Vector3 is a position in the globe's scene space, where the unit sphere is the Earth.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Length returns the Euclidean norm.
func (v Vector3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// ReferenceCity is a fixed, named place used for the "current location" readout.
type ReferenceCity struct {
	Name     string   `json:"name"`
	Position GeoPoint `json:"position"`
}

// NearestCity is the result of a nearest-city lookup.
type NearestCity struct {
	City          ReferenceCity `json:"city"`
	DistanceMiles float64       `json:"distance_miles"`
}

// Frame is one tick of the globe animation.
type Frame struct {
	Seq      uint64  `json:"seq"`
	Rotation float64 `json:"rotation"`
	Marker   Vector3 `json:"marker"`
}
