package geo

import (
	"github.com/golang/geo/s2"
)

// GreatCircleDistance returns the spherical distance between two coordinates in km.
func GreatCircleDistance(a, b Coordinate) float64 {
	la := s2.LatLngFromDegrees(a.Lat, a.Lon)
	lb := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return la.Distance(lb).Radians() * earthRadiusKM
}
