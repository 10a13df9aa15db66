package geo

import (
	"math"

	"github.com/lintang-b-s/navigatorx-waypoints/pkg/util"
)

const earthRadiusKM = 6371.0

// Coordinate is a WGS84 point in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{Lat: lat, Lon: lon}
}

func (c Coordinate) GetLat() float64 {
	return c.Lat
}

func (c Coordinate) GetLon() float64 {
	return c.Lon
}

func hav(theta float64) float64 {
	return (1 - math.Cos(theta)) / 2.0
}

// CalculateHaversineDistance returns the great-circle distance in km. waypoint snapping ranks
// candidates with it.
func CalculateHaversineDistance(latOne, lonOne, latTwo, lonTwo float64) float64 {
	phi1, phi2 := util.DegreeToRadians(latOne), util.DegreeToRadians(latTwo)
	dLambda := util.DegreeToRadians(lonTwo - lonOne)

	a := hav(phi2-phi1) + math.Cos(phi1)*math.Cos(phi2)*hav(dLambda)
	return 2.0 * earthRadiusKM * math.Asin(math.Sqrt(a))
}

// CalculateEuclidianDistanceEquirectangularProj approximates the distance in km on a flat
// projection. it underestimates the haversine distance only by a tiny margin at road-edge scale,
// which is what edge lengths and the A* estimate are built from.
func CalculateEuclidianDistanceEquirectangularProj(latOne, lonOne, latTwo, lonTwo float64) float64 {
	phi1, phi2 := util.DegreeToRadians(latOne), util.DegreeToRadians(latTwo)
	x := util.DegreeToRadians(lonTwo-lonOne) * math.Cos((phi1+phi2)/2)
	y := phi2 - phi1
	return math.Hypot(x, y) * earthRadiusKM
}

// GetDestinationPoint walks dist km from (lat, lon) along the initial bearing (degrees from north)
// and returns the point reached.
func GetDestinationPoint(lat, lon, bearing, dist float64) (float64, float64) {
	delta := dist / earthRadiusKM
	theta := util.DegreeToRadians(bearing)
	phi1 := util.DegreeToRadians(lat)
	lambda1 := util.DegreeToRadians(lon)

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2))

	return util.RadiansToDegree(phi2), normalizeLongitude(util.RadiansToDegree(lambda2))
}

// normalizeLongitude folds lon (degrees) into [-180, 180).
func normalizeLongitude(lon float64) float64 {
	return math.Mod(lon+540, 360) - 180.0
}
