package utils

import (
	"math"

	"coindrop/domain/entities"
)

const (
	// EarthRadiusMeters is the sphere radius used for great-circle distances
	EarthRadiusMeters = 6371000.0

	// KmPerDegree approximates the length of one degree of latitude
	KmPerDegree = 111.0

	// minLongitudeScale floors cos(lat) so placements near the poles stay finite
	minLongitudeScale = 0.01
)

// Point is a WGS84 coordinate in decimal degrees
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Float64Source is the randomness needed to sample a placement
type Float64Source interface {
	Float64() float64
}

// ValidateCoordinates rejects latitudes outside [-90, 90], longitudes outside [-180, 180] and NaN/Inf
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return entities.ErrInvalidCoordinates
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return entities.ErrInvalidCoordinates
	}
	return nil
}

// DistanceMeters returns the haversine great-circle distance between two points
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	sinDPhi := math.Sin(dPhi / 2)
	sinDLambda := math.Sin(dLambda / 2)

	a := sinDPhi*sinDPhi + math.Cos(phi1)*math.Cos(phi2)*sinDLambda*sinDLambda
	// Rounding can push a fractionally past 1 for antipodal points
	a = math.Min(1, math.Max(0, a))

	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// RandomPointInAnnulus samples a point between minKm and maxKm from the center.
// The radius is uniform in [minKm, maxKm] rather than uniform over the annulus area,
// so placements cluster toward the inner edge.
func RandomPointInAnnulus(rng Float64Source, centerLat, centerLon, minKm, maxKm float64) Point {
	radiusKm := minKm + rng.Float64()*(maxKm-minKm)
	bearing := rng.Float64() * 2 * math.Pi

	dLat := radiusKm * math.Cos(bearing) / KmPerDegree

	lonScale := math.Cos(toRadians(centerLat))
	if math.Abs(lonScale) < minLongitudeScale {
		lonScale = minLongitudeScale
	}
	dLon := radiusKm * math.Sin(bearing) / (KmPerDegree * lonScale)

	return Point{
		Lat: clampLatitude(centerLat + dLat),
		Lon: normalizeLongitude(centerLon + dLon),
	}
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func clampLatitude(lat float64) float64 {
	return math.Max(-90, math.Min(90, lat))
}

// normalizeLongitude wraps a longitude into [-180, 180]
func normalizeLongitude(lon float64) float64 {
	if lon >= -180 && lon <= 180 {
		return lon
	}
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
