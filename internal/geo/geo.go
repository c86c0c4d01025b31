package geo

import (
	"math"
	"math/rand"

	"adcare/internal/model"
)

const earthRadiusKm = 6371.0

// kmPerDegreeLat is close enough at the latitudes this pipeline covers.
const kmPerDegreeLat = 111.0

// HaversineKm returns the great-circle distance between two points.
func HaversineKm(a, b model.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// TravelMinutes converts a distance to travel time at a mean urban speed.
func TravelMinutes(distanceKm, speedKmh float64) float64 {
	if speedKmh <= 0 {
		return 0
	}
	return distanceKm / speedKmh * 60
}

// SampleInBBox draws a uniform point inside a bounding box using the
// provided seeded generator.
func SampleInBBox(rng *rand.Rand, box model.BoundingBox) model.GeoPoint {
	return model.GeoPoint{
		Lat: box.MinLat + rng.Float64()*(box.MaxLat-box.MinLat),
		Lng: box.MinLng + rng.Float64()*(box.MaxLng-box.MinLng),
	}
}

// SampleNear jitters a point gaussianly around a center with the given
// standard deviation in km, the fallback when sector geometry is absent.
func SampleNear(rng *rand.Rand, center model.GeoPoint, stddevKm float64) model.GeoPoint {
	latDeg := stddevKm / kmPerDegreeLat
	lngDeg := stddevKm / (kmPerDegreeLat * math.Cos(center.Lat*math.Pi/180))
	return model.GeoPoint{
		Lat: center.Lat + rng.NormFloat64()*latDeg,
		Lng: center.Lng + rng.NormFloat64()*lngDeg,
	}
}
