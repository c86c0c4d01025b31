package instance

import (
	"adcare/internal/geo"
	"adcare/internal/model"
)

// BuildMatrix computes the travel-time matrix over all locations, depots
// first then patients, in minutes at the configured mean speed. The
// matrix is symmetric with a zero diagonal by construction; as a scaled
// metric it also satisfies the triangle inequality (a routed-network
// matrix would not guarantee that).
func BuildMatrix(depots []model.Depot, patients []model.Patient, speedKmh float64) [][]float64 {
	points := make([]model.GeoPoint, 0, len(depots)+len(patients))
	for _, d := range depots {
		points = append(points, d.Position)
	}
	for _, p := range patients {
		points = append(points, p.Position)
	}

	n := len(points)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			minutes := geo.TravelMinutes(geo.HaversineKm(points[i], points[j]), speedKmh)
			matrix[i][j] = minutes
			matrix[j][i] = minutes
		}
	}
	return matrix
}
