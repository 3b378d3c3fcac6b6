package fuzzy

import "gonum.org/v1/gonum/floats"

// Centroid returns the area-weighted mean of mu over grid. ok is false when mu
// is identically zero, in which case the centroid is undefined.
func Centroid(grid, mu []float64) (value float64, ok bool) {
	area := floats.Sum(mu)
	if !(area > 0) {
		return 0, false
	}
	return floats.Dot(grid, mu) / area, true
}
