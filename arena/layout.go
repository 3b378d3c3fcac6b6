package arena

import (
	"math"
	"math/rand/v2"

	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fuzzship/config"
	"github.com/pthm-cable/fuzzship/geometry"
)

// headingOffset shifts the heading field away from the density field so the
// two are uncorrelated.
const headingOffset = 7919.0

// layout places asteroids where a seeded noise field is densest.
type layout struct {
	cfg   config.LayoutConfig
	noise opensimplex.Noise
	rng   *rand.Rand
}

func newLayout(cfg config.LayoutConfig, seed int64, rng *rand.Rand) *layout {
	return &layout{cfg: cfg, noise: opensimplex.NewNormalized(seed), rng: rng}
}

// octaveNoise layers noise octaves into a value in [0, 1].
func (l *layout) octaveNoise(x, y float64) float64 {
	octaves := l.cfg.Octaves
	if octaves < 1 {
		octaves = 1
	}
	total, amplitude, maxVal := 0.0, 1.0, 0.0
	frequency := l.cfg.Scale
	for i := 0; i < octaves; i++ {
		total += l.noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= l.cfg.Gain
		frequency *= l.cfg.Lacunarity
	}
	return total / maxVal
}

// place returns the densest of the candidate positions that keep clear of
// avoid by at least safe. If every candidate is too close, the one furthest
// from avoid wins.
func (l *layout) place(width, height float64, avoid r2.Vec, safe float64) r2.Vec {
	n := l.cfg.Candidates
	if n < 1 {
		n = 1
	}
	var best, furthest r2.Vec
	bestDensity, furthestDist := -1.0, -1.0
	for i := 0; i < n; i++ {
		p := r2.Vec{X: l.rng.Float64() * width, Y: l.rng.Float64() * height}
		d := geometry.Distance(p, avoid)
		if d > furthestDist {
			furthest, furthestDist = p, d
		}
		if d < safe {
			continue
		}
		if density := l.octaveNoise(p.X, p.Y); density > bestDensity {
			best, bestDensity = p, density
		}
	}
	if bestDensity < 0 {
		return furthest
	}
	return best
}

// drift returns the initial velocity of an asteroid at p: heading from a
// second noise field, speed uniform in [minSpeed, maxSpeed].
func (l *layout) drift(p r2.Vec, minSpeed, maxSpeed float64) r2.Vec {
	theta := 2 * math.Pi * math.Mod(8*l.octaveNoise(p.X+headingOffset, p.Y+headingOffset), 1)
	speed := minSpeed + l.rng.Float64()*(maxSpeed-minSpeed)
	return r2.Scale(speed, geometry.Heading(theta))
}

// DensityGrid samples the layout density field of seed over a width x height
// arena on a cols x rows grid, row-major from the bottom-left cell. Values
// are in [0, 1]; asteroids favour the high ones.
func DensityGrid(cfg config.LayoutConfig, seed int64, width, height float64, cols, rows int) []float64 {
	l := newLayout(cfg, seed, nil)
	grid := make([]float64, cols*rows)
	for j := 0; j < rows; j++ {
		y := (float64(j) + 0.5) * height / float64(rows)
		for i := 0; i < cols; i++ {
			x := (float64(i) + 0.5) * width / float64(cols)
			grid[j*cols+i] = l.octaveNoise(x, y)
		}
	}
	return grid
}
