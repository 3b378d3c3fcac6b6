package arena

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// spatialGrid buckets asteroid indices into square cells so collision
// checks only visit nearby asteroids.
type spatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]int
}

// newSpatialGrid creates a grid covering a width x height arena.
func newSpatialGrid(width, height, cellSize float64) *spatialGrid {
	if cellSize <= 0 {
		cellSize = max(width, height)
	}
	cols := max(int(math.Ceil(width/cellSize)), 1)
	rows := max(int(math.Ceil(height/cellSize)), 1)

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 4)
	}

	return &spatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// clear empties every cell, keeping their capacity.
func (g *spatialGrid) clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// insert adds index i at p.
func (g *spatialGrid) insert(i int, p r2.Vec) {
	g.cells[g.cellIndex(p)] = append(g.cells[g.cellIndex(p)], i)
}

// queryInto appends to dst every index whose cell lies within radius of p
// and returns it. Results are candidates only: callers check the exact
// distance. Cells wrap at the arena edges, so small grids can report an
// index twice.
func (g *spatialGrid) queryInto(dst []int, p r2.Vec, radius float64) []int {
	cellRadius := int(radius/g.cellSize) + 1
	center := g.cellIndex(p)
	centerCol, centerRow := center%g.cols, center/g.cols

	for dc := -cellRadius; dc <= cellRadius; dc++ {
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			col := ((centerCol+dc)%g.cols + g.cols) % g.cols
			row := ((centerRow+dr)%g.rows + g.rows) % g.rows
			dst = append(dst, g.cells[row*g.cols+col]...)
		}
	}
	return dst
}

// cellIndex returns the flat index for a position, clamped to the grid.
func (g *spatialGrid) cellIndex(p r2.Vec) int {
	col := min(max(int(p.X/g.cellSize), 0), g.cols-1)
	row := min(max(int(p.Y/g.cellSize), 0), g.rows-1)
	return row*g.cols + col
}
