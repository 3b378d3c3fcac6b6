package arena

import (
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestSpatialGridQuery(t *testing.T) {
	g := newSpatialGrid(1000, 800, 50)
	points := []r2.Vec{
		{X: 100, Y: 100},
		{X: 130, Y: 110},
		{X: 600, Y: 400},
		{X: 990, Y: 100}, // Across the left edge from 100,100
	}
	for i, p := range points {
		g.insert(i, p)
	}

	got := g.queryInto(nil, r2.Vec{X: 110, Y: 105}, 30)
	for _, want := range []int{0, 1} {
		if !slices.Contains(got, want) {
			t.Errorf("query near 0 and 1 missed %d: %v", want, got)
		}
	}
	if slices.Contains(got, 2) {
		t.Errorf("query reported far point 2: %v", got)
	}

	got = g.queryInto(nil, r2.Vec{X: 10, Y: 100}, 30)
	if !slices.Contains(got, 3) {
		t.Errorf("query at the left edge missed the wrapped neighbour: %v", got)
	}

	g.clear()
	if got := g.queryInto(nil, r2.Vec{X: 110, Y: 105}, 30); len(got) != 0 {
		t.Errorf("cleared grid returned %v", got)
	}
}

func TestSpatialGridClampsOutside(t *testing.T) {
	g := newSpatialGrid(1000, 800, 50)
	g.insert(0, r2.Vec{X: 1005, Y: -3})

	got := g.queryInto(nil, r2.Vec{X: 995, Y: 2}, 10)
	if !slices.Contains(got, 0) {
		t.Errorf("point outside the arena not found near its edge: %v", got)
	}
}

func TestFirstContactPrefersStorageOrder(t *testing.T) {
	cfg := testConfig(t)
	a := emptyArena(t, cfg)

	rocks := []rock{
		{pos: r2.Vec{X: 300, Y: 300}, radius: 20},
		{pos: r2.Vec{X: 305, Y: 300}, radius: 20},
		{pos: r2.Vec{X: 700, Y: 300}, radius: 20},
	}
	a.maxRadius = 20
	a.grid.clear()
	for i := range rocks {
		a.grid.insert(i, rocks[i].pos)
	}

	if i := a.firstContact(rocks, r2.Vec{X: 302, Y: 300}, 0); i != 0 {
		t.Errorf("first contact = %d, want 0", i)
	}
	rocks[0].hit = true
	if i := a.firstContact(rocks, r2.Vec{X: 302, Y: 300}, 0); i != 1 {
		t.Errorf("with 0 hit, first contact = %d, want 1", i)
	}
	if i := a.firstContact(rocks, r2.Vec{X: 500, Y: 300}, 0); i != -1 {
		t.Errorf("empty space reported contact %d", i)
	}
	if i := a.firstContact(rocks, r2.Vec{X: 670, Y: 300}, 15); i != 2 {
		t.Errorf("circle contact = %d, want 2", i)
	}
}
