package fuzzy

import (
	"math"
	"testing"
)

func TestMembershipDegree(t *testing.T) {
	tri := MembershipFunction{Label: "T", Shape: Triangle, Points: []float64{2, 4, 8}}
	fall := MembershipFunction{Label: "F", Shape: FallingShoulder, Points: []float64{2, 4}}
	rise := MembershipFunction{Label: "R", Shape: RisingShoulder, Points: []float64{2, 4}}

	tests := []struct {
		name string
		mf   MembershipFunction
		x    float64
		want float64
	}{
		{"triangle left of support", tri, 1, 0},
		{"triangle at left foot", tri, 2, 0},
		{"triangle rising edge", tri, 3, 0.5},
		{"triangle apex", tri, 4, 1},
		{"triangle falling edge", tri, 6, 0.5},
		{"triangle right of support", tri, 9, 0},
		{"falling below", fall, -100, 1},
		{"falling edge", fall, 3, 0.5},
		{"falling above", fall, 4, 0},
		{"rising below", rise, 2, 0},
		{"rising edge", rise, 3.5, 0.75},
		{"rising above", rise, 100, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.mf.Degree(tc.x)
			if math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("Degree(%v) = %v, want %v", tc.x, got, tc.want)
			}
		})
	}
}

func TestDegenerateMembershipDegree(t *testing.T) {
	spike := MembershipFunction{Label: "Z", Shape: Triangle, Points: []float64{5, 5, 5}}
	if !spike.Degenerate() {
		t.Fatal("zero-width triangle should be degenerate")
	}
	if got := spike.Degree(5); got != 1 {
		t.Errorf("Degree at apex = %v, want 1", got)
	}
	if got := spike.Degree(5.0001); got != 0 {
		t.Errorf("Degree beside apex = %v, want 0", got)
	}

	step := MembershipFunction{Label: "S", Shape: FallingShoulder, Points: []float64{3, 3}}
	if got := step.Degree(3); got != 1 {
		t.Errorf("collapsed shoulder at edge = %v, want 1", got)
	}
	if got := step.Degree(3.1); got != 0 {
		t.Errorf("collapsed shoulder past edge = %v, want 0", got)
	}
}

func TestSampleNarrowTermLeavesSpike(t *testing.T) {
	grid := testUniverse.Grid()
	out := make([]float64, len(grid))

	// Narrower than the grid spacing and placed between two samples.
	narrow := MembershipFunction{Label: "N", Shape: Triangle, Points: []float64{5.02, 5.03, 5.04}}
	narrow.sample(grid, out)

	var nonZero int
	for i, mu := range out {
		if mu > 0 {
			nonZero++
			if math.Abs(grid[i]-5.0) > 1e-9 {
				t.Errorf("spike at %v, want 5.0", grid[i])
			}
		}
	}
	if nonZero != 1 {
		t.Errorf("got %d non-zero samples, want 1", nonZero)
	}
}

func TestUniverseGrid(t *testing.T) {
	u := Universe{Min: -1, Max: 1, Resolution: 0.1}
	grid := u.Grid()
	if len(grid) != 21 {
		t.Fatalf("grid has %d points, want 21", len(grid))
	}
	if grid[0] != -1 || grid[len(grid)-1] != 1 {
		t.Errorf("grid spans [%v, %v], want [-1, 1]", grid[0], grid[len(grid)-1])
	}

	if err := (Universe{Min: 1, Max: 1, Resolution: 0.1}).Validate(); err == nil {
		t.Error("expected error for empty universe")
	}
	if err := (Universe{Min: 0, Max: 1, Resolution: 0}).Validate(); err == nil {
		t.Error("expected error for zero resolution")
	}
}
