package geometry

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{1, 1},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi, math.Pi},
		{-1.5 * math.Pi, 0.5 * math.Pi},
		{2 * math.Pi, 0},
		{7, 7 - 2*math.Pi},
	}
	for _, tc := range tests {
		got := WrapAngle(tc.in)
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("WrapAngle(%v) = %v, want %v", tc.in, got, tc.want)
		}
		if got <= -math.Pi || got > math.Pi {
			t.Errorf("WrapAngle(%v) = %v outside (-Pi, Pi]", tc.in, got)
		}
	}
}

func TestNearestTarget(t *testing.T) {
	bodies := []Body{
		{Pos: r2.Vec{X: 50, Y: 0}},
		{Pos: r2.Vec{X: 0, Y: 30}},
		{Pos: r2.Vec{X: -30, Y: 0}},
	}
	i, d, err := NearestTarget(r2.Vec{}, bodies)
	if err != nil {
		t.Fatalf("NearestTarget: %v", err)
	}
	if i != 1 || d != 30 {
		t.Errorf("got (%d, %v), want first of the tied pair (1, 30)", i, d)
	}

	if _, _, err := NearestTarget(r2.Vec{}, nil); !errors.Is(err, ErrEmptyObstacleSet) {
		t.Errorf("got %v, want ErrEmptyObstacleSet", err)
	}
}

func TestSolveInterceptStationaryTarget(t *testing.T) {
	tests := []struct {
		name   string
		target r2.Vec
		speed  float64
	}{
		{"on axis", r2.Vec{X: 100, Y: 0}, 800},
		{"diagonal", r2.Vec{X: 30, Y: 40}, 200},
		{"behind", r2.Vec{X: -250, Y: 0}, 500},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SolveIntercept(r2.Vec{}, 0, Body{Pos: tc.target}, tc.speed)
			if err != nil {
				t.Fatalf("SolveIntercept: %v", err)
			}
			want := r2.Norm(tc.target) / tc.speed
			if math.Abs(got.Time-want) > 1e-12 {
				t.Errorf("Time = %v, want %v", got.Time, want)
			}
			if got.LowConfidence {
				t.Error("stationary target should be a confident solution")
			}
		})
	}
}

func TestSolveInterceptMovingTarget(t *testing.T) {
	shooter := r2.Vec{X: 10, Y: -5}
	target := Body{Pos: r2.Vec{X: 100, Y: 0}, Vel: r2.Vec{X: 0, Y: 100}}
	const speed = 200.0

	got, err := SolveIntercept(shooter, 0, target, speed)
	if err != nil {
		t.Fatalf("SolveIntercept: %v", err)
	}
	if got.Time <= 0 {
		t.Fatalf("Time = %v, want positive", got.Time)
	}
	// The projectile covers exactly the distance to the meeting point.
	if travelled := Distance(shooter, got.Point); math.Abs(travelled-speed*got.Time) > 1e-9 {
		t.Errorf("distance to intercept %v, projectile travels %v", travelled, speed*got.Time)
	}
	if got.Correction <= 0 {
		t.Errorf("Correction = %v, want positive lead towards +Y", got.Correction)
	}
}

func TestSolveInterceptRootPolicy(t *testing.T) {
	tests := []struct {
		name     string
		target   Body
		wantTime float64
		wantLow  bool
		wantErr  error
	}{
		{
			name:     "both roots negative",
			target:   Body{Pos: r2.Vec{X: 100}, Vel: r2.Vec{X: 300}},
			wantTime: -0.2,
			wantLow:  true,
		},
		{
			name:    "negative discriminant",
			target:  Body{Pos: r2.Vec{X: 100}, Vel: r2.Vec{Y: 300}},
			wantErr: ErrNoRealIntercept,
		},
		{
			name:     "linear approaching",
			target:   Body{Pos: r2.Vec{X: 100}, Vel: r2.Vec{X: -200}},
			wantTime: 0.25,
		},
		{
			name:    "linear receding",
			target:  Body{Pos: r2.Vec{X: 100}, Vel: r2.Vec{X: 200}},
			wantErr: ErrNoRealIntercept,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SolveIntercept(r2.Vec{}, 0, tc.target, 200)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("got %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SolveIntercept: %v", err)
			}
			if math.Abs(got.Time-tc.wantTime) > 1e-12 {
				t.Errorf("Time = %v, want %v", got.Time, tc.wantTime)
			}
			if got.LowConfidence != tc.wantLow {
				t.Errorf("LowConfidence = %v, want %v", got.LowConfidence, tc.wantLow)
			}
		})
	}
}

func TestCorrectionRelativeToHeading(t *testing.T) {
	got, err := SolveIntercept(r2.Vec{}, math.Pi/2, Body{Pos: r2.Vec{X: 100}}, 800)
	if err != nil {
		t.Fatalf("SolveIntercept: %v", err)
	}
	if math.Abs(got.Correction+math.Pi/2) > 1e-12 {
		t.Errorf("Correction = %v, want -Pi/2", got.Correction)
	}

	fb := AimAtCurrent(r2.Vec{}, 0, Body{Pos: r2.Vec{X: 0, Y: -10}, Vel: r2.Vec{X: 5}}, 0.5)
	if !fb.LowConfidence || fb.Time != 0.5 {
		t.Errorf("fallback = %+v, want low confidence at 0.5s", fb)
	}
	if math.Abs(fb.Correction+math.Pi/2) > 1e-12 {
		t.Errorf("fallback Correction = %v, want -Pi/2", fb.Correction)
	}
}

func TestPredictStationaryNeverCollides(t *testing.T) {
	agent := Body{Radius: 10}
	obstacles := []Body{
		{Pos: r2.Vec{X: 100}, Radius: 10},
		{Pos: r2.Vec{X: -40, Y: 40}, Radius: 20},
	}
	for _, horizon := range []float64{0, 0.5, 5, 10, 60} {
		p := Predictor{Step: 0.1, Horizon: horizon, SafetyBuffer: 5}
		ev := p.Predict(agent, 0, obstacles)
		if ev.Hit || ev.Index != -1 || ev.Time != horizon {
			t.Errorf("horizon %v: got %+v, want no collision at the horizon", horizon, ev)
		}
	}
}

func TestPredictCollisions(t *testing.T) {
	p := Predictor{Step: 0.1, Horizon: 5}
	agent := Body{Radius: 10}

	tests := []struct {
		name      string
		agent     Body
		obstacles []Body
		wantIndex int
		wantTime  float64
		wantAngle float64
	}{
		{
			name:      "head on",
			agent:     agent,
			obstacles: []Body{{Pos: r2.Vec{X: 102}, Vel: r2.Vec{X: -50}, Radius: 10}},
			wantIndex: 0,
			wantTime:  1.7,
			wantAngle: 0,
		},
		{
			name:      "from behind",
			agent:     agent,
			obstacles: []Body{{Pos: r2.Vec{X: -102}, Vel: r2.Vec{X: 50}, Radius: 10}},
			wantIndex: 0,
			wantTime:  1.7,
			wantAngle: math.Pi,
		},
		{
			name:      "from the left",
			agent:     agent,
			obstacles: []Body{{Pos: r2.Vec{Y: 102}, Vel: r2.Vec{Y: -50}, Radius: 10}},
			wantIndex: 0,
			wantTime:  1.7,
			wantAngle: math.Pi / 2,
		},
		{
			name:  "earliest wins over order",
			agent: agent,
			obstacles: []Body{
				{Pos: r2.Vec{X: 402}, Vel: r2.Vec{X: -100}, Radius: 10},
				{Pos: r2.Vec{Y: -102}, Vel: r2.Vec{Y: 50}, Radius: 10},
			},
			wantIndex: 1,
			wantTime:  1.7,
			wantAngle: -math.Pi / 2,
		},
		{
			name:  "input order breaks ties",
			agent: agent,
			obstacles: []Body{
				{Pos: r2.Vec{Y: 15}, Radius: 10},
				{Pos: r2.Vec{X: 15}, Radius: 10},
			},
			wantIndex: 0,
			wantTime:  0,
			wantAngle: math.Pi / 2,
		},
		{
			name:      "moving together falls back to bearing",
			agent:     Body{Vel: r2.Vec{X: 10}, Radius: 10},
			obstacles: []Body{{Pos: r2.Vec{Y: -15}, Vel: r2.Vec{X: 10}, Radius: 10}},
			wantIndex: 0,
			wantTime:  0,
			wantAngle: -math.Pi / 2,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ev := p.Predict(tc.agent, 0, tc.obstacles)
			if !ev.Hit {
				t.Fatalf("expected a collision, got %+v", ev)
			}
			if ev.Index != tc.wantIndex {
				t.Errorf("Index = %d, want %d", ev.Index, tc.wantIndex)
			}
			if math.Abs(ev.Time-tc.wantTime) > 1e-9 {
				t.Errorf("Time = %v, want %v", ev.Time, tc.wantTime)
			}
			if math.Abs(ev.Angle-tc.wantAngle) > 1e-9 {
				t.Errorf("Angle = %v, want %v", ev.Angle, tc.wantAngle)
			}
		})
	}
}

func TestPredictAngleIsRelativeToHeading(t *testing.T) {
	p := Predictor{Step: 0.1, Horizon: 5}
	obstacle := Body{Pos: r2.Vec{X: 102}, Vel: r2.Vec{X: -50}, Radius: 10}
	ev := p.Predict(Body{Radius: 10}, math.Pi/2, []Body{obstacle})
	if math.Abs(ev.Angle+math.Pi/2) > 1e-9 {
		t.Errorf("Angle = %v, want -Pi/2", ev.Angle)
	}
}

func TestEndToEndExample(t *testing.T) {
	agent := Body{Radius: 10}
	target := Body{Pos: r2.Vec{X: 100}, Radius: 10}

	idx, _, err := NearestTarget(agent.Pos, []Body{target})
	if err != nil || idx != 0 {
		t.Fatalf("NearestTarget = %d, %v", idx, err)
	}
	ic, err := SolveIntercept(agent.Pos, 0, target, 800)
	if err != nil {
		t.Fatalf("SolveIntercept: %v", err)
	}
	if math.Abs(ic.Time-0.125) > 1e-12 {
		t.Errorf("Time = %v, want 0.125", ic.Time)
	}
	if ic.Correction != 0 {
		t.Errorf("Correction = %v, want 0", ic.Correction)
	}

	ev := Predictor{Step: 0.1, Horizon: 5}.Predict(agent, 0, []Body{target})
	if ev.Hit || ev.Time != 5 {
		t.Errorf("got %+v, want no collision within 5s", ev)
	}
}
