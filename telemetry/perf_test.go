package telemetry

import (
	"testing"
	"time"
)

// runTick times one arena tick, sleeping in the phases listed in slow.
func runTick(pc *PerfCollector, slow map[string]time.Duration) {
	pc.StartTick()
	for _, phase := range Phases {
		pc.StartPhase(phase)
		if d, ok := slow[phase]; ok {
			time.Sleep(d)
		}
	}
	pc.EndTick()
}

func TestPerfTracksEveryTickPhase(t *testing.T) {
	pc := NewPerfCollector(8)
	for range 4 {
		runTick(pc, map[string]time.Duration{PhaseCollisions: 2 * time.Millisecond})
	}

	stats := pc.Stats()
	total := 0.0
	for _, phase := range Phases {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("phase %s not tracked", phase)
		}
		total += stats.PhasePct[phase]
	}
	if total > 100+1e-9 {
		t.Errorf("phase shares add up to %.2f%%", total)
	}
	if stats.PhaseAvg[PhaseCollisions] < 2*time.Millisecond {
		t.Errorf("collisions average %v, want at least 2ms", stats.PhaseAvg[PhaseCollisions])
	}
	if stats.PhasePct[PhaseCollisions] <= stats.PhasePct[PhaseDecide] {
		t.Errorf("collisions %.1f%% should outweigh decide %.1f%%",
			stats.PhasePct[PhaseCollisions], stats.PhasePct[PhaseDecide])
	}
	if stats.MinTickDuration < 2*time.Millisecond || stats.TicksPerSecond > 500 {
		t.Errorf("tick timing = %+v", stats)
	}
}

func TestPerfWindowForgetsOldTicks(t *testing.T) {
	pc := NewPerfCollector(3)
	for range 3 {
		runTick(pc, map[string]time.Duration{PhaseMotion: 2 * time.Millisecond})
	}
	if fastest := pc.Stats().MinTickDuration; fastest < 2*time.Millisecond {
		t.Fatalf("slow window min = %v", fastest)
	}

	for range 3 {
		runTick(pc, nil)
	}
	stats := pc.Stats()
	if stats.MaxTickDuration >= 2*time.Millisecond {
		t.Errorf("max tick %v still includes the slow ticks", stats.MaxTickDuration)
	}
	if stats.PhaseAvg[PhaseMotion] >= time.Millisecond {
		t.Errorf("motion average %v still includes the slow ticks", stats.PhaseAvg[PhaseMotion])
	}
}

func TestPerfEmptyAndNil(t *testing.T) {
	var nilPC *PerfCollector
	nilPC.StartTick()
	nilPC.StartPhase(PhaseDecide)
	nilPC.EndTick()
	nilPC.RecordFrame()

	for name, pc := range map[string]*PerfCollector{"empty": NewPerfCollector(0), "nil": nilPC} {
		stats := pc.Stats()
		if stats.AvgTickDuration != 0 || stats.TicksPerSecond != 0 || stats.FPS != 0 {
			t.Errorf("%s: stats = %+v", name, stats)
		}
		if stats.PhaseAvg == nil || stats.PhasePct == nil {
			t.Errorf("%s: nil phase maps", name)
		}
	}
}

func TestPerfFrameTiming(t *testing.T) {
	pc := NewPerfCollector(4)
	pc.RecordFrame()
	if fps := pc.Stats().FPS; fps != 0 {
		t.Errorf("FPS after one frame = %v, want 0", fps)
	}

	time.Sleep(10 * time.Millisecond)
	pc.RecordFrame()
	stats := pc.Stats()
	if stats.FrameDuration < 10*time.Millisecond || stats.FPS > 100 || stats.FPS <= 0 {
		t.Errorf("frame %v at %.1f FPS", stats.FrameDuration, stats.FPS)
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	stats := PerfStats{
		AvgTickDuration: 250 * time.Microsecond,
		PhasePct:        map[string]float64{PhaseDecide: 60, PhaseCollisions: 25, PhaseCleanup: 15},
	}
	row := stats.ToCSV(2, 300)
	if row.Episode != 2 || row.WindowEnd != 300 || row.AvgTickUS != 250 {
		t.Errorf("row = %+v", row)
	}
	if row.DecidePct != 60 || row.CollisionsPct != 25 || row.CleanupPct != 15 || row.MotionPct != 0 {
		t.Errorf("phase percentages = %+v", row)
	}
}
