package renderer

import (
	"testing"

	"github.com/pthm-cable/fuzzship/telemetry"
)

func TestEffectsKeepOnlyVisibleEvents(t *testing.T) {
	e := NewEffects()
	e.Add([]telemetry.Event{
		telemetry.NewShotEvent(1, 0, 0),
		telemetry.NewHitEvent(1, 10, 10, 3),
		telemetry.NewSplitEvent(1, 10, 10, 3),
		telemetry.NewDeathEvent(1, 20, 20, 2),
		telemetry.NewRespawnEvent(1, 500, 400),
	})
	if e.Len() != 3 {
		t.Fatalf("Len = %d, want 3", e.Len())
	}
}

func TestEffectsExpire(t *testing.T) {
	e := NewEffects()
	e.Add([]telemetry.Event{telemetry.NewHitEvent(1, 0, 0, 1)})
	for i := 0; i < flashTicks-1; i++ {
		e.Tick()
	}
	if e.Len() != 1 {
		t.Fatalf("flash expired early: Len = %d", e.Len())
	}
	e.Tick()
	if e.Len() != 0 {
		t.Errorf("flash still live after %d ticks", flashTicks)
	}

	e.Add([]telemetry.Event{telemetry.NewDeathEvent(2, 0, 0, 1)})
	e.Clear()
	if e.Len() != 0 {
		t.Error("Clear left flashes")
	}
}
