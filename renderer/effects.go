package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fuzzship/camera"
	"github.com/pthm-cable/fuzzship/telemetry"
)

// flashTicks is how long an event flash stays on screen.
const flashTicks = 12

type flash struct {
	pos    r2.Vec
	kind   telemetry.EventType
	size   int
	remain int
}

// Effects keeps short-lived flashes for hits, deaths and respawns.
type Effects struct {
	flashes []flash
}

// NewEffects returns an empty effect list.
func NewEffects() *Effects {
	return &Effects{}
}

// Add starts a flash for every visible event. Shots and splits are left
// out; the bullets and fragments already show them.
func (e *Effects) Add(events []telemetry.Event) {
	for _, ev := range events {
		switch ev.Type {
		case telemetry.EventHit, telemetry.EventDeath, telemetry.EventRespawn:
			e.flashes = append(e.flashes, flash{
				pos:    r2.Vec{X: ev.X, Y: ev.Y},
				kind:   ev.Type,
				size:   ev.Size,
				remain: flashTicks,
			})
		}
	}
}

// Tick ages every flash by one tick and drops the expired ones.
func (e *Effects) Tick() {
	kept := e.flashes[:0]
	for _, f := range e.flashes {
		f.remain--
		if f.remain > 0 {
			kept = append(kept, f)
		}
	}
	e.flashes = kept
}

// Len returns the number of live flashes.
func (e *Effects) Len() int {
	return len(e.flashes)
}

// Clear removes every flash.
func (e *Effects) Clear() {
	e.flashes = e.flashes[:0]
}

// Draw renders the live flashes as expanding, fading rings.
func (e *Effects) Draw(cam *camera.Camera) {
	for _, f := range e.flashes {
		t := 1 - float32(f.remain)/flashTicks
		x, y := cam.WorldToScreen(f.pos)

		var c rl.Color
		radius := float32(10)
		switch f.kind {
		case telemetry.EventHit:
			c = rl.Color{R: 255, G: 220, B: 100, A: 255}
			radius = cam.Scale(float64(f.size) * 8)
		case telemetry.EventDeath:
			c = rl.Color{R: 255, G: 80, B: 60, A: 255}
			radius = cam.Scale(40)
		default:
			c = rl.Color{R: 120, G: 200, B: 255, A: 255}
			radius = cam.Scale(25)
		}
		c.A = uint8(255 * (1 - t))
		rl.DrawCircleLines(int32(x), int32(y), radius*(0.5+t), c)
	}
}
