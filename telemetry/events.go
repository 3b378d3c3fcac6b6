// Package telemetry records what happens in arena episodes and tuning runs:
// windowed episode stats, events, bookmarks, perf timings, replay snapshots
// and the CSV output written for them.
package telemetry

// EventType identifies an arena event.
type EventType uint8

const (
	EventShot EventType = iota
	EventHit
	EventSplit
	EventDeath
	EventRespawn
)

var eventNames = [...]string{"shot", "hit", "split", "death", "respawn"}

func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Event is one thing that happened during a tick.
type Event struct {
	Type EventType
	Tick int
	X, Y float64
	Size int // Asteroid size for hits and splits
}

// NewShotEvent records a bullet leaving the ship's nose.
func NewShotEvent(tick int, x, y float64) Event {
	return Event{Type: EventShot, Tick: tick, X: x, Y: y}
}

// NewHitEvent records a bullet destroying an asteroid of the given size.
func NewHitEvent(tick int, x, y float64, size int) Event {
	return Event{Type: EventHit, Tick: tick, X: x, Y: y, Size: size}
}

// NewSplitEvent records an asteroid breaking into two of size-1.
func NewSplitEvent(tick int, x, y float64, size int) Event {
	return Event{Type: EventSplit, Tick: tick, X: x, Y: y, Size: size}
}

// NewDeathEvent records the ship colliding with an asteroid.
func NewDeathEvent(tick int, x, y float64, size int) Event {
	return Event{Type: EventDeath, Tick: tick, X: x, Y: y, Size: size}
}

// NewRespawnEvent records the ship reappearing at its start position.
func NewRespawnEvent(tick int, x, y float64) Event {
	return Event{Type: EventRespawn, Tick: tick, X: x, Y: y}
}
