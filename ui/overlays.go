package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayIntercept  OverlayID = "intercept"
	OverlayCollision  OverlayID = "collision"
	OverlayEffects    OverlayID = "effects"
	OverlayStars      OverlayID = "stars"
	OverlayController OverlayID = "controller"
	OverlayRules      OverlayID = "rules"
	OverlayPerf       OverlayID = "perf"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID   // Unique identifier
	Name        string      // Display name
	Description string      // What this overlay shows
	Key         int32       // Keyboard key to toggle (0 = no key)
	KeyLabel    string      // Key label for display (e.g., "I", "C")
	Category    string      // Grouping ("arena" or "panels")
	Default     bool        // Enabled when registered
	Exclusive   []OverlayID // Other overlays to disable when this is enabled
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds standard overlays.
func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{
		ID:          OverlayIntercept,
		Name:        "Intercept",
		Description: "Aim line to the predicted intercept point",
		Key:         rl.KeyI,
		KeyLabel:    "I",
		Category:    "arena",
		Default:     true,
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayCollision,
		Name:        "Collision",
		Description: "Highlight the asteroid of the next predicted collision",
		Key:         rl.KeyC,
		KeyLabel:    "C",
		Category:    "arena",
		Default:     true,
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayEffects,
		Name:        "Effects",
		Description: "Flashes for hits, deaths and respawns",
		Key:         rl.KeyE,
		KeyLabel:    "E",
		Category:    "arena",
		Default:     true,
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayStars,
		Name:        "Stars",
		Description: "Star field background",
		Key:         rl.KeyB,
		KeyLabel:    "B",
		Category:    "arena",
		Default:     true,
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayController,
		Name:        "Controller",
		Description: "Fuzzy inputs and outputs of the last tick",
		Key:         rl.KeyF,
		KeyLabel:    "F",
		Category:    "panels",
		Default:     true,
		Exclusive:   []OverlayID{OverlayPerf},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayRules,
		Name:        "Rules",
		Description: "Strongest firing rules",
		Key:         rl.KeyR,
		KeyLabel:    "R",
		Category:    "panels",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayPerf,
		Name:        "Performance",
		Description: "Tick phase timings",
		Key:         rl.KeyP,
		KeyLabel:    "P",
		Category:    "panels",
		Exclusive:   []OverlayID{OverlayController},
	})
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	desc, ok := r.byID[id]
	if !ok {
		return false
	}

	newState := !r.enabled[id]
	r.enabled[id] = newState

	// If enabling, disable exclusive overlays
	if newState {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}

	return newState
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// ByCategory returns overlays filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress checks if a key corresponds to an overlay toggle.
// Returns the overlay ID and new state if a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key == key {
			newState := r.Toggle(desc.ID)
			return desc.ID, newState, true
		}
	}
	return "", false, false
}
