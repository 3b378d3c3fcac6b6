package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// MaxStepsPerUpdate bounds the speed slider.
const MaxStepsPerUpdate = 32

// ControlsState is the playback state the panel edits.
type ControlsState struct {
	Paused         bool
	StepsPerUpdate int
}

// ControlsResult reports what the user did this frame.
type ControlsResult struct {
	State   ControlsState
	Step    bool // Advance one tick while paused
	Restart bool // Start the episode over with the same seed
	Next    bool // Start a new episode with the next seed
}

// ControlsPanel renders the left-side playback controls and overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  false,
	}
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the controls panel and returns the edited state. It is a
// no-op returning st unchanged while the panel is hidden.
func (c *ControlsPanel) Draw(st ControlsState, overlays *OverlayRegistry) ControlsResult {
	res := ControlsResult{State: st}
	if !c.visible {
		return res
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	categories := overlays.Categories()
	totalItems := 0
	for _, cat := range categories {
		totalItems += len(overlays.ByCategory(cat)) + 1 // +1 for category header
	}
	playbackHeight := int32(30*2 + 24 + 12)
	panelHeight := playbackHeight + int32(totalItems)*lineHeight + padding*3 + lineHeight

	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	y := c.y + padding
	x := float32(c.x + padding)
	half := float32(c.width-padding*3) / 2

	pauseText := "Pause"
	if st.Paused {
		pauseText = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: 26}, pauseText) {
		res.State.Paused = !st.Paused
	}
	if gui.Button(rl.Rectangle{X: x + half + float32(padding), Y: float32(y), Width: half, Height: 26}, "Step") {
		res.Step = true
	}
	y += 30

	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: 26}, "Restart") {
		res.Restart = true
	}
	if gui.Button(rl.Rectangle{X: x + half + float32(padding), Y: float32(y), Width: half, Height: 26}, "Next Seed") {
		res.Next = true
	}
	y += 30

	speed := gui.SliderBar(
		rl.Rectangle{X: x + 50, Y: float32(y), Width: float32(c.width-padding*2) - 90, Height: 18},
		"Speed", fmt.Sprintf("%dx", st.StepsPerUpdate),
		float32(st.StepsPerUpdate), 1, MaxStepsPerUpdate,
	)
	res.State.StepsPerUpdate = max(1, int(speed+0.5))
	y += 24 + 12

	rl.DrawText("Overlays", c.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	for _, category := range categories {
		rl.DrawText(categoryLabel(category), c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(c.x+padding, y, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
			y += lineHeight
		}

		y += 4 // Gap between categories
	}

	return res
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	// Status indicator
	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	// Name
	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	// Key binding (right aligned)
	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, r.Theme.MutedColor)
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "arena":
		return "Arena"
	case "panels":
		return "Panels"
	default:
		return cat
	}
}
