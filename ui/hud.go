package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fuzzship/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title      string
	Episode    int
	Seed       int64
	Tick       int
	TimeSec    float64
	Lives      int
	Asteroids  int
	Hits       int
	Shots      int
	Deaths     int
	Accuracy   float64
	Speed      int
	FPS        int32
	Paused     bool
	StopReason string // Empty while the episode runs
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Episode %d | Seed %d | Lives: %d | Asteroids: %d", data.Episode, data.Seed, data.Lives, data.Asteroids),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Hits: %d | Shots: %d | Acc: %.0f%% | Deaths: %d", data.Hits, data.Shots, data.Accuracy*100, data.Deaths),
		10, 55, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Tick: %d (%.1fs) | Speed: %dx | FPS: %d", data.Tick, data.TimeSec, data.Speed, data.FPS),
		10, 75, 16, rl.LightGray,
	)

	status := "Running"
	color := rl.Yellow
	switch {
	case data.StopReason != "":
		status = "Finished: " + data.StopReason
		color = rl.Orange
	case data.Paused:
		status = "PAUSED"
	}
	rl.DrawText(status, 10, 95, 16, color)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the tick phase timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Tick Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s (%.0f ticks/s)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond), x, y, 14, rl.Yellow)
	y += 16
	rl.DrawText(fmt.Sprintf("Min: %s  Max: %s", stats.MinTickDuration.Round(time.Microsecond), stats.MaxTickDuration.Round(time.Microsecond)), x, y, 12, rl.LightGray)
	y += 16

	for _, name := range telemetry.Phases {
		avg, ok := stats.PhaseAvg[name]
		if !ok {
			continue
		}
		pct := stats.PhasePct[name]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-12s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}

// BookmarkPanel lists the most recent bookmarks of the episode.
type BookmarkPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	rows     int
}

// NewBookmarkPanel creates a panel showing up to rows bookmarks.
func NewBookmarkPanel(x, y, width int32, rows int) *BookmarkPanel {
	return &BookmarkPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		rows:     rows,
	}
}

// SetPosition updates the panel position.
func (b *BookmarkPanel) SetPosition(x, y int32) {
	b.x = x
	b.y = y
}

// Draw renders the newest bookmarks, newest first.
func (b *BookmarkPanel) Draw(bookmarks []telemetry.Bookmark) {
	if len(bookmarks) == 0 {
		return
	}
	r := b.renderer
	n := min(len(bookmarks), b.rows)
	height := r.Theme.Padding*2 + r.Theme.LineHeight*int32(n+1)
	r.DrawPanel(b.x, b.y, b.width, height)

	y := r.DrawSectionHeader(b.x+r.Theme.Padding, b.y+r.Theme.Padding, "Bookmarks")
	for i := len(bookmarks) - 1; i >= len(bookmarks)-n; i-- {
		bm := bookmarks[i]
		rl.DrawText(fmt.Sprintf("t=%d %s", bm.Tick, bm.Type), b.x+r.Theme.Padding, y, r.Theme.FontSize, r.Theme.LabelColor)
		y += r.Theme.LineHeight
	}
}
