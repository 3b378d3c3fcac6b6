// Package renderer draws the training arena with raylib.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fuzzship/arena"
	"github.com/pthm-cable/fuzzship/camera"
	"github.com/pthm-cable/fuzzship/controller"
	"github.com/pthm-cable/fuzzship/geometry"
)

// Overlays selects the optional debug drawing.
type Overlays struct {
	Intercept bool // Aim line to the predicted intercept point
	Collision bool // Highlight the asteroid of the predicted collision
	Effects   bool // Event flashes
}

var (
	asteroidColors = [...]rl.Color{
		{R: 200, G: 190, B: 170, A: 255},
		{R: 170, G: 160, B: 140, A: 255},
		{R: 140, G: 130, B: 115, A: 255},
		{R: 115, G: 105, B: 95, A: 255},
	}
	shipColor      = rl.Color{R: 120, G: 200, B: 255, A: 255}
	bulletColor    = rl.Color{R: 255, G: 240, B: 120, A: 255}
	interceptColor = rl.Color{R: 100, G: 255, B: 140, A: 160}
	lowConfColor   = rl.Color{R: 255, G: 170, B: 60, A: 160}
	threatColor    = rl.Color{R: 255, G: 70, B: 70, A: 220}
)

// ArenaRenderer draws asteroids, bullets, the ship and controller overlays.
type ArenaRenderer struct {
	cam     *camera.Camera
	effects *Effects
}

// NewArenaRenderer creates a renderer drawing through cam.
func NewArenaRenderer(cam *camera.Camera) *ArenaRenderer {
	return &ArenaRenderer{cam: cam, effects: NewEffects()}
}

// Effects returns the renderer's event flashes.
func (r *ArenaRenderer) Effects() *Effects {
	return r.effects
}

// Draw renders a frame of the arena. diag is the controller's view of the
// last tick; overlays read from it.
func (r *ArenaRenderer) Draw(a *arena.Arena, diag controller.Diagnostics, ov Overlays) {
	cam := r.cam
	rl.DrawRectangleLines(int32(cam.OriginX), int32(cam.OriginY), int32(cam.ViewportW), int32(cam.ViewportH), rl.DarkGray)

	asteroids := a.Asteroids()
	for _, ast := range asteroids {
		c := asteroidColors[clampIndex(ast.Size-1, len(asteroidColors))]
		r.drawWrapped(ast.Pos, ast.Radius, func(x, y float32) {
			rl.DrawCircleLines(int32(x), int32(y), cam.Scale(ast.Radius), c)
		})
	}

	for _, b := range a.Bullets() {
		x, y := cam.WorldToScreen(b)
		rl.DrawCircleV(rl.Vector2{X: x, Y: y}, 2, bulletColor)
	}

	ship := a.Ship()
	if ov.Collision && diag.Collision.Hit && diag.Collision.Index < len(asteroids) {
		ast := asteroids[diag.Collision.Index]
		x, y := cam.WorldToScreen(ast.Pos)
		rl.DrawCircleLines(int32(x), int32(y), cam.Scale(ast.Radius)+4, threatColor)
		sx, sy := cam.WorldToScreen(ship.Pos)
		rl.DrawLineV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: x, Y: y}, threatColor)
	}
	if ov.Intercept && diag.Target >= 0 {
		col := interceptColor
		if diag.LowConfidence() {
			col = lowConfColor
		}
		sx, sy := cam.WorldToScreen(ship.Pos)
		px, py := cam.WorldToScreen(diag.Intercept.Point)
		rl.DrawLineV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: px, Y: py}, col)
		rl.DrawCircleV(rl.Vector2{X: px, Y: py}, 3, col)
	}

	r.drawShip(ship, a.Tick())

	if ov.Effects {
		r.effects.Draw(cam)
	}
}

// drawShip draws the ship as a triangle pointing along its heading. It
// blinks while invulnerable.
func (r *ArenaRenderer) drawShip(s arena.Ship, tick int) {
	if s.Lives <= 0 {
		return
	}
	if s.Invulnerable > 0 && (tick/4)%2 == 1 {
		return
	}
	// Offsets from the center in screen space; screen y points down.
	vertex := func(x, y float32, theta, length float64) rl.Vector2 {
		d := geometry.Heading(theta)
		return rl.Vector2{X: x + r.cam.Scale(length*d.X), Y: y - r.cam.Scale(length*d.Y)}
	}
	r.drawWrapped(s.Pos, s.Radius, func(x, y float32) {
		nose := vertex(x, y, s.Heading, s.Radius)
		left := vertex(x, y, s.Heading+2.5, s.Radius*0.8)
		right := vertex(x, y, s.Heading-2.5, s.Radius*0.8)
		rl.DrawLineV(nose, left, shipColor)
		rl.DrawLineV(left, right, shipColor)
		rl.DrawLineV(right, nose, shipColor)
	})
}

// drawWrapped calls draw at p's screen position and at every ghost
// position across the wrap seam.
func (r *ArenaRenderer) drawWrapped(p r2.Vec, radius float64, draw func(x, y float32)) {
	if r.cam.IsVisible(p, radius) {
		x, y := r.cam.WorldToScreen(p)
		draw(x, y)
	}
	for _, g := range r.cam.Ghosts(p, radius) {
		draw(g[0], g[1])
	}
}

func clampIndex(i, n int) int {
	return int(math.Max(0, math.Min(float64(n-1), float64(i))))
}
