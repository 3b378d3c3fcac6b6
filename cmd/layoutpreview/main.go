// Asteroid layout preview tool - interactive view of the layout density
// field and the asteroid field it produces.
//
// Usage: go run ./cmd/layoutpreview [-config path]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/fuzzship/arena"
	"github.com/pthm-cable/fuzzship/config"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewWidth = 560
	panelX       = previewWidth + 30
	panelWidth   = windowWidth - panelX - 10
	gridCols     = 140
)

// previewParams are the values the sliders edit.
type previewParams struct {
	Layout    config.LayoutConfig
	Asteroids int
	Seed      int64
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	defaults := previewParams{Layout: cfg.Arena.Layout, Asteroids: cfg.Arena.Asteroids.Count, Seed: 12345}
	params := defaults

	previewHeight := int32(float64(previewWidth) * cfg.Arena.Height / cfg.Arena.Width)
	gridRows := int(float64(gridCols) * cfg.Arena.Height / cfg.Arena.Width)

	rl.InitWindow(windowWidth, windowHeight, "Asteroid Layout Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	img := rl.GenImageColor(gridCols, gridRows, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	var (
		grid      []float64
		asteroids []arena.AsteroidState
	)
	needsRegen := true

	for !rl.WindowShouldClose() {
		if needsRegen {
			grid = arena.DensityGrid(params.Layout, params.Seed, cfg.Arena.Width, cfg.Arena.Height, gridCols, gridRows)
			updateTexture(texture, grid, gridCols, gridRows)
			asteroids = spawn(cfg.Arena, params)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(gridCols), Height: float32(gridRows)},
			rl.Rectangle{X: 10, Y: 10, Width: previewWidth, Height: float32(previewHeight)},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewWidth, previewHeight, rl.DarkGray)
		drawField(cfg.Arena, asteroids, previewHeight)

		minVal, maxVal, mean := gridStats(grid)
		statsY := previewHeight + 25
		rl.DrawText(fmt.Sprintf("Density min: %.3f  max: %.3f  avg: %.3f", minVal, maxVal, mean), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Asteroids: %d  Seed: %d", len(asteroids), params.Seed), 15, statsY+20, 16, rl.DarkGray)

		var changed bool
		params, changed = drawPanel(params, defaults)
		needsRegen = needsRegen || changed

		rl.EndDrawing()
	}
}

// drawPanel draws the sliders and buttons and returns the edited params.
func drawPanel(params, defaults previewParams) (previewParams, bool) {
	old := params
	y := float32(10)
	px := float32(panelX)

	rl.DrawText("Layout Parameters", panelX, int32(y), 20, rl.DarkGray)
	y += 35

	slider := func(label, lo, hi string, value, min, max float32, format string) float32 {
		rl.DrawText(label, panelX, int32(y), 14, rl.Gray)
		y += 18
		v := gui.SliderBar(rl.Rectangle{X: px, Y: y, Width: float32(panelWidth - 80), Height: 20}, lo, hi, value, min, max)
		rl.DrawText(fmt.Sprintf(format, value), int32(px+float32(panelWidth-70)), int32(y+2), 16, rl.DarkGray)
		y += 35
		return v
	}

	params.Layout.Scale = float64(slider("Scale (base noise frequency)", "0.0005", "0.02",
		float32(params.Layout.Scale), 0.0005, 0.02, "%.4f"))
	params.Layout.Octaves = int(slider("Octaves", "1", "6",
		float32(params.Layout.Octaves), 1, 6, "%.0f"))
	params.Layout.Lacunarity = float64(slider("Lacunarity (frequency multiplier)", "1.5", "4.0",
		float32(params.Layout.Lacunarity), 1.5, 4, "%.2f"))
	params.Layout.Gain = float64(slider("Gain (amplitude multiplier)", "0.2", "0.9",
		float32(params.Layout.Gain), 0.2, 0.9, "%.2f"))
	params.Layout.Candidates = int(slider("Candidates (higher = tighter clusters)", "1", "64",
		float32(params.Layout.Candidates), 1, 64, "%.0f"))
	params.Asteroids = int(slider("Asteroids", "1", "40",
		float32(params.Asteroids), 1, 40, "%.0f"))
	params.Seed = int64(slider("Seed", "0", "99999",
		float32(params.Seed), 0, 99999, "%.0f"))

	y += 10
	if gui.Button(rl.Rectangle{X: px, Y: y, Width: 120, Height: 30}, "Random Seed") {
		params.Seed = int64(rl.GetRandomValue(0, 99999))
	}
	if gui.Button(rl.Rectangle{X: px + 130, Y: y, Width: 120, Height: 30}, "Reset All") {
		params = defaults
	}
	y += 55

	text := layoutYAML(params.Layout)
	rl.DrawText("YAML Config:", panelX, int32(y), 16, rl.DarkGray)
	y += 25
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		rl.DrawText(line, panelX, int32(y), 14, rl.Gray)
		y += 16
	}

	rl.DrawText("Press C to copy YAML to clipboard", panelX, windowHeight-30, 12, rl.LightGray)
	if rl.IsKeyPressed(rl.KeyC) {
		rl.SetClipboardText(text)
	}

	return params, params != old
}

// layoutYAML renders the layout section as it appears under arena: in the
// config file.
func layoutYAML(l config.LayoutConfig) string {
	data, err := yaml.Marshal(map[string]config.LayoutConfig{"layout": l})
	if err != nil {
		return err.Error()
	}
	return string(data)
}

// spawn builds an arena with the previewed layout and returns its initial
// asteroids.
func spawn(ac config.ArenaConfig, params previewParams) []arena.AsteroidState {
	ac.Layout = params.Layout
	ac.Asteroids.Count = params.Asteroids
	a, err := arena.New(ac, params.Seed)
	if err != nil {
		slog.Error("invalid arena config", "error", err)
		return nil
	}
	return a.Asteroids()
}

// drawField draws the ship's safe zone and the asteroids over the preview.
func drawField(ac config.ArenaConfig, asteroids []arena.AsteroidState, previewHeight int32) {
	scale := float32(previewWidth) / float32(ac.Width)
	toScreen := func(x, y float64) (int32, int32) {
		return 10 + int32(float32(x)*scale), 10 + previewHeight - int32(float32(y)*scale)
	}

	sx, sy := toScreen(ac.Ship.StartX, ac.Ship.StartY)
	rl.DrawCircleLines(sx, sy, float32(ac.Asteroids.SafeRadius)*scale, rl.Color{R: 120, G: 200, B: 255, A: 200})
	rl.DrawCircle(sx, sy, 3, rl.Color{R: 120, G: 200, B: 255, A: 255})

	for _, ast := range asteroids {
		x, y := toScreen(ast.Pos.X, ast.Pos.Y)
		rl.DrawCircleLines(x, y, float32(ast.Radius)*scale, rl.Red)
	}
}

func gridStats(grid []float64) (minVal, maxVal, mean float64) {
	if len(grid) == 0 {
		return 0, 0, 0
	}
	minVal, maxVal = grid[0], grid[0]
	var sum float64
	for _, v := range grid {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
		sum += v
	}
	return minVal, maxVal, sum / float64(len(grid))
}

// updateTexture uploads the density grid, flipping rows so that arena y
// points up on screen.
func updateTexture(texture rl.Texture2D, grid []float64, cols, rows int) {
	pixels := make([]color.RGBA, cols*rows)
	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			pixels[(rows-1-j)*cols+i] = densityColor(grid[j*cols+i])
		}
	}
	rl.UpdateTexture(texture, pixels)
}

// densityColor maps a density to a dark blue, cyan, yellow, white gradient.
func densityColor(v float64) color.RGBA {
	var r, g, b float64
	switch {
	case v < 0.25:
		t := v / 0.25
		r, g, b = 10+t*30, 20+t*60, 60+t*100
	case v < 0.5:
		t := (v - 0.25) / 0.25
		r, g, b = 40+t*20, 80+t*120, 160+t*40
	case v < 0.75:
		t := (v - 0.5) / 0.25
		r, g, b = 60+t*140, 200-t*40, 200-t*150
	default:
		t := min((v-0.75)/0.25, 1)
		r, g, b = 200+t*55, 160+t*95, 50+t*205
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}
