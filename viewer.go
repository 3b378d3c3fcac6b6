package main

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fuzzship/camera"
	"github.com/pthm-cable/fuzzship/config"
	"github.com/pthm-cable/fuzzship/game"
	"github.com/pthm-cable/fuzzship/renderer"
	"github.com/pthm-cable/fuzzship/telemetry"
	"github.com/pthm-cable/fuzzship/ui"
)

const (
	controlsWidth   = 220
	controllerWidth = 320
	starCount       = 300
	topRuleCount    = 6
	controlsLegend  = "[Space] Pause  [.] Step  [-/=] Speed  [Tab] Controls  [N] Next seed  [Home] Reset view  Drag/scroll: pan/zoom"
)

// viewer is the graphical front end of one episode at a time.
type viewer struct {
	opts   game.Options
	replay *telemetry.Snapshot

	g     *game.Game
	state ui.ControlsState

	cam       *camera.Camera
	arenaView *renderer.ArenaRenderer
	stars     *renderer.BackgroundRenderer
	overlays  *ui.OverlayRegistry

	hud           *ui.HUD
	controls      *ui.ControlsPanel
	ctrlPanel     *ui.ControllerPanel
	perfPanel     *ui.PerfPanel
	bookmarkPanel *ui.BookmarkPanel
}

func runViewer(opts game.Options, replay *telemetry.Snapshot) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	screenW, screenH := int32(cfg.Screen.Width), int32(cfg.Screen.Height)

	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(screenW, screenH, "Fuzzship")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	v := &viewer{
		opts:     opts,
		replay:   replay,
		state:    ui.ControlsState{StepsPerUpdate: max(1, opts.StepsPerUpdate)},
		cam:      camera.New(0, 0, float64(screenW), float64(screenH), cfg.Arena.Width, cfg.Arena.Height),
		stars:    renderer.NewBackgroundRenderer(cfg.Arena.Width, cfg.Arena.Height, starCount, uint64(opts.Seed)),
		overlays: ui.NewOverlayRegistry(),
		hud:      ui.NewHUD(),
		controls: ui.NewControlsPanel(10, 120, controlsWidth),
	}
	v.arenaView = renderer.NewArenaRenderer(v.cam)
	v.perfPanel = ui.NewPerfPanel(screenW-controllerWidth, 10)
	v.bookmarkPanel = ui.NewBookmarkPanel(screenW-controllerWidth-10, screenH-150, controllerWidth, 6)

	if err := v.start(opts); err != nil {
		return err
	}

	for !rl.WindowShouldClose() {
		v.update()
		v.draw()
	}

	_, err := v.g.Finish()
	return err
}

// start replaces the current episode with a new one built from opts.
func (v *viewer) start(opts game.Options) error {
	if v.g != nil {
		if _, err := v.g.Finish(); err != nil {
			slog.Error("failed to finish episode", "error", err)
		}
	}
	g, err := game.New(opts)
	if err != nil {
		return err
	}
	v.opts = opts
	v.g = g
	v.g.SetStepsPerUpdate(v.state.StepsPerUpdate)
	v.arenaView.Effects().Clear()

	screenW := int32(rl.GetScreenWidth())
	v.ctrlPanel = ui.NewControllerPanel(screenW-controllerWidth-10, 10, controllerWidth, g.Rules())
	slog.Info("episode started", "episode", opts.Episode, "seed", opts.Seed)
	return nil
}

func (v *viewer) update() {
	v.handleResize()
	v.handleInput()

	if v.state.Paused {
		return
	}
	for i := 0; i < v.state.StepsPerUpdate; i++ {
		if !v.step() {
			break
		}
	}
}

// step advances one tick and feeds its events to the effects. It finishes
// the episode on the tick that ends it.
func (v *viewer) step() bool {
	if v.g.Done() {
		return false
	}
	running := v.g.Step()
	effects := v.arenaView.Effects()
	effects.Tick()
	effects.Add(v.g.Arena().Events())
	if !running {
		v.finished()
	}
	return running
}

func (v *viewer) finished() {
	rec, err := v.g.Finish()
	if err != nil {
		slog.Error("failed to finish episode", "error", err)
	}
	slog.Info("episode finished", "episode", rec.Episode, "score", rec.Score, "stop_reason", rec.StopReason)
	if v.replay != nil {
		if err := game.VerifyReplay(v.replay, v.g.Score()); err != nil {
			slog.Error("replay diverged", "error", err)
		} else {
			slog.Info("replay matches recording", "ticks", rec.Ticks)
		}
	}
}

func (v *viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	v.cam.Resize(float64(w), float64(h))
	v.ctrlPanel.SetPosition(w-controllerWidth-10, 10)
	v.perfPanel.SetPosition(w-controllerWidth, 10)
	v.bookmarkPanel.SetPosition(w-controllerWidth-10, h-150)
}

func (v *viewer) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		v.state.Paused = !v.state.Paused
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && v.state.Paused {
		v.step()
	}
	if rl.IsKeyPressed(rl.KeyEqual) {
		v.setSpeed(v.state.StepsPerUpdate * 2)
	}
	if rl.IsKeyPressed(rl.KeyMinus) {
		v.setSpeed(v.state.StepsPerUpdate / 2)
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		v.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyN) {
		v.nextEpisode()
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		v.cam.Reset()
	}
	if key := rl.GetKeyPressed(); key != 0 {
		if id, on, ok := v.overlays.HandleKeyPress(key); ok {
			slog.Debug("overlay toggled", "overlay", string(id), "enabled", on)
		}
	}

	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		v.cam.Pan(-float64(d.X), -float64(d.Y))
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.cam.ZoomBy(1 + 0.1*float64(wheel))
	}
}

func (v *viewer) setSpeed(n int) {
	v.state.StepsPerUpdate = min(max(n, 1), ui.MaxStepsPerUpdate)
	v.g.SetStepsPerUpdate(v.state.StepsPerUpdate)
}

func (v *viewer) restart() {
	if err := v.start(v.opts); err != nil {
		slog.Error("failed to restart episode", "error", err)
	}
}

// nextEpisode moves on to the next seed. Replays only restart.
func (v *viewer) nextEpisode() {
	if v.replay != nil {
		v.restart()
		return
	}
	opts := v.opts
	opts.Episode++
	opts.Seed++
	if err := v.start(opts); err != nil {
		slog.Error("failed to start episode", "error", err)
	}
}

func (v *viewer) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	v.g.RecordFrame()

	ov := v.overlays
	if ov.IsEnabled(ui.OverlayStars) {
		v.stars.Draw(v.cam)
	}
	v.arenaView.Draw(v.g.Arena(), v.g.Diagnostics(), renderer.Overlays{
		Intercept: ov.IsEnabled(ui.OverlayIntercept),
		Collision: ov.IsEnabled(ui.OverlayCollision),
		Effects:   ov.IsEnabled(ui.OverlayEffects),
	})

	a := v.g.Arena()
	score := v.g.Score()
	ship := a.Ship()
	title := "Fuzzship"
	if v.replay != nil {
		title = fmt.Sprintf("Fuzzship replay (run %s)", v.replay.RunID)
	}
	v.hud.Draw(ui.HUDData{
		Title:      title,
		Episode:    v.g.Episode(),
		Seed:       a.Seed(),
		Tick:       score.Ticks,
		TimeSec:    score.TimeSec,
		Lives:      ship.Lives,
		Asteroids:  a.AsteroidCount(),
		Hits:       score.AsteroidsHit,
		Shots:      score.ShotsFired,
		Deaths:     score.Deaths,
		Accuracy:   score.Accuracy,
		Speed:      v.state.StepsPerUpdate,
		FPS:        rl.GetFPS(),
		Paused:     v.state.Paused,
		StopReason: string(score.StopReason),
	})

	res := v.controls.Draw(v.state, ov)
	if res.State.Paused != v.state.Paused {
		v.state.Paused = res.State.Paused
	}
	if res.State.StepsPerUpdate != v.state.StepsPerUpdate {
		v.setSpeed(res.State.StepsPerUpdate)
	}

	switch {
	case ov.IsEnabled(ui.OverlayController):
		rules := 0
		if ov.IsEnabled(ui.OverlayRules) {
			rules = topRuleCount
		}
		v.ctrlPanel.Draw(v.g.Diagnostics(), rules)
	case ov.IsEnabled(ui.OverlayPerf):
		v.perfPanel.Draw(v.g.Perf())
	}
	v.bookmarkPanel.Draw(v.g.Bookmarks())

	v.hud.DrawControls(int32(rl.GetScreenHeight()), controlsLegend)
	rl.EndDrawing()

	// Buttons act after the frame so a restart never draws a half-built episode.
	switch {
	case res.Restart:
		v.restart()
	case res.Next:
		v.nextEpisode()
	case res.Step && v.state.Paused:
		v.step()
	}
}
