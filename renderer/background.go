package renderer

import (
	"math/rand/v2"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fuzzship/camera"
)

// BackgroundRenderer draws a fixed star field in arena coordinates, so it
// pans and wraps with the camera.
type BackgroundRenderer struct {
	stars      []r2.Vec
	brightness []uint8
	baseColor  rl.Color
}

// NewBackgroundRenderer scatters count stars over a worldW x worldH arena.
func NewBackgroundRenderer(worldW, worldH float64, count int, seed uint64) *BackgroundRenderer {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	b := &BackgroundRenderer{
		stars:      make([]r2.Vec, count),
		brightness: make([]uint8, count),
		baseColor:  rl.Color{R: 8, G: 10, B: 18, A: 255},
	}
	for i := range b.stars {
		b.stars[i] = r2.Vec{X: rng.Float64() * worldW, Y: rng.Float64() * worldH}
		b.brightness[i] = uint8(60 + rng.IntN(140))
	}
	return b
}

// Draw fills the viewport and draws the stars.
func (b *BackgroundRenderer) Draw(cam *camera.Camera) {
	rl.DrawRectangle(int32(cam.OriginX), int32(cam.OriginY), int32(cam.ViewportW), int32(cam.ViewportH), b.baseColor)
	for i, s := range b.stars {
		if !cam.IsVisible(s, 1) {
			continue
		}
		x, y := cam.WorldToScreen(s)
		v := b.brightness[i]
		rl.DrawPixel(int32(x), int32(y), rl.Color{R: v, G: v, B: v, A: 255})
	}
}
