package rescan

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// statsWidget shows FPS, TPS and the number of drawn outlines in the top
// left corner. The text is redrawn at most every half second.
type statsWidget struct {
	img        *ebiten.Image
	lastUpdate time.Time
}

func (w *statsWidget) draw(screen *ebiten.Image, f *Frame) {
	if w.img == nil {
		// 140x32 is enough for "FPS: 60.0  TPS: 60.0\noutlines: 999"
		w.img = ebiten.NewImage(140, 32)
	}
	if now := time.Now(); now.Sub(w.lastUpdate) >= 500*time.Millisecond {
		w.lastUpdate = now
		w.img.Clear()
		// Semi-transparent background for readability
		w.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(w.img, fmt.Sprintf("FPS: %.1f  TPS: %.1f\noutlines: %d",
			ebiten.ActualFPS(), ebiten.ActualTPS(), len(f.Rects)))
	}
	screen.DrawImage(w.img, nil)
}
