package rescan

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// ColorIdle marks outlines whose renders did not change the output.
var ColorIdle = Color{150.0 / 255, 150.0 / 255, 150.0 / 255, 1}

// OverlayStyle controls how an Overlay draws frames.
type OverlayStyle struct {
	Outline     Color
	Idle        Color
	StrokeWidth float32
	// FillAlpha scales the outline alpha for the rectangle fill.
	FillAlpha float64
}

// DefaultOverlayStyle is used by NewOverlay.
var DefaultOverlayStyle = OverlayStyle{
	Outline:     ColorOutline,
	Idle:        ColorIdle,
	StrokeWidth: 1,
	FillAlpha:   0.1,
}

// Overlay draws a pipeline's frames on top of an ebiten screen. Call Update
// from Game.Update and Draw last in Game.Draw.
type Overlay struct {
	pipeline *Pipeline
	Style    OverlayStyle
	// ShowStats draws FPS, TPS and the outline count in the corner.
	ShowStats bool

	stats statsWidget
}

// NewOverlay creates an overlay for p.
func NewOverlay(p *Pipeline) *Overlay {
	return &Overlay{pipeline: p, Style: DefaultOverlayStyle}
}

// Update advances the pipeline by one frame.
func (o *Overlay) Update() error {
	o.pipeline.Step()
	return nil
}

// Draw renders the latest frame onto screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	f := o.pipeline.Frame()
	for _, r := range f.Rects {
		if r.Alpha <= 0 || r.Rect.Empty() {
			continue
		}
		c := o.Style.Idle
		if r.DidMutate {
			c = o.Style.Outline
		}
		x, y := float32(r.Rect.X), float32(r.Rect.Y)
		w, h := float32(r.Rect.Width), float32(r.Rect.Height)
		if o.Style.FillAlpha > 0 {
			vector.DrawFilledRect(screen, x, y, w, h, c.withAlpha(r.Alpha*o.Style.FillAlpha).toRGBA(), false)
		}
		vector.StrokeRect(screen, x, y, w, h, o.Style.StrokeWidth, c.withAlpha(r.Alpha).toRGBA(), false)
	}
	for _, l := range f.Labels {
		if l.Alpha <= 0 {
			continue
		}
		vector.DrawFilledRect(screen, float32(l.X), float32(l.Y), float32(l.Width), float32(l.Height),
			o.Style.Outline.withAlpha(l.Alpha).toRGBA(), false)
		ebitenutil.DebugPrintAt(screen, l.Text, int(l.X)+labelPadding/2, int(l.Y))
	}
	if o.ShowStats {
		o.stats.draw(screen, f)
	}
}
