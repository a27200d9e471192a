package rescan

import (
	"math"
	"slices"
	"unicode/utf8"

	"github.com/cockroachdb/swiss"
	"github.com/tanema/gween/ease"
)

// outlineStride is the number of float32 slots per outline in a draw
// buffer: id, count, x, y, width, height, didMutate.
const outlineStride = 7

const (
	defaultTotalFrames   = 45
	defaultInterpolation = 0.2
	defaultGlyphWidth    = 6
	defaultLabelHeight   = 16
	labelGap             = 4
	labelPadding         = 4
	snapDistance         = 0.01
)

// Outline is an animated highlight for one composite node.
type Outline struct {
	ID        uint32
	Name      string
	Count     int
	DidMutate bool
	Age       int

	X, Y, Width, Height float64

	TargetX, TargetY, TargetWidth, TargetHeight float64
}

// Bounds returns the outline's current (interpolated) rectangle.
func (o *Outline) Bounds() Rect {
	return Rect{o.X, o.Y, o.Width, o.Height}
}

// FrameRect is one rectangle to draw.
type FrameRect struct {
	Rect      Rect
	Alpha     float64
	DidMutate bool
}

// Frame is the output of one draw step. It is immutable once returned.
type Frame struct {
	Rects  []FrameRect
	Labels []Label
}

// CanvasConfig tunes the draw step. Zero fields take defaults.
type CanvasConfig struct {
	// TotalFrames is the fade window; outlines older than this are evicted.
	TotalFrames int
	// Interpolation is the fraction of the remaining distance covered per
	// frame.
	Interpolation float64
	// LabelBudget is the maximum label length in runes.
	LabelBudget int
	GlyphWidth  float64
	LabelHeight float64
	Ease        ease.TweenFunc
}

func (c *CanvasConfig) defaults() {
	if c.TotalFrames <= 0 {
		c.TotalFrames = defaultTotalFrames
	}
	if c.Interpolation <= 0 || c.Interpolation > 1 {
		c.Interpolation = defaultInterpolation
	}
	if c.LabelBudget <= 0 {
		c.LabelBudget = defaultLabelBudget
	}
	if c.GlyphWidth <= 0 {
		c.GlyphWidth = defaultGlyphWidth
	}
	if c.LabelHeight <= 0 {
		c.LabelHeight = defaultLabelHeight
	}
}

// Canvas holds the active outlines and advances their animation. It is not
// safe for concurrent use; the pipeline either guards it or confines it to
// its worker goroutine.
type Canvas struct {
	cfg      CanvasConfig
	outlines swiss.Map[uint32, *Outline]
	fade     *fade
}

// NewCanvas creates an empty canvas.
func NewCanvas(cfg CanvasConfig) *Canvas {
	cfg.defaults()
	c := &Canvas{cfg: cfg, fade: newFade(cfg.TotalFrames, cfg.Ease)}
	c.outlines.Init(32)
	return c
}

// Len returns the number of active outlines.
func (c *Canvas) Len() int {
	return c.outlines.Len()
}

// Active reports whether any outline is still animating.
func (c *Canvas) Active() bool {
	return c.outlines.Len() > 0
}

// Outline returns the active outline with the given id.
func (c *Canvas) Outline(id uint32) (*Outline, bool) {
	return c.outlines.Get(id)
}

// Apply merges a draw buffer into the active outlines. names[i] belongs to
// the i-th tuple. An outline already present keeps animating from where it
// is toward the new target; its count grows and its age resets.
func (c *Canvas) Apply(buf []float32, names []string) {
	for i := 0; i+outlineStride <= len(buf); i += outlineStride {
		id := uint32(buf[i])
		count := int(buf[i+1])
		r := Rect{float64(buf[i+2]), float64(buf[i+3]), float64(buf[i+4]), float64(buf[i+5])}
		didMutate := buf[i+6] != 0
		var name string
		if k := i / outlineStride; k < len(names) {
			name = names[k]
		}

		if o, ok := c.outlines.Get(id); ok {
			o.Count += count
			o.Age = 0
			o.Name = name
			o.DidMutate = didMutate
			o.TargetX, o.TargetY, o.TargetWidth, o.TargetHeight = r.X, r.Y, r.Width, r.Height
			continue
		}
		c.outlines.Put(id, &Outline{
			ID:           id,
			Name:         name,
			Count:        count,
			DidMutate:    didMutate,
			X:            r.X,
			Y:            r.Y,
			Width:        r.Width,
			Height:       r.Height,
			TargetX:      r.X,
			TargetY:      r.Y,
			TargetWidth:  r.Width,
			TargetHeight: r.Height,
		})
	}
}

// Step advances every outline by one frame and returns what to draw.
// Outlines sharing a target rectangle draw once at the highest alpha;
// outlines sharing a target origin share one label; overlapping labels are
// merged.
func (c *Canvas) Step() *Frame {
	active := make([]*Outline, 0, c.outlines.Len())
	c.outlines.All(func(_ uint32, o *Outline) bool {
		active = append(active, o)
		return true
	})
	slices.SortFunc(active, func(a, b *Outline) int {
		return int(a.ID) - int(b.ID)
	})

	frame := &Frame{}
	rectIndex := make(map[Rect]int)
	type origin struct{ x, y float64 }
	groupIndex := make(map[origin]int)
	var groups [][]*Outline

	for _, o := range active {
		f := c.cfg.Interpolation
		o.X = approach(o.X, o.TargetX, f)
		o.Y = approach(o.Y, o.TargetY, f)
		o.Width = approach(o.Width, o.TargetWidth, f)
		o.Height = approach(o.Height, o.TargetHeight, f)

		alpha := c.fade.alpha(o.Age)
		o.Age++
		if o.Age > c.cfg.TotalFrames {
			c.outlines.Delete(o.ID)
			continue
		}

		target := Rect{o.TargetX, o.TargetY, o.TargetWidth, o.TargetHeight}
		if i, ok := rectIndex[target]; ok {
			fr := &frame.Rects[i]
			fr.Alpha = max(fr.Alpha, alpha)
			fr.DidMutate = fr.DidMutate || o.DidMutate
		} else {
			rectIndex[target] = len(frame.Rects)
			frame.Rects = append(frame.Rects, FrameRect{Rect: o.Bounds(), Alpha: alpha, DidMutate: o.DidMutate})
		}

		key := origin{o.TargetX, o.TargetY}
		if i, ok := groupIndex[key]; ok {
			groups[i] = append(groups[i], o)
		} else {
			groupIndex[key] = len(groups)
			groups = append(groups, []*Outline{o})
		}
	}

	labels := make([]*Label, 0, len(groups))
	for _, g := range groups {
		first := g[0]
		l := &Label{
			X:        first.X,
			Y:        math.Max(0, first.Y-c.cfg.LabelHeight-labelGap),
			Height:   c.cfg.LabelHeight,
			outlines: slices.Clone(g),
		}
		for _, o := range g {
			l.Alpha = max(l.Alpha, c.fade.alpha(o.Age-1))
		}
		l.Text = labelText(l.outlines, c.cfg.LabelBudget)
		l.Width = c.measure(l.Text)
		labels = append(labels, l)
	}
	for _, l := range mergeLabels(labels, c.cfg.LabelBudget, c.measure) {
		out := *l
		out.outlines = nil
		frame.Labels = append(frame.Labels, out)
	}
	return frame
}

// measure returns the pixel width of a label text.
func (c *Canvas) measure(text string) float64 {
	return float64(utf8.RuneCountInString(text))*c.cfg.GlyphWidth + labelPadding
}

// approach moves cur a constant fraction of the way to target, snapping
// once the remaining distance is negligible.
func approach(cur, target, f float64) float64 {
	if math.Abs(target-cur) < snapDistance {
		return target
	}
	return cur + (target-cur)*f
}
