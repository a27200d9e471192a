package rescan

import (
	"image/color"
	"math"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorOutline is the default highlight color (a soft violet).
var ColorOutline = Color{115.0 / 255, 97.0 / 255, 230.0 / 255, 1}

// withAlpha returns c with its alpha scaled by a.
func (c Color) withAlpha(a float64) Color {
	c.A *= a
	return c
}

// toRGBA converts to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(clamp01(c.R)*a*255 + 0.5),
		G: uint8(clamp01(c.G)*a*255 + 0.5),
		B: uint8(clamp01(c.B)*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Overlaps reports whether r and other share interior area. Unlike
// Intersects, touching edges do not count.
func (r Rect) Overlaps(other Rect) bool {
	return r.X < other.X+other.Width &&
		other.X < r.X+r.Width &&
		r.Y < other.Y+other.Height &&
		other.Y < r.Y+r.Height
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	x0 := math.Min(r.X, other.X)
	y0 := math.Min(r.Y, other.Y)
	x1 := math.Max(r.X+r.Width, other.X+other.Width)
	y1 := math.Max(r.Y+r.Height, other.Y+other.Height)
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// Area returns Width*Height.
func (r Rect) Area() float64 {
	return r.Width * r.Height
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// mergeRects returns the bounding box of rects. rects must not be empty.
func mergeRects(rects []Rect) Rect {
	out := rects[0]
	for _, r := range rects[1:] {
		out = out.Union(r)
	}
	return out
}

// Kind identifies what a render node is. The set is closed; every switch on
// Kind in this package is exhaustive.
type Kind uint8

const (
	KindFunction              Kind = iota // function component
	KindClass                             // class component
	KindHostElement                       // leaf output element
	KindText                              // raw text
	KindFragment                          // grouping without output
	KindContextConsumer                   // context reader
	KindForwardRef                        // ref-forwarding wrapper
	KindMemo                              // memoized wrapper
	KindSimpleMemo                        // memoized function component
	KindConditional                       // primary/fallback switch
	KindDehydratedConditional             // conditional awaiting hydration
	KindOffscreen                         // hidden-capable wrapper
	KindLegacyHidden                      // legacy hidden wrapper
	KindRootAnchor                        // top node of a tree
	KindHostHoistable                     // hoisted leaf element
	KindHostSingleton                     // singleton leaf element
)

var kindNames = [...]string{
	KindFunction:              "Function",
	KindClass:                 "Class",
	KindHostElement:           "HostElement",
	KindText:                  "Text",
	KindFragment:              "Fragment",
	KindContextConsumer:       "ContextConsumer",
	KindForwardRef:            "ForwardRef",
	KindMemo:                  "Memo",
	KindSimpleMemo:            "SimpleMemo",
	KindConditional:           "Conditional",
	KindDehydratedConditional: "DehydratedConditional",
	KindOffscreen:             "Offscreen",
	KindLegacyHidden:          "LegacyHidden",
	KindRootAnchor:            "RootAnchor",
	KindHostHoistable:         "HostHoistable",
	KindHostSingleton:         "HostSingleton",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Flags is the host's per-node work bitmask.
type Flags uint32

const (
	FlagPerformedWork Flags = 1 << 0
	FlagPlacement     Flags = 1 << 1
	FlagUpdate        Flags = 1 << 2
	FlagCloned        Flags = 1 << 3
	FlagChildDeletion Flags = 1 << 4
	FlagContentReset  Flags = 1 << 5
	FlagSnapshot      Flags = 1 << 10
	FlagHydrating     Flags = 1 << 12
	FlagVisibility    Flags = 1 << 13
)

// OutputMutationMask is the union of flags that change what is on screen.
const OutputMutationMask = FlagPlacement | FlagUpdate | FlagChildDeletion |
	FlagContentReset | FlagHydrating | FlagVisibility | FlagSnapshot

// Phase is the classification of one reported node. Values are bits so that
// consumers can filter with a mask.
type Phase uint8

const (
	PhaseMount   Phase = 1 << iota // node appeared
	PhaseUpdate                    // node re-rendered
	PhaseUnmount                   // node went away
)

func (p Phase) String() string {
	switch p {
	case PhaseMount:
		return "mount"
	case PhaseUpdate:
		return "update"
	case PhaseUnmount:
		return "unmount"
	default:
		return "unknown"
	}
}
