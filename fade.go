package rescan

import (
	"strings"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// fade maps an outline's age in frames to its alpha, from 1 when fresh to 0
// at the end of the fade window. The tween is only ever Set, never updated,
// so one instance serves every outline.
type fade struct {
	tween *gween.Tween
}

func newFade(totalFrames int, fn ease.TweenFunc) *fade {
	if fn == nil {
		fn = ease.Linear
	}
	return &fade{tween: gween.New(1, 0, float32(totalFrames), fn)}
}

func (f *fade) alpha(age int) float64 {
	v, _ := f.tween.Set(float32(age))
	return clamp01(float64(v))
}

// easings lists the fade curves selectable by name in configuration.
var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"out-cubic":    ease.OutCubic,
	"in-out-cubic": ease.InOutCubic,
	"out-expo":     ease.OutExpo,
}

// easingByName returns the named easing, or false if unknown.
func easingByName(name string) (ease.TweenFunc, bool) {
	fn, ok := easings[strings.ToLower(strings.TrimSpace(name))]
	return fn, ok
}
