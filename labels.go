package rescan

import (
	"slices"
	"strconv"
	"strings"
)

const (
	// defaultLabelBudget is the maximum label length in runes.
	defaultLabelBudget = 40
	// maxNamesPerCount caps how many names share one "×N" group.
	maxNamesPerCount = 4
	ellipsis         = "…"
)

// labelText combines outline names into one label, grouping names by their
// summed render count, highest count first: "A, B ×3, C ×1".
func labelText(outlines []*Outline, budget int) string {
	type nameCount struct {
		name  string
		count int
	}
	var byName []nameCount
	for _, o := range outlines {
		i := slices.IndexFunc(byName, func(nc nameCount) bool { return nc.name == o.Name })
		if i < 0 {
			byName = append(byName, nameCount{o.Name, o.Count})
			continue
		}
		byName[i].count += o.Count
	}

	type group struct {
		count int
		names []string
	}
	var groups []group
	for _, nc := range byName {
		i := slices.IndexFunc(groups, func(g group) bool { return g.count == nc.count })
		if i < 0 {
			groups = append(groups, group{count: nc.count, names: []string{nc.name}})
			continue
		}
		groups[i].names = append(groups[i].names, nc.name)
	}
	slices.SortStableFunc(groups, func(a, b group) int { return b.count - a.count })

	var b strings.Builder
	for i, g := range groups {
		names := g.names[:min(len(g.names), maxNamesPerCount)]
		part := strings.Join(names, ", ") + " ×" + strconv.Itoa(g.count)
		b.WriteString(truncate(part, budget))
		if i != len(groups)-1 {
			b.WriteString(", ")
		}
	}
	return truncate(b.String(), budget)
}

// truncate cuts s to budget runes and appends an ellipsis if anything was
// cut.
func truncate(s string, budget int) string {
	if budget <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= budget {
		return s
	}
	return string(r[:budget]) + ellipsis
}

// Label is a text tag drawn above a group of outlines.
type Label struct {
	Text   string
	X, Y   float64
	Width  float64
	Height float64
	Alpha  float64

	outlines []*Outline
}

// Bounds returns the label's box.
func (l *Label) Bounds() Rect {
	return Rect{l.X, l.Y, l.Width, l.Height}
}

// outlineArea sums the target areas of the label's outlines.
func (l *Label) outlineArea() float64 {
	var a float64
	for _, o := range l.outlines {
		a += o.TargetWidth * o.TargetHeight
	}
	return a
}

// mergeLabels merges overlapping labels until no two remaining labels
// overlap. Labels covering larger outline areas absorb smaller ones: the
// survivor's text is recomputed from the union of both outline sets and the
// smaller label is dropped. measure returns the width of a text.
func mergeLabels(labels []*Label, budget int, measure func(string) float64) []*Label {
	slices.SortStableFunc(labels, func(a, b *Label) int {
		switch aa, ba := a.outlineArea(), b.outlineArea(); {
		case aa > ba:
			return -1
		case aa < ba:
			return 1
		default:
			return 0
		}
	})

	alive := make([]bool, len(labels))
	for i := range alive {
		alive[i] = true
	}
	for merged := true; merged; {
		merged = false
		// Only pairs with i < j, so the survivor is always the larger one.
		for i, l := range labels {
			if !alive[i] {
				continue
			}
			for j := i + 1; j < len(labels); j++ {
				other := labels[j]
				if !alive[j] || !l.Bounds().Overlaps(other.Bounds()) {
					continue
				}
				l.outlines = append(l.outlines, other.outlines...)
				l.Text = labelText(l.outlines, budget)
				l.Width = measure(l.Text)
				l.Alpha = max(l.Alpha, other.Alpha)
				alive[j] = false
				merged = true
			}
		}
	}

	out := labels[:0]
	for i, l := range labels {
		if alive[i] {
			out = append(out, l)
		}
	}
	return out
}
