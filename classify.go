package rescan

// IsLeafOutput reports whether n produces output directly: host element
// kinds, or any node whose type is a raw string tag.
func IsLeafOutput(n *Node) bool {
	switch n.Kind {
	case KindHostElement, KindHostHoistable, KindHostSingleton:
		return true
	}
	_, isTag := n.Type.(string)
	return isTag
}

// IsComposite reports whether n is a user component.
func IsComposite(n *Node) bool {
	switch n.Kind {
	case KindFunction, KindClass, KindSimpleMemo, KindMemo, KindForwardRef:
		return true
	default:
		return false
	}
}

// ShouldFilter reports whether n is hidden from reporting.
func ShouldFilter(n *Node) bool {
	switch n.Kind {
	case KindText, KindFragment, KindLegacyHidden, KindOffscreen, KindDehydratedConditional:
		return true
	case KindRootAnchor:
		return false
	case KindFunction, KindClass, KindHostElement, KindContextConsumer, KindForwardRef,
		KindMemo, KindSimpleMemo, KindConditional, KindHostHoistable, KindHostSingleton:
		return isModeMarker(n.Type)
	default:
		return false
	}
}

func isModeMarker(typ any) bool {
	m, ok := typ.(*ModeMarker)
	return ok && (m == ConcurrentModeMarker || m == AsyncModeMarker)
}

// NearestLeafDescendants collects every leaf output node reachable from n
// without descending past the first leaf on each branch. If n is itself a
// leaf, it is the only result. Uses an explicit stack so deep trees do not
// grow the goroutine stack.
func NearestLeafDescendants(n *Node) []*Node {
	var leaves []*Node
	if IsLeafOutput(n) {
		return append(leaves, n)
	}
	if n.Child == nil {
		return nil
	}
	stack := []*Node{n.Child}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		// Sibling below child, so leaves come out in tree order.
		if cur.Sibling != nil {
			stack = append(stack, cur.Sibling)
		}
		if IsLeafOutput(cur) {
			leaves = append(leaves, cur)
		} else if cur.Child != nil {
			stack = append(stack, cur.Child)
		}
	}
	return leaves
}

// DisplayName returns a human-readable name for n.
func DisplayName(n *Node) string {
	switch t := n.Type.(type) {
	case *Component:
		for c := t; c != nil; c = c.Wraps {
			if c.DisplayName != "" {
				return c.DisplayName
			}
			if c.Name != "" {
				return c.Name
			}
		}
	case string:
		return t
	case *ModeMarker:
		if t != nil {
			return t.name
		}
	}
	return n.Kind.String()
}
