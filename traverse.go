package rescan

// isFallbackActive reports whether a conditional node currently shows its
// fallback branch.
func isFallbackActive(n *Node) bool {
	return n.Kind == KindConditional && n.State != nil
}

// fallbackSet returns the fallback wrapper of a conditional node: the
// sibling of its primary wrapper.
func fallbackSet(n *Node) *Node {
	if n.Child == nil {
		return nil
	}
	return n.Child.Sibling
}

// mount reports n (and, when walkSiblings is set, its following siblings)
// as newly mounted, then descends. A conditional node descends into the
// content of whichever branch is active, skipping the wrapper level.
func (e *Engine) mount(n *Node, walkSiblings bool) {
	for n != nil {
		e.ids.ID(n)
		if e.debug {
			e.debugCheckTreeDepth(n)
		}
		if !ShouldFilter(n) && DidPerformWork(n) {
			e.report(n, PhaseMount)
		}
		if n.Kind == KindConditional {
			if isFallbackActive(n) {
				if fb := fallbackSet(n); fb != nil && fb.Child != nil {
					e.mount(fb.Child, true)
				}
			} else if n.Child != nil && n.Child.Child != nil {
				e.mount(n.Child.Child, true)
			}
		} else if n.Child != nil {
			e.mount(n.Child, true)
		}
		if !walkSiblings {
			return
		}
		n = n.Sibling
	}
}

// update reports next against its previous generation prev and walks the
// children. Conditional branch switches are resolved completely (old branch
// unmounted) before the new branch is mounted.
func (e *Engine) update(next, prev *Node) {
	if prev == nil {
		return
	}
	e.ids.ID(next)
	e.ids.ID(prev)
	if !ShouldFilter(next) && DidPerformWork(next) {
		e.report(next, PhaseUpdate)
	}

	isConditional := next.Kind == KindConditional
	prevFallback := isConditional && prev.State != nil
	nextFallback := isConditional && next.State != nil

	switch {
	case prevFallback && nextFallback:
		if nf, pf := fallbackSet(next), fallbackSet(prev); nf != nil && pf != nil {
			e.update(nf, pf)
		}
	case prevFallback && !nextFallback:
		if next.Child != nil {
			e.mount(next.Child, true)
		}
	case !prevFallback && nextFallback:
		e.unmountChildren(prev)
		if nf := fallbackSet(next); nf != nil {
			e.mount(nf, true)
		}
	default:
		// Identical child sets mean the host bailed out of the subtree.
		if next.Child == prev.Child {
			return
		}
		for c := next.Child; c != nil; c = c.Sibling {
			if c.Alternate != nil {
				e.update(c, c.Alternate)
			} else {
				e.mount(c, false)
			}
		}
	}
}

// unmount reports n as gone. Root anchors are always reported. There is
// nothing to diff, so no change detection runs.
func (e *Engine) unmount(n *Node) {
	if n.Kind == KindRootAnchor || !ShouldFilter(n) {
		e.report(n, PhaseUnmount)
	}
}

// unmountChildren reports every still-attached descendant of n as gone. A
// conditional showing its fallback only owns its fallback content.
func (e *Engine) unmountChildren(n *Node) {
	child := n.Child
	if isFallbackActive(n) {
		child = nil
		if fb := fallbackSet(n); fb != nil {
			child = fb.Child
		}
	}
	for ; child != nil; child = child.Sibling {
		if child.Parent == nil {
			continue
		}
		e.unmount(child)
		e.unmountChildren(child)
	}
}
