package rescan

// rootState is the engine's memory of one tree root.
type rootState struct {
	prev *Node
	seq  uint64
}

func (e *Engine) rootStateFor(root TreeRoot) *rootState {
	st, ok := e.roots[root]
	if !ok {
		e.nextSeq++
		st = &rootState{seq: e.nextSeq}
		e.roots[root] = st
	}
	return st
}

// traverseRoot decides the batch mode for root and walks it. It returns the
// root's sequence id.
func (e *Engine) traverseRoot(root TreeRoot) uint64 {
	if root == nil {
		return 0
	}
	st := e.rootStateFor(root)
	cur := root.CurrentNode()

	switch {
	case cur == nil:
		if st.prev != nil {
			e.unmount(st.prev)
		}
	case st.prev == nil:
		e.mount(cur, true)
	default:
		was, is := isRootMounted(st.prev), isRootMounted(cur)
		switch {
		case !was && is:
			e.mount(cur, false)
		case was && is:
			e.update(cur, cur.Alternate)
		case was && !is:
			e.unmount(cur)
		}
	}
	st.prev = cur
	return st.seq
}
