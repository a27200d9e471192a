package rescan

import (
	"fmt"
	"time"
)

// debugStats holds per-commit timing and record metrics.
// Only populated when the engine runs in debug mode.
type debugStats struct {
	seq          uint64
	traverseTime time.Duration
	records      int
	trackedIDs   int
}

// debugLog prints commit stats to the debug output.
func (e *Engine) debugLog(stats debugStats) {
	if !e.debug {
		return
	}
	_, _ = fmt.Fprintf(e.debugOut,
		"[rescan] root %d | traverse: %v | records: %d | tracked ids: %d\n",
		stats.seq, stats.traverseTime, stats.records, stats.trackedIDs)
}

// debugCheckTreeDepth warns if a node sits deeper than the threshold.
const debugMaxTreeDepth = 512

func (e *Engine) debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(e.debugOut, "[rescan] warning: tree depth %d exceeds %d (node %q)\n",
			depth, debugMaxTreeDepth, DisplayName(n))
	}
}
