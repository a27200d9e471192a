package rescan

import "github.com/cockroachdb/swiss"

// Registry assigns stable integer ids to nodes. A node and its alternate
// always resolve to the same id. Ids start at 1 and only grow; 0 means "no
// id". Not safe for concurrent use: it is only touched from the traversal
// path, which runs inline in the host's commit callback.
type Registry struct {
	ids  swiss.Map[*Node, uint32]
	next uint32
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.ids.Init(64)
	return r
}

// ID returns the id of n, minting one on first sight of either generation.
func (r *Registry) ID(n *Node) uint32 {
	if id, ok := r.ids.Get(n); ok {
		return id
	}
	if n.Alternate != nil {
		if id, ok := r.ids.Get(n.Alternate); ok {
			r.ids.Put(n, id)
			return id
		}
	}
	r.next++
	r.ids.Put(n, r.next)
	return r.next
}

// Lookup returns the id of n (or of its alternate) without minting one.
func (r *Registry) Lookup(n *Node) (uint32, bool) {
	if id, ok := r.ids.Get(n); ok {
		return id, true
	}
	if n.Alternate != nil {
		return r.ids.Get(n.Alternate)
	}
	return 0, false
}

// Forget drops n and its alternate from the registry. The id is not reused.
func (r *Registry) Forget(n *Node) {
	r.ids.Delete(n)
	if n.Alternate != nil {
		r.ids.Delete(n.Alternate)
	}
}

// Len returns the number of tracked nodes (both generations count).
func (r *Registry) Len() int {
	return r.ids.Len()
}
