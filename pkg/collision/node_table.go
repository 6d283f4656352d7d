package collision

import "sync"

// NodeMetrics is the subset of a peer's published runtime metrics the
// engine consults when deciding whether to request work from it.
type NodeMetrics struct {
	CurrentWaitingJobs int
}

// ClusterNode is a handle over a remote peer: its identity, its published
// attributes, and its current metrics snapshot. The membership/transport
// layer that discovers and tracks these nodes is an external collaborator;
// this package only consumes the interface.
type ClusterNode interface {
	ID() NodeID
	Attributes() map[string]string
	Metrics() NodeMetrics
}

// NodeTable is the set of known peers plus a round-robin cursor over them,
// and the inbound/outbound MessageInfo for each. Grounded on
// GridJobStealingCollisionSpi.java's nodeQueue (ConcurrentLinkedDeque) and
// sndMsgMap/rcvMsgMap (ConcurrentMap); here a single mutex guards the
// queue and both maps together, which is simpler than lock-free
// structures and sufficient since no operation blocks while holding it.
type NodeTable struct {
	mu sync.Mutex

	queue []NodeID
	nodes map[NodeID]ClusterNode
	rcv   map[NodeID]*MessageInfo
	snd   map[NodeID]*MessageInfo
}

// NewNodeTable returns an empty node table.
func NewNodeTable() *NodeTable {
	return &NodeTable{
		nodes: make(map[NodeID]ClusterNode),
		rcv:   make(map[NodeID]*MessageInfo),
		snd:   make(map[NodeID]*MessageInfo),
	}
}

// Join records a newly discovered peer: appends it to the round-robin
// queue and put-if-absent initializes both its inbound and outbound
// MessageInfo.
func (t *NodeTable) Join(n ClusterNode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := n.ID()
	if _, exists := t.nodes[id]; exists {
		return
	}
	t.nodes[id] = n
	t.queue = append(t.queue, id)
	t.rcv[id] = newMessageInfo()
	t.snd[id] = newMessageInfo()
}

// Leave removes a peer that left or failed: from the round-robin queue and
// from both MessageInfo maps.
func (t *NodeTable) Leave(id NodeID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.nodes, id)
	delete(t.rcv, id)
	delete(t.snd, id)
	for i, q := range t.queue {
		if q == id {
			t.queue = append(t.queue[:i], t.queue[i+1:]...)
			break
		}
	}
}

// IsLive reports whether id currently names a known peer.
func (t *NodeTable) IsLive(id NodeID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.nodes[id]
	return ok
}

// Node returns the ClusterNode handle for id, if live.
func (t *NodeTable) Node(id NodeID) (ClusterNode, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[id]
	return n, ok
}

// PopFront removes and returns the node at the head of the round-robin
// queue. Used by checkIdle's single-consumer polling loop.
func (t *NodeTable) PopFront() (NodeID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.queue) == 0 {
		var zero NodeID
		return zero, false
	}
	id := t.queue[0]
	t.queue = t.queue[1:]
	return id, true
}

// PushBack re-appends a node to the tail of the round-robin queue, if it
// is still a live peer. checkIdle calls this in a finally-equivalent
// regardless of whether the poll succeeded.
func (t *NodeTable) PushBack(id NodeID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.nodes[id]; ok {
		t.queue = append(t.queue, id)
	}
}

// RemoteCount returns the number of known remote peers, bounding how many
// iterations checkIdle's polling loop performs in one pass.
func (t *NodeTable) RemoteCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.nodes)
}

// Rcv returns the inbound MessageInfo for a peer.
func (t *NodeTable) Rcv(id NodeID) (*MessageInfo, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.rcv[id]
	return m, ok
}

// Snd returns the outbound MessageInfo for a peer.
func (t *NodeTable) Snd(id NodeID) (*MessageInfo, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.snd[id]
	return m, ok
}

// RcvSnapshot returns a weakly-consistent snapshot of the inbound
// MessageInfo map: entries may be stale by the time the caller acts on
// them, which checkBusy tolerates by re-checking liveness per entry.
func (t *NodeTable) RcvSnapshot() map[NodeID]*MessageInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[NodeID]*MessageInfo, len(t.rcv))
	for k, v := range t.rcv {
		out[k] = v
	}
	return out
}

// SeedInitial populates the table at startup from the current remote-node
// set, as if each had just joined.
func (t *NodeTable) SeedInitial(nodes []ClusterNode) {
	for _, n := range nodes {
		t.Join(n)
	}
}
