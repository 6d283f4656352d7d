package collision

// OnNodeJoined records a newly discovered peer.
func (e *Engine) OnNodeJoined(n ClusterNode) {
	e.table.Join(n)
}

// OnNodeLeft records a peer that left voluntarily.
func (e *Engine) OnNodeLeft(id NodeID) {
	e.table.Leave(id)
}

// OnNodeFailed records a peer detected as failed. Treated identically to a
// voluntary departure: both remove the peer from the round-robin queue and
// both MessageInfo maps.
func (e *Engine) OnNodeFailed(id NodeID) {
	e.table.Leave(id)
}

// SeedTopology initializes the node table at startup from the current
// remote-node set. Callers are expected to have already re-checked
// liveness and filtered out nodes that left concurrently before handing
// the snapshot to this method.
func (e *Engine) SeedTopology(nodes []ClusterNode) {
	e.table.SeedInitial(nodes)
}

// ConsistentAttributes reports whether peer advertises the same
// max-stealing-attempts and message-expiry settings as this node — the two
// published attributes that must agree cluster-wide for stealing decisions
// to be mutually consistent.
func (e *Engine) ConsistentAttributes(peer ClusterNode) bool {
	attrs := peer.Attributes()
	return attrs[MaxStealingAttemptNodeAttr] == e.cfg.PublishedAttributes()[MaxStealingAttemptNodeAttr] &&
		attrs[MsgExpireTimeNodeAttr] == e.cfg.PublishedAttributes()[MsgExpireTimeNodeAttr]
}
