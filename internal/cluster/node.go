package cluster

import (
	"sync"

	"github.com/ChuLiYu/jobsteal-store/pkg/collision"
)

// Node is a concrete collision.ClusterNode: a peer's identity plus its
// mutable, periodically-refreshed attributes and metrics. Membership
// discovery and metrics collection are external to this package; Node is
// the value they write into.
type Node struct {
	id collision.NodeID

	mu      sync.RWMutex
	attrs   map[string]string
	metrics collision.NodeMetrics
}

// NewNode returns a Node seeded with its published attributes.
func NewNode(id collision.NodeID, attrs map[string]string) *Node {
	n := &Node{id: id, attrs: make(map[string]string, len(attrs))}
	for k, v := range attrs {
		n.attrs[k] = v
	}
	return n
}

func (n *Node) ID() collision.NodeID { return n.id }

// Attributes returns a defensive copy; callers must not assume the
// returned map reflects later updates.
func (n *Node) Attributes() map[string]string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make(map[string]string, len(n.attrs))
	for k, v := range n.attrs {
		out[k] = v
	}
	return out
}

func (n *Node) Metrics() collision.NodeMetrics {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.metrics
}

// UpdateMetrics replaces this node's last-known metrics snapshot.
func (n *Node) UpdateMetrics(m collision.NodeMetrics) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.metrics = m
}

// UpdateAttribute sets a single published attribute.
func (n *Node) UpdateAttribute(key, value string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.attrs[key] = value
}
