// ============================================================================
// In-process message broker for the collision controller's single wire
// message (StealRequest). Real inter-node transport is out of scope; this
// dispatches between Engine instances sharing a process, the way the
// tests and the CLI's demo and serve commands wire simulated nodes
// together without a network.
// ============================================================================

package cluster

import (
	"errors"
	"sync"

	"github.com/ChuLiYu/jobsteal-store/pkg/collision"
)

// ErrUnknownPeer is returned when Send targets a node with no registered
// handler.
var ErrUnknownPeer = errors.New("cluster: unknown peer")

// StealHandler receives an inbound StealRequest from a peer.
type StealHandler func(from collision.NodeID, msg collision.StealRequest)

// Broker dispatches StealRequest messages between registered peers.
// TransportFor hands each peer a collision.Transport bound to its own
// identity.
type Broker struct {
	mu       sync.RWMutex
	handlers map[collision.NodeID]StealHandler
}

// NewBroker returns an empty broker.
func NewBroker() *Broker {
	return &Broker{handlers: make(map[collision.NodeID]StealHandler)}
}

// Register binds id's inbound handler, typically an Engine's
// OnStealRequest method.
func (b *Broker) Register(id collision.NodeID, handler StealHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[id] = handler
}

// Deregister removes id's handler.
func (b *Broker) Deregister(id collision.NodeID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, id)
}

// sendFrom delivers msg to to's registered handler on a separate goroutine,
// so a slow or reentrant handler never blocks the sender's collision pass.
// A caller of Transport.Send may still choose to block waiting on the
// result; that choice is the caller's, not one the broker imposes.
func (b *Broker) sendFrom(from, to collision.NodeID, msg collision.StealRequest) error {
	b.mu.RLock()
	handler, ok := b.handlers[to]
	b.mu.RUnlock()
	if !ok {
		return ErrUnknownPeer
	}
	go handler(from, msg)
	return nil
}

// TransportFor returns a collision.Transport bound to self, so each node's
// Engine sends with its own identity as the message's origin.
func (b *Broker) TransportFor(self collision.NodeID) collision.Transport {
	return &boundTransport{broker: b, self: self}
}

type boundTransport struct {
	broker *Broker
	self   collision.NodeID
}

func (t *boundTransport) Send(to collision.NodeID, topic string, msg collision.StealRequest) error {
	if topic != collision.StealingTopic {
		return errUnknownTopic
	}
	return t.broker.sendFrom(t.self, to, msg)
}

var errUnknownTopic = errors.New("cluster: unrecognized message topic")
