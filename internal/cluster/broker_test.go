package cluster

import (
	"testing"
	"time"

	"github.com/ChuLiYu/jobsteal-store/pkg/collision"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerDeliversToRegisteredPeer(t *testing.T) {
	broker := NewBroker()
	a := uuid.New()
	b := uuid.New()

	received := make(chan collision.StealRequest, 1)
	broker.Register(b, func(from collision.NodeID, msg collision.StealRequest) {
		assert.Equal(t, a, from)
		received <- msg
	})

	transport := broker.TransportFor(a)
	require.NoError(t, transport.Send(b, collision.StealingTopic, collision.StealRequest{Delta: 4}))

	select {
	case msg := <-received:
		assert.EqualValues(t, 4, msg.Delta)
	case <-time.After(time.Second):
		t.Fatal("message was not delivered")
	}
}

func TestBrokerSendToUnknownPeerFails(t *testing.T) {
	broker := NewBroker()
	transport := broker.TransportFor(uuid.New())
	err := transport.Send(uuid.New(), collision.StealingTopic, collision.StealRequest{})
	assert.ErrorIs(t, err, ErrUnknownPeer)
}

func TestBrokerSendWrongTopicFails(t *testing.T) {
	broker := NewBroker()
	peer := uuid.New()
	broker.Register(peer, func(collision.NodeID, collision.StealRequest) {})
	transport := broker.TransportFor(uuid.New())
	err := transport.Send(peer, "wrong.topic", collision.StealRequest{})
	assert.Error(t, err)
}
