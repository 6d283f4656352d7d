package collision

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeTableJoinLeave(t *testing.T) {
	table := NewNodeTable()
	a := uuid.New()
	b := uuid.New()

	table.Join(&fakeClusterNode{id: a})
	table.Join(&fakeClusterNode{id: b})
	assert.Equal(t, 2, table.RemoteCount())
	assert.True(t, table.IsLive(a))

	table.Leave(a)
	assert.False(t, table.IsLive(a))
	assert.Equal(t, 1, table.RemoteCount())

	_, ok := table.Rcv(a)
	assert.False(t, ok, "leaving a node removes its inbound MessageInfo")
}

func TestNodeTableRoundRobin(t *testing.T) {
	table := NewNodeTable()
	a := uuid.New()
	b := uuid.New()
	table.Join(&fakeClusterNode{id: a})
	table.Join(&fakeClusterNode{id: b})

	first, ok := table.PopFront()
	require.True(t, ok)
	assert.Equal(t, a, first)

	table.PushBack(first)

	second, ok := table.PopFront()
	require.True(t, ok)
	assert.Equal(t, b, second)
}

func TestNodeTablePushBackIgnoresDepartedNode(t *testing.T) {
	table := NewNodeTable()
	a := uuid.New()
	table.Join(&fakeClusterNode{id: a})

	id, ok := table.PopFront()
	require.True(t, ok)
	table.Leave(id)
	table.PushBack(id)

	assert.Equal(t, 0, table.RemoteCount())
	_, ok = table.PopFront()
	assert.False(t, ok, "a departed node must not re-enter the queue")
}

func TestMessageInfoExpiry(t *testing.T) {
	info := newMessageInfo()
	info.Lock()
	defer info.Unlock()
	assert.False(t, info.Expired(0), "a zero-capacity advertisement never expires")
	info.Reset(3)
	assert.False(t, info.Expired(time.Hour))
}
